package websocket

import (
	"net/http"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const eventBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles streaming workflow execution
type Handler struct {
	service *runtime.Service
	logger  *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(service *runtime.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// executeFrame is the first message the client sends after connecting.
type executeFrame struct {
	Inputs       map[string]any `json:"inputs"`
	GeminiKey    string         `json:"gemini_key,omitempty"`
	AnthropicKey string         `json:"anthropic_key,omitempty"`
}

// resultFrame closes the stream: either the execution result or an error.
type resultFrame struct {
	Type      string                 `json:"type"`
	RequestID string                 `json:"request_id"`
	Result    *domain.WorkflowResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// HandleExecuteStream runs a workflow and relays its events live
func (h *Handler) HandleExecuteStream(c *gin.Context) {
	workflowID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	var frame executeFrame
	if err := conn.ReadJSON(&frame); err != nil {
		h.logger.Warn("invalid execute frame", zap.Error(err))
		_ = conn.WriteJSON(resultFrame{Type: "error", Error: "invalid execute frame"})
		return
	}
	if frame.Inputs == nil {
		frame.Inputs = map[string]any{}
	}

	requestID := uuid.New().String()
	ec := h.service.NewContext(requestID, runtime.KeyOverrides{
		Gemini:    frame.GeminiKey,
		Anthropic: frame.AnthropicKey,
	})

	h.logger.Info("stream execution started",
		zap.String("request_id", requestID),
		zap.String("workflow_id", workflowID),
		zap.String("client", c.ClientIP()))

	events := ec.Progress.Subscribe(eventBuffer)

	type execOutcome struct {
		result *domain.WorkflowResult
		err    error
	}
	done := make(chan execOutcome, 1)
	go func() {
		result, err := h.service.Executor.Execute(c.Request.Context(), ec, workflowID, frame.Inputs)
		ec.Progress.Close()
		done <- execOutcome{result: result, err: err}
	}()

	// Relay events until the recorder closes, then send the final frame.
	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn("failed to write event, client gone",
				zap.String("request_id", requestID),
				zap.Error(err))
			break
		}
	}

	outcome := <-done
	final := resultFrame{Type: "result", RequestID: requestID, Result: outcome.result}
	if outcome.err != nil {
		final = resultFrame{Type: "error", RequestID: requestID, Error: outcome.err.Error()}
	}
	if err := conn.WriteJSON(final); err != nil {
		h.logger.Warn("failed to write final frame",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
