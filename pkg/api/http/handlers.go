package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecuteRequest represents a workflow execution request
type ExecuteRequest struct {
	Inputs map[string]any `json:"inputs" binding:"required"`
}

// ExecuteResponse represents a workflow execution response
type ExecuteResponse struct {
	RequestID string                 `json:"request_id"`
	Result    *domain.WorkflowResult `json:"result"`
	Progress  []domain.Event         `json:"progress"`
	Images    []domain.Event         `json:"images"`
}

// MatchRequest represents an intent match request. UseSemantic defaults to
// true when omitted.
type MatchRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	UseSemantic *bool  `json:"use_semantic"`
}

// MatchAndExecuteRequest represents a match-then-execute request
type MatchAndExecuteRequest struct {
	Prompt      string         `json:"prompt" binding:"required"`
	UseSemantic *bool          `json:"use_semantic"`
	Inputs      map[string]any `json:"inputs"`
}

// useSemantic resolves an optional request flag, absent means enabled.
func useSemantic(flag *bool) bool {
	return flag == nil || *flag
}

// PlanRequest represents a task planning request
type PlanRequest struct {
	Request string `json:"request" binding:"required"`
}

// UploadAssetRequest represents a base64 asset upload
type UploadAssetRequest struct {
	Data        string `json:"data" binding:"required"`
	ContentType string `json:"content_type"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"workflows": len(s.service.Registry.Infos()),
	})
}

// handleListWorkflows lists the workflow catalog
func (s *Server) handleListWorkflows(c *gin.Context) {
	infos := s.service.Registry.Infos()
	c.JSON(http.StatusOK, gin.H{
		"workflows": infos,
		"total":     len(infos),
	})
}

// handleGetWorkflow returns one catalog entry by id
func (s *Server) handleGetWorkflow(c *gin.Context) {
	desc, ok := s.service.Registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "UNKNOWN_WORKFLOW", Message: "unknown workflow: " + c.Param("id")},
		})
		return
	}
	c.JSON(http.StatusOK, desc.Info)
}

// handleUploadAsset stores client-provided bytes so workflow inputs can
// reference them by URL instead of re-uploading per execution.
func (s *Server) handleUploadAsset(c *gin.Context) {
	var req UploadAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: "data is not valid base64"},
		})
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := fmt.Sprintf("upload_%s.%s", uuid.New().String()[:8], uploadExtension(contentType))
	url, err := s.store.Put(c.Request.Context(), key, data, contentType)
	if err != nil {
		s.logger.Error("asset upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "STORAGE_ERROR", Message: "failed to store asset"},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
}

// handleExecute runs one workflow by id
func (s *Server) handleExecute(c *gin.Context) {
	workflowID := c.Param("id")

	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	s.execute(c, workflowID, req.Inputs)
}

// handleMatch resolves a prompt to a workflow without executing it
func (s *Server) handleMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	match := s.service.Matcher.Match(c.Request.Context(), req.Prompt, useSemantic(req.UseSemantic), s.service.ChatKey(keyOverrides(c)))
	c.JSON(http.StatusOK, match)
}

// handleMatchAndExecute resolves a prompt and runs the matched workflow
func (s *Server) handleMatchAndExecute(c *gin.Context) {
	var req MatchAndExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	match := s.service.Matcher.Match(c.Request.Context(), req.Prompt, useSemantic(req.UseSemantic), s.service.ChatKey(keyOverrides(c)))
	if !match.Matched {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"match": match,
			"error": ErrorDetail{Code: "NO_MATCH", Message: "no workflow matched the prompt"},
		})
		return
	}

	s.execute(c, match.Workflow.ID, req.Inputs)
}

// handlePlan builds a task plan for a free-text request
func (s *Server) handlePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	plan := s.service.Planner.Plan(c.Request.Context(), req.Request, s.service.ChatKey(keyOverrides(c)))
	c.JSON(http.StatusOK, plan)
}

// handleGetAsset serves stored artifact bytes
func (s *Server) handleGetAsset(c *gin.Context) {
	key := c.Param("key")

	data, contentType, err := s.store.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "asset not found"},
		})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// uploadExtension picks a file extension from the upload's content type.
func uploadExtension(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "jpg"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return "bin"
	}
}

// execute runs a workflow and writes the uniform execution response.
func (s *Server) execute(c *gin.Context, workflowID string, inputs map[string]any) {
	if inputs == nil {
		inputs = map[string]any{}
	}

	requestID := uuid.New().String()
	ec := s.service.NewContext(requestID, keyOverrides(c))
	defer ec.Progress.Close()

	result, err := s.service.Executor.Execute(c.Request.Context(), ec, workflowID, inputs)
	if err != nil {
		s.writeExecuteError(c, workflowID, err)
		return
	}

	c.JSON(http.StatusOK, ExecuteResponse{
		RequestID: requestID,
		Result:    result,
		Progress:  ec.Progress.DrainProgress(),
		Images:    ec.Progress.DrainImages(),
	})
}

// writeExecuteError maps executor errors to HTTP statuses.
func (s *Server) writeExecuteError(c *gin.Context, workflowID string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownWorkflow):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "UNKNOWN_WORKFLOW", Message: "unknown workflow: " + workflowID},
		})
	case errors.Is(err, domain.ErrPoolSaturated):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{Code: "POOL_SATURATED", Message: "execution capacity exhausted, retry later"},
		})
	default:
		s.logger.Error("execution failed", zap.String("workflow_id", workflowID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "EXECUTION_ERROR", Message: err.Error()},
		})
	}
}
