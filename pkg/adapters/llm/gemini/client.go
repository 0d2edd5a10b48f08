// Package gemini implements ChatClient over the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Client implements ChatClient against the Gemini REST API. Reference images
// are fetched and inlined as base64 parts.
type Client struct {
	httpClient *http.Client
	apiKey     string
	fetch      ports.Fetcher
	logger     *zap.Logger
}

// NewClient creates a new Gemini chat client. apiKey may be empty when every
// request brings its own key.
func NewClient(apiKey string, fetch ports.Fetcher, logger *zap.Logger) (*Client, error) {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		fetch:      fetch,
		logger:     logger,
	}, nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends a conversation and returns the text reply
func (c *Client) Chat(ctx context.Context, req *ports.ChatRequest) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	if req.APIKey == "" && c.apiKey == "" {
		return "", fmt.Errorf("%w: no gemini api key available", domain.ErrExternalService)
	}

	contents, err := c.buildContents(ctx, req.Messages)
	if err != nil {
		return "", err
	}

	body := generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	resp, err := c.post(ctx, req.Model, apiKeyOr(req.APIKey, c.apiKey), &body)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text", domain.ErrExternalService)
	}

	c.logger.Debug("gemini chat complete",
		zap.String("model", req.Model),
		zap.Int("reply_len", sb.Len()))

	return sb.String(), nil
}

// post performs one generateContent call and decodes the response
func (c *Client) post(ctx context.Context, model, apiKey string, body *generateRequest) (*generateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", domain.ErrExternalService, err)
	}
	defer httpResp.Body.Close()

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: gemini: decode response: %v", domain.ErrExternalService, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := httpResp.Status
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return nil, fmt.Errorf("%w: gemini: %s", domain.ErrExternalService, msg)
	}

	return &resp, nil
}

// buildContents converts the neutral conversation to API content, inlining
// each referenced image.
func (c *Client) buildContents(ctx context.Context, msgs []ports.Message) ([]content, error) {
	out := make([]content, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}

		parts := []part{{Text: m.Content}}
		for _, img := range m.Images {
			data, contentType, err := c.fetch.FetchBytes(ctx, img.URL)
			if err != nil {
				return nil, fmt.Errorf("fetch image %s: %w", img.URL, err)
			}
			parts = append(parts, part{InlineData: &inlineData{
				MimeType: contentType,
				Data:     base64.StdEncoding.EncodeToString(data),
			}})
		}

		out = append(out, content{Role: role, Parts: parts})
	}
	return out, nil
}

func apiKeyOr(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
