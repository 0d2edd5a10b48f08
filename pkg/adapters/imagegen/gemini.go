// Package imagegen implements ImageGenerator over the Gemini image model.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atelabs/atelier/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

const (
	defaultTemperature = 1.0
	defaultTopP        = 0.95
	defaultTimeout     = 120 * time.Second
)

// Generator implements ImageGenerator against the Gemini REST API. Generated
// bytes are persisted through the artifact store; the result carries the
// store's public URL. Generate never returns a Go error: every failure mode
// ends up in the result's Err field so fan-out callers handle one shape.
type Generator struct {
	httpClient *http.Client
	apiKey     string
	model      string
	timeout    time.Duration
	store      ports.ArtifactStore
	fetch      ports.Fetcher
	logger     *zap.Logger
}

// Config holds image generator configuration
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Store   ports.ArtifactStore
	Fetcher ports.Fetcher
	Logger  *zap.Logger
}

// NewGenerator creates a new Gemini image generator. The API key may be
// empty when every request brings its own key.
func NewGenerator(cfg *Config) (*Generator, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{
		httpClient: &http.Client{},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    timeout,
		store:      cfg.Store,
		fetch:      cfg.Fetcher,
		logger:     cfg.Logger,
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

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type generationConfig struct {
	Temperature        float64      `json:"temperature"`
	TopP               float64      `json:"topP"`
	ResponseModalities []string     `json:"responseModalities"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
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

// Generate produces one image and stores it as an artifact
func (g *Generator) Generate(ctx context.Context, req *ports.GenerateRequest) *ports.GenerateResult {
	res := &ports.GenerateResult{Tag: req.Tag, Source: "gemini"}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []part{{Text: req.Prompt}}
	for _, ref := range req.References {
		data, contentType, err := g.fetch.FetchBytes(ctx, ref.URL)
		if err != nil {
			res.Err = fmt.Sprintf("fetch reference %s: %v", ref.Name, err)
			return res
		}
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: contentType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:        temperature,
			TopP:               defaultTopP,
			ResponseModalities: []string{"image", "text"},
		},
	}
	if req.AspectRatio != "" {
		body.GenerationConfig.ImageConfig = &imageConfig{AspectRatio: req.AspectRatio}
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = g.apiKey
	}
	if apiKey == "" {
		res.Err = "no gemini api key available"
		return res
	}

	resp, err := g.post(ctx, apiKey, &body)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	imageBytes, mimeType := firstImage(resp)
	if imageBytes == nil {
		res.Err = "model returned no image"
		return res
	}

	id := uuid.New().String()[:8]
	key := fmt.Sprintf("%s_%s.%s", req.Tag, id, extensionFor(req.OutputFormat, mimeType))

	url, err := g.store.Put(ctx, key, imageBytes, mimeType)
	if err != nil {
		res.Err = fmt.Sprintf("store artifact: %v", err)
		return res
	}

	g.logger.Debug("image generated",
		zap.String("tag", req.Tag),
		zap.String("key", key),
		zap.Int("bytes", len(imageBytes)))

	res.ID = id
	res.URL = url
	return res
}

// post performs one generateContent call and decodes the response
func (g *Generator) post(ctx context.Context, apiKey string, body *generateRequest) (*generateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	defer httpResp.Body.Close()

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := httpResp.Status
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return nil, fmt.Errorf("gemini: %s", msg)
	}

	return &resp, nil
}

// firstImage returns the first inline image of the response, decoded.
func firstImage(resp *generateResponse) ([]byte, string) {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				continue
			}
			return data, p.InlineData.MimeType
		}
	}
	return nil, ""
}

// extensionFor picks a file extension from the requested format, falling
// back to the returned mime type.
func extensionFor(format, mimeType string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "png", "jpeg", "jpg", "webp":
		return format
	}
	if idx := strings.Index(mimeType, "/"); idx >= 0 {
		if ext := mimeType[idx+1:]; ext != "" {
			return ext
		}
	}
	return "png"
}
