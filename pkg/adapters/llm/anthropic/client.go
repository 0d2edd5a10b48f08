// Package anthropic implements ChatClient over the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

const defaultMaxTokens = 4096

// Client implements ChatClient using the Anthropic SDK. Reference images are
// fetched and inlined as base64 blocks.
type Client struct {
	client anthropic.Client
	apiKey string
	fetch  ports.Fetcher
	logger *zap.Logger
}

// NewClient creates a new Anthropic chat client. apiKey may be empty when
// every request brings its own key.
func NewClient(apiKey string, fetch ports.Fetcher, logger *zap.Logger) (*Client, error) {
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		apiKey: apiKey,
		fetch:  fetch,
		logger: logger,
	}, nil
}

// Chat sends a conversation and returns the text reply
func (c *Client) Chat(ctx context.Context, req *ports.ChatRequest) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	if req.APIKey == "" && c.apiKey == "" {
		return "", fmt.Errorf("%w: no anthropic api key available", domain.ErrExternalService)
	}

	messages, err := c.buildMessages(ctx, req.Messages)
	if err != nil {
		return "", err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	client := c.clientFor(req.APIKey)
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %v", domain.ErrExternalService, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic returned no text", domain.ErrExternalService)
	}

	c.logger.Debug("anthropic chat complete",
		zap.String("model", req.Model),
		zap.Int("reply_len", sb.Len()))

	return sb.String(), nil
}

// clientFor returns a client bound to the per-request key override, or the
// configured client when there is none.
func (c *Client) clientFor(apiKey string) anthropic.Client {
	if apiKey == "" || apiKey == c.apiKey {
		return c.client
	}
	return anthropic.NewClient(option.WithAPIKey(apiKey))
}

// buildMessages converts the neutral conversation to SDK params, inlining
// each referenced image.
func (c *Client) buildMessages(ctx context.Context, msgs []ports.Message) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)}

		for _, img := range m.Images {
			data, contentType, err := c.fetch.FetchBytes(ctx, img.URL)
			if err != nil {
				return nil, fmt.Errorf("fetch image %s: %w", img.URL, err)
			}
			blocks = append(blocks, anthropic.NewImageBlockBase64(contentType, base64.StdEncoding.EncodeToString(data)))
		}

		if m.Role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out, nil
}
