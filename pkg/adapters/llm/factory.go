package llm

import (
	"fmt"

	"github.com/atelabs/atelier/pkg/adapters/llm/anthropic"
	"github.com/atelabs/atelier/pkg/adapters/llm/gemini"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

// Config holds LLM client configuration
type Config struct {
	Provider string
	APIKey   string
	Fetcher  ports.Fetcher
	Logger   *zap.Logger
}

// NewClient creates a new chat client based on provider
func NewClient(cfg *Config) (ports.ChatClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewClient(cfg.APIKey, cfg.Fetcher, cfg.Logger)
	case "gemini":
		return gemini.NewClient(cfg.APIKey, cfg.Fetcher, cfg.Logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
