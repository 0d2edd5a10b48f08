package http

import (
	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/gin-gonic/gin"
)

// BYOK headers: per-request API keys for the downstream model providers.
const (
	headerGeminiKey    = "X-Gemini-Key"
	headerAnthropicKey = "X-Anthropic-Key"
)

// keyOverrides extracts per-request API keys from the request headers.
func keyOverrides(c *gin.Context) runtime.KeyOverrides {
	return runtime.KeyOverrides{
		Gemini:    c.GetHeader(headerGeminiKey),
		Anthropic: c.GetHeader(headerAnthropicKey),
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, "+headerGeminiKey+", "+headerAnthropicKey)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
