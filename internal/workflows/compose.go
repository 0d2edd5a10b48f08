package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

const (
	composeTimeout     = 30 * time.Second
	composeTemperature = 0.7
)

type composedPrompts struct {
	Prompts []string `json:"prompts"`
}

// composePrompts asks the chat collaborator to study the input images and
// write n distinct generation prompts for the given brief. Any failure, a
// missing collaborator included, falls back to the canned templates, so
// workflows always have a full prompt set to run with.
func composePrompts(ctx context.Context, ec *runtime.ExecContext, brief string, refs []ports.ImageRef, n int, fallback func(i int) string) []string {
	prompts := make([]string, n)
	for i := range prompts {
		prompts[i] = fallback(i)
	}
	if ec.Chat == nil || n == 0 {
		return prompts
	}

	instruction := fmt.Sprintf(
		"%s\n\nStudy the attached images and write %d distinct image generation prompts for this task. "+
			"The first prompt is the main shot; the rest are variations of it. "+
			"Each prompt must be self-contained and concrete about composition, lighting and style.\n\n"+
			"Respond with JSON only:\n{\"prompts\": [\"...\"]}", brief, n)

	reply, err := ec.Chat.Chat(ctx, &ports.ChatRequest{
		Messages:    []ports.Message{{Role: "user", Content: instruction, Images: refs}},
		Model:       ec.ChatModel,
		Temperature: composeTemperature,
		Timeout:     composeTimeout,
		APIKey:      ec.ChatKey,
	})
	if err != nil {
		ec.Logger.Warn("prompt composition failed, using canned prompts",
			zap.String("request_id", ec.RequestID), zap.Error(err))
		return prompts
	}

	var composed composedPrompts
	if err := runtime.DecodeReply(reply, &composed); err != nil {
		ec.Logger.Warn("prompt composition reply unparseable, using canned prompts",
			zap.String("request_id", ec.RequestID), zap.Error(err))
		return prompts
	}

	for i := 0; i < n && i < len(composed.Prompts); i++ {
		if p := strings.TrimSpace(composed.Prompts[i]); p != "" {
			prompts[i] = p
		}
	}
	return prompts
}
