package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/atelabs/atelier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChat struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (f *scriptedChat) Chat(ctx context.Context, req *ports.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reply, f.err
}

func TestComposePromptsUsesChatReply(t *testing.T) {
	images := &recordingImages{}
	ec := newTestExecContext(images)
	ec.Chat = &scriptedChat{reply: `{"prompts": ["main shot", "angle two", "angle three"]}`}

	result, err := ProductSwap(context.Background(), ec, ProductSwapArgs{
		ProductImage:   "http://in.test/product.png",
		ReferenceImage: "http://in.test/scene.png",
		NumVariations:  3,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)

	reqs := images.all()
	require.Len(t, reqs, 3)
	assert.Equal(t, "main shot", reqs[0].Prompt)

	variationPrompts := []string{reqs[1].Prompt, reqs[2].Prompt}
	assert.ElementsMatch(t, []string{"angle two", "angle three"}, variationPrompts)
}

func TestComposePromptsFallsBackOnChatError(t *testing.T) {
	images := &recordingImages{}
	ec := newTestExecContext(images)
	ec.Chat = &scriptedChat{err: errors.New("upstream down")}

	result, err := StealTheLook(context.Background(), ec, StealTheLookArgs{
		PersonImage:   "http://in.test/person.png",
		LookImage:     "http://in.test/look.png",
		NumVariations: 2,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)

	reqs := images.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, stealTheLookPrompt(""), reqs[0].Prompt)
	assert.Equal(t, stealTheLookVariationPrompt(""), reqs[1].Prompt)
}

func TestComposePromptsFallsBackOnBadReply(t *testing.T) {
	images := &recordingImages{}
	ec := newTestExecContext(images)
	ec.Chat = &scriptedChat{reply: "sure, here are some ideas for you"}

	result, err := ProductSwap(context.Background(), ec, ProductSwapArgs{
		ProductImage:   "http://in.test/product.png",
		ReferenceImage: "http://in.test/scene.png",
		NumVariations:  1,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)

	reqs := images.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, productSwapPrompt(""), reqs[0].Prompt)
}

func TestComposePromptsPartialReplyKeepsFallbacks(t *testing.T) {
	images := &recordingImages{}
	ec := newTestExecContext(images)
	ec.Chat = &scriptedChat{reply: `{"prompts": ["only one"]}`}

	result, err := ProductSwap(context.Background(), ec, ProductSwapArgs{
		ProductImage:   "http://in.test/product.png",
		ReferenceImage: "http://in.test/scene.png",
		NumVariations:  2,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)

	reqs := images.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, "only one", reqs[0].Prompt)
	assert.Equal(t, productSwapVariationPrompt(""), reqs[1].Prompt)
}

func TestComposePromptsSkippedWithoutChat(t *testing.T) {
	images := &recordingImages{}
	ec := newTestExecContext(images)

	result, err := ProductSwap(context.Background(), ec, ProductSwapArgs{
		ProductImage:   "http://in.test/product.png",
		ReferenceImage: "http://in.test/scene.png",
		NumVariations:  1,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, productSwapPrompt(""), images.all()[0].Prompt)
}
