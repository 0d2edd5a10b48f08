package imagegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		format, mime, want string
	}{
		{"png", "image/png", "png"},
		{"jpeg", "image/png", "jpeg"},
		{"PNG", "image/jpeg", "png"},
		{"", "image/webp", "webp"},
		{"", "", "png"},
		{"bmp", "image/png", "png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extensionFor(tt.format, tt.mime), "format=%q mime=%q", tt.format, tt.mime)
	}
}

func TestFirstImage(t *testing.T) {
	resp := &generateResponse{}
	resp.Candidates = []struct {
		Content content `json:"content"`
	}{
		{Content: content{Parts: []part{
			{Text: "here is your image"},
			{InlineData: &inlineData{MimeType: "image/png", Data: "AQID"}},
		}}},
	}

	data, mime := firstImage(resp)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "image/png", mime)
}

func TestFirstImageNone(t *testing.T) {
	resp := &generateResponse{}
	data, _ := firstImage(resp)
	assert.Nil(t, data)
}
