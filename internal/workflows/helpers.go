package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
)

// generateAsset runs one image generation and converts the tagged result to
// an artifact. The generator never errors; a failed result is converted here.
func generateAsset(ctx context.Context, ec *runtime.ExecContext, req *ports.GenerateRequest) (*domain.Asset, error) {
	req.APIKey = ec.ImageKey
	res := ec.Images.Generate(ctx, req)
	if res.Failed() {
		return nil, errors.New(res.Err)
	}

	meta := map[string]any{"id": res.ID}
	if res.Tag != "" {
		meta["tag"] = res.Tag
	}
	if res.Source != "" {
		meta["source"] = res.Source
	}
	return &domain.Asset{Type: "image", URL: res.URL, Metadata: meta}, nil
}

// stringField pulls a non-empty string out of a body map.
func stringField(body map[string]any, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

// stringSliceField pulls a list of strings out of a body map, tolerating the
// []any shape JSON decoding produces.
func stringSliceField(body map[string]any, key string) []string {
	switch v := body[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// intField pulls an integer out of a body map, tolerating JSON's float64.
func intField(body map[string]any, key string, def int) int {
	switch v := body[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// imageRefs wraps URLs as named references, first-listed first.
func imageRefs(name string, urls ...string) []ports.ImageRef {
	refs := make([]ports.ImageRef, 0, len(urls))
	for i, u := range urls {
		if u == "" {
			continue
		}
		refs = append(refs, ports.ImageRef{URL: u, Name: fmt.Sprintf("%s_%d", name, i+1)})
	}
	return refs
}

// variationLabel names fan-out outputs for the image event stream.
func variationLabel(i int) string {
	return fmt.Sprintf("Variation %d", i+1)
}
