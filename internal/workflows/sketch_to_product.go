package workflows

import (
	"context"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
)

// SketchToProduct renders product sketches into photorealistic product
// photos. It takes the whole body: sketches arrive either as a single
// sketch_image or a positional sketch_images list, and both shapes feed the
// same primary stage. Variations reference the primary render first so they
// stay consistent with each other, with the raw sketches attached after it.
func SketchToProduct(ctx context.Context, ec *runtime.ExecContext, body map[string]any) (*domain.WorkflowResult, error) {
	sketches := stringSliceField(body, "sketch_images")
	if single := stringField(body, "sketch_image"); single != "" {
		sketches = append([]string{single}, sketches...)
	}
	if len(sketches) == 0 {
		return domain.Failure("at least one sketch image is required"), nil
	}

	instructions := stringField(body, "additional_instructions")
	aspect := stringField(body, "aspect_ratio")
	format := stringField(body, "output_format")
	n := runtime.ClampVariations(intField(body, "num_variations", 1))

	plan := &runtime.StagePlan{
		Workflow:      "sketch-to-product",
		PrimaryStepID: "sketch-to-product",
		FanoutStepID:  "sketch-to-product-variations",
		Primary: runtime.Stage{
			Label: "First render",
			Run: func(c context.Context) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       sketchPrompt(instructions),
					References:   imageRefs("sketch", sketches...),
					Tag:          "sketch",
					AspectRatio:  aspect,
					OutputFormat: format,
				})
			},
		},
	}

	for i := 0; i < n-1; i++ {
		plan.Dependents = append(plan.Dependents, runtime.DependentStage{
			Label: variationLabel(i),
			Run: func(c context.Context, primary domain.Asset) (*domain.Asset, error) {
				refs := imageRefs("reference", primary.URL)
				refs = append(refs, imageRefs("sketch", sketches...)...)
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       sketchVariationPrompt(instructions),
					References:   refs,
					Tag:          "sketch",
					AspectRatio:  aspect,
					OutputFormat: format,
				})
			},
		})
	}

	return runtime.RunStages(ctx, ec, plan).Result(), nil
}
