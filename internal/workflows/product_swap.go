package workflows

import (
	"context"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
)

// ProductSwapArgs is the typed input of the product-swap workflow.
type ProductSwapArgs struct {
	ProductImage           string `json:"product_image"`
	ReferenceImage         string `json:"reference_image"`
	AdditionalInstructions string `json:"additional_instructions"`
	AspectRatio            string `json:"aspect_ratio"`
	OutputFormat           string `json:"output_format"`
	NumVariations          int    `json:"num_variations"`
}

// ProductSwap places the given product into the reference scene, replacing
// the product shown there. The first shot anchors the composition; the
// remaining variations are generated concurrently against it.
func ProductSwap(ctx context.Context, ec *runtime.ExecContext, args ProductSwapArgs) (*domain.WorkflowResult, error) {
	n := runtime.ClampVariations(args.NumVariations)

	inputs := imageRefs("input", args.ReferenceImage, args.ProductImage)
	prompts := composePrompts(ctx, ec, productSwapBrief(args.AdditionalInstructions), inputs, n, func(i int) string {
		if i == 0 {
			return productSwapPrompt(args.AdditionalInstructions)
		}
		return productSwapVariationPrompt(args.AdditionalInstructions)
	})

	plan := &runtime.StagePlan{
		Workflow:      "product-swap",
		PrimaryStepID: "product-swap",
		FanoutStepID:  "product-swap-variations",
		Primary: runtime.Stage{
			Label: "First shot",
			Run: func(c context.Context) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       prompts[0],
					References:   inputs,
					Tag:          "product_swap",
					AspectRatio:  args.AspectRatio,
					OutputFormat: args.OutputFormat,
				})
			},
		},
	}

	for i := 0; i < n-1; i++ {
		prompt := prompts[i+1]
		plan.Dependents = append(plan.Dependents, runtime.DependentStage{
			Label: variationLabel(i),
			Run: func(c context.Context, primary domain.Asset) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       prompt,
					References:   imageRefs("reference", primary.URL),
					Tag:          "product_swap",
					AspectRatio:  args.AspectRatio,
					OutputFormat: args.OutputFormat,
				})
			},
		})
	}

	return runtime.RunStages(ctx, ec, plan).Result(), nil
}
