package workflows

import (
	"context"
	"fmt"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
)

// MultiproductTryonArgs is the typed input of the multiproduct-tryon workflow.
type MultiproductTryonArgs struct {
	PersonImage            string   `json:"person_image"`
	ProductImages          []string `json:"product_images"`
	AdditionalInstructions string   `json:"additional_instructions"`
	AspectRatio            string   `json:"aspect_ratio"`
	OutputFormat           string   `json:"output_format"`
}

// MultiproductTryon produces one try-on image per product. The first product
// anchors the shoot; the remaining ones are generated concurrently, each
// against the original person image with the first shot as a style reference.
func MultiproductTryon(ctx context.Context, ec *runtime.ExecContext, args MultiproductTryonArgs) (*domain.WorkflowResult, error) {
	products := args.ProductImages
	if len(products) == 0 {
		return domain.Failure("product_images must contain at least one image"), nil
	}
	if n := runtime.ClampVariations(len(products)); n < len(products) {
		products = products[:n]
	}

	plan := &runtime.StagePlan{
		Workflow:      "multiproduct-tryon",
		PrimaryStepID: "multiproduct-tryon",
		FanoutStepID:  "multiproduct-tryon-products",
		Primary: runtime.Stage{
			Label: "Product 1",
			Run: func(c context.Context) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       tryonPrompt(args.AdditionalInstructions),
					References:   imageRefs("input", args.PersonImage, products[0]),
					Tag:          "tryon",
					AspectRatio:  args.AspectRatio,
					OutputFormat: args.OutputFormat,
				})
			},
		},
	}

	for i, product := range products[1:] {
		plan.Dependents = append(plan.Dependents, runtime.DependentStage{
			Label: fmt.Sprintf("Product %d", i+2),
			Run: func(c context.Context, primary domain.Asset) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       tryonPrompt(args.AdditionalInstructions),
					References:   imageRefs("input", args.PersonImage, product, primary.URL),
					Tag:          "tryon",
					AspectRatio:  args.AspectRatio,
					OutputFormat: args.OutputFormat,
				})
			},
		})
	}

	return runtime.RunStages(ctx, ec, plan).Result(), nil
}
