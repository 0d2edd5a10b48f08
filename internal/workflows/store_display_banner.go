package workflows

import (
	"context"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
)

// StoreDisplayBanner composes a retail display banner from product images and
// an optional headline. It runs on the worker pool: banner layouts take the
// model noticeably longer than single-subject edits.
func StoreDisplayBanner(ctx context.Context, ec *runtime.ExecContext, body map[string]any) (*domain.WorkflowResult, error) {
	products := stringSliceField(body, "product_images")
	if single := stringField(body, "product_image"); single != "" {
		products = append([]string{single}, products...)
	}
	if len(products) == 0 {
		return domain.Failure("at least one product image is required"), nil
	}

	headline := stringField(body, "headline")
	instructions := stringField(body, "additional_instructions")

	plan := &runtime.StagePlan{
		Workflow:      "store-display-banner",
		PrimaryStepID: "store-display-banner",
		Primary: runtime.Stage{
			Label: "Banner",
			Run: func(c context.Context) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       bannerPrompt(headline, instructions),
					References:   imageRefs("product", products...),
					Tag:          "banner",
					AspectRatio:  stringField(body, "aspect_ratio"),
					OutputFormat: stringField(body, "output_format"),
				})
			},
		},
	}

	return runtime.RunStages(ctx, ec, plan).Result(), nil
}
