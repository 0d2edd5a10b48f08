package workflows

import (
	"context"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
)

// BackgroundRemover cuts the subject out of an image onto a transparent
// background. Output is always PNG. Runs on the worker pool.
func BackgroundRemover(ctx context.Context, ec *runtime.ExecContext, body map[string]any) (*domain.WorkflowResult, error) {
	image := stringField(body, "image")
	if image == "" {
		image = stringField(body, "image_url")
	}
	if image == "" {
		return domain.Failure("an input image is required"), nil
	}

	plan := &runtime.StagePlan{
		Workflow:      "background-remover",
		PrimaryStepID: "background-remover",
		Primary: runtime.Stage{
			Label: "Cutout",
			Run: func(c context.Context) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       backgroundRemovalPrompt(),
					References:   imageRefs("input", image),
					Tag:          "cutout",
					OutputFormat: "png",
				})
			},
		},
	}

	return runtime.RunStages(ctx, ec, plan).Result(), nil
}
