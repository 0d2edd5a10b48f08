package workflows

import (
	"context"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
)

// StealTheLookArgs is the typed input of the steal-the-look workflow.
type StealTheLookArgs struct {
	PersonImage            string `json:"person_image"`
	LookImage              string `json:"look_image"`
	AdditionalInstructions string `json:"additional_instructions"`
	AspectRatio            string `json:"aspect_ratio"`
	OutputFormat           string `json:"output_format"`
	NumVariations          int    `json:"num_variations"`
}

// StealTheLook re-dresses the person in the outfit worn in the look image.
func StealTheLook(ctx context.Context, ec *runtime.ExecContext, args StealTheLookArgs) (*domain.WorkflowResult, error) {
	n := runtime.ClampVariations(args.NumVariations)

	inputs := imageRefs("input", args.PersonImage, args.LookImage)
	prompts := composePrompts(ctx, ec, stealTheLookBrief(args.AdditionalInstructions), inputs, n, func(i int) string {
		if i == 0 {
			return stealTheLookPrompt(args.AdditionalInstructions)
		}
		return stealTheLookVariationPrompt(args.AdditionalInstructions)
	})

	plan := &runtime.StagePlan{
		Workflow:      "steal-the-look",
		PrimaryStepID: "steal-the-look",
		FanoutStepID:  "steal-the-look-variations",
		Primary: runtime.Stage{
			Label: "First shot",
			Run: func(c context.Context) (*domain.Asset, error) {
				return generateAsset(c, ec, &ports.GenerateRequest{
					Prompt:       prompts[0],
					References:   inputs,
					Tag:          "steal_the_look",
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
					Tag:          "steal_the_look",
					AspectRatio:  args.AspectRatio,
					OutputFormat: args.OutputFormat,
				})
			},
		})
	}

	return runtime.RunStages(ctx, ec, plan).Result(), nil
}
