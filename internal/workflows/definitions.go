package workflows

import (
	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/domain"
)

// Definitions returns the built-in workflow catalog the registry is compiled
// from. Ids, keywords and patterns here drive both dispatch and matching.
func Definitions() []runtime.Definition {
	return []runtime.Definition{
		{
			Info: domain.WorkflowInfo{
				ID:                "product-swap",
				Name:              "Product Swap",
				Description:       "Replace the product in a reference scene with another product, keeping the scene intact.",
				Category:          "compositing",
				Keywords:          []string{"swap", "replace", "product", "scene"},
				RequiredInputs:    []string{"product_image", "reference_image"},
				EstimatedDuration: "30-60s",
			},
			Patterns:   []string{`swap.*product`, `replace.*product`, `put.*product.*(in|into)`},
			Convention: domain.ConventionExpandedArgs,
			Entry:      runtime.Expanded(ProductSwap),
		},
		{
			Info: domain.WorkflowInfo{
				ID:                "steal-the-look",
				Name:              "Steal the Look",
				Description:       "Dress a person in the outfit worn in another image.",
				Category:          "fashion",
				Keywords:          []string{"outfit", "look", "dress", "wear", "style"},
				RequiredInputs:    []string{"person_image", "look_image"},
				EstimatedDuration: "30-60s",
			},
			Patterns:   []string{`steal.*look`, `same.*outfit`, `dress.*like`},
			Convention: domain.ConventionExpandedArgs,
			Entry:      runtime.Expanded(StealTheLook),
		},
		{
			Info: domain.WorkflowInfo{
				ID:                "multiproduct-tryon",
				Name:              "Multiproduct Try-On",
				Description:       "Show a person wearing or using each of several products, one image per product.",
				Category:          "fashion",
				Keywords:          []string{"try", "tryon", "wearing", "products", "model"},
				RequiredInputs:    []string{"person_image", "product_images"},
				EstimatedDuration: "1-3m",
			},
			Patterns:   []string{`try.{0,4}on`, `wearing.*(each|all|these)`},
			Convention: domain.ConventionExpandedArgs,
			Entry:      runtime.Expanded(MultiproductTryon),
		},
		{
			Info: domain.WorkflowInfo{
				ID:                "sketch-to-product",
				Name:              "Sketch to Product",
				Description:       "Render a product sketch into photorealistic product photos.",
				Category:          "design",
				Keywords:          []string{"sketch", "drawing", "render", "concept"},
				RequiredInputs:    []string{"sketch_images"},
				EstimatedDuration: "1-2m",
			},
			Patterns:   []string{`sketch.*(to|into).*(product|photo)`, `render.*sketch`},
			Convention: domain.ConventionSingleBodyArg,
			Entry:      SketchToProduct,
		},
		{
			Info: domain.WorkflowInfo{
				ID:                "store-display-banner",
				Name:              "Store Display Banner",
				Description:       "Compose a retail display banner from product images and a headline.",
				Category:          "marketing",
				Keywords:          []string{"banner", "display", "poster", "promotion"},
				RequiredInputs:    []string{"product_images"},
				EstimatedDuration: "1-2m",
			},
			Patterns:   []string{`(store|display|promo).*banner`, `banner.*(for|with)`},
			Convention: domain.ConventionSingleBodyArg,
			Blocking:   true,
			Entry:      StoreDisplayBanner,
		},
		{
			Info: domain.WorkflowInfo{
				ID:                "background-remover",
				Name:              "Background Remover",
				Description:       "Cut the subject out of an image onto a transparent background.",
				Category:          "editing",
				Keywords:          []string{"background", "remove", "transparent", "cutout"},
				RequiredInputs:    []string{"image"},
				EstimatedDuration: "20-40s",
			},
			Patterns:   []string{`remove.*background`, `background.*remov`, `transparent.*background`},
			Convention: domain.ConventionSingleBodyArg,
			Blocking:   true,
			Entry:      BackgroundRemover,
		},
	}
}
