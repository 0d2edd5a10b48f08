package workflows

import (
	"fmt"
	"strings"
)

// Prompt templates for the built-in workflows. Kept short and literal: the
// image model follows direct composition instructions better than prose.

func productSwapBrief(instructions string) string {
	p := "The first image is a product scene, the second is the product to place into it. " +
		"The product must replace the one shown in the scene while keeping the scene's " +
		"lighting, shadows and perspective."
	return withInstructions(p, instructions)
}

func stealTheLookBrief(instructions string) string {
	p := "The first image shows a person, the second the outfit to dress them in. " +
		"The person's identity, pose and background must be preserved; the outfit's " +
		"garments, colors and accessories reproduced faithfully."
	return withInstructions(p, instructions)
}

func productSwapPrompt(instructions string) string {
	p := "Replace the product in the first image with the product from the second image. " +
		"Keep the scene, lighting, shadows and perspective of the first image intact. " +
		"The swapped product must keep its own colors, materials and branding."
	return withInstructions(p, instructions)
}

func productSwapVariationPrompt(instructions string) string {
	p := "Produce an alternative take of the product swap shown in the reference image: " +
		"same products, same scene, but vary the camera angle or product placement slightly. " +
		"Keep lighting and style consistent with the reference."
	return withInstructions(p, instructions)
}

func stealTheLookPrompt(instructions string) string {
	p := "Dress the person in the first image in the complete outfit worn in the second image. " +
		"Preserve the person's identity, pose, body shape and the original background. " +
		"Reproduce the outfit's garments, colors and accessories faithfully."
	return withInstructions(p, instructions)
}

func stealTheLookVariationPrompt(instructions string) string {
	p := "Produce an alternative shot of the styled person in the reference image: " +
		"same person, same outfit, slightly different pose or framing. " +
		"Keep identity and garments unchanged."
	return withInstructions(p, instructions)
}

func tryonPrompt(instructions string) string {
	p := "Show the person in the first image wearing or using the product in the second image. " +
		"Preserve the person's identity, pose and the background. The product must keep its " +
		"exact design, colors and branding."
	return withInstructions(p, instructions)
}

func sketchPrompt(instructions string) string {
	p := "Turn this product sketch into a photorealistic product photo on a clean studio " +
		"background. Respect the proportions, panel lines and details of the sketch. " +
		"Choose plausible materials and colors unless the sketch indicates them."
	return withInstructions(p, instructions)
}

func sketchVariationPrompt(instructions string) string {
	p := "Produce an alternative photorealistic rendering of the product in the reference " +
		"image: same product, different angle or color treatment. Keep it consistent with " +
		"the original sketch."
	return withInstructions(p, instructions)
}

func bannerPrompt(headline, instructions string) string {
	p := "Design a retail store display banner featuring the provided product images. " +
		"Professional commercial layout, strong focal hierarchy, space for copy."
	if headline != "" {
		p += fmt.Sprintf(" The banner headline text is: %q.", headline)
	}
	return withInstructions(p, instructions)
}

func backgroundRemovalPrompt() string {
	return "Remove the background from this image completely. Output the subject on a fully " +
		"transparent background, preserving fine edges such as hair and fabric. Do not alter " +
		"the subject itself."
}

func withInstructions(base, instructions string) string {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return base
	}
	return base + " Additional instructions: " + instructions
}
