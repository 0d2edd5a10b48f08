// Package workflows holds the built-in workflow catalog: the static
// definition table the registry is compiled from, the prompt templates, and
// the entry points themselves. Every workflow produces images through the
// shared stage orchestrator and reports progress on the request's recorder.
package workflows
