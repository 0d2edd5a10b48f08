// Package runtime implements the workflow execution engine:
//
//   - a static registry of workflow descriptors, type-checked at registration
//   - the dispatch executor, which resolves an id to an entry point and runs
//     it under either calling convention, on the caller's goroutine or on the
//     bounded worker pool, converting entry-point failures into structured
//     results
//   - the confidence-cascaded intent matcher (rule tier, semantic tier,
//     rule fallback) and the task planner built on the same registry
//   - the dependency-ordered fan-out/fan-in stage orchestrator every
//     multi-image workflow is built on
//
// Per-request state (API-key overrides, the progress recorder, collaborator
// clients) travels in an ExecContext that is created by the transport layer
// and passed explicitly across every concurrency boundary.
package runtime
