package domain

import "errors"

var (
	// ErrUnknownWorkflow means the requested workflow id is not registered.
	// This is the one workflow failure surfaced to callers as an error
	// instead of a structured result.
	ErrUnknownWorkflow = errors.New("unknown workflow")

	// ErrExternalService means a collaborator returned a non-success
	// status or an empty body.
	ErrExternalService = errors.New("external service failure")

	// ErrParse means a collaborator reply could not be parsed as the
	// expected structured format.
	ErrParse = errors.New("unparseable collaborator reply")

	// ErrPoolSaturated means the worker pool queue stayed full past the
	// enqueue timeout.
	ErrPoolSaturated = errors.New("worker pool saturated")
)
