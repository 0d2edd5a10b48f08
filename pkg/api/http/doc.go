// Package http exposes the workflow runtime over a REST API: execution,
// matching, planning, and artifact serving.
package http
