// Package progress implements the request-scoped progress/event bus.
//
// Each request owns one Recorder. Workflows record progress and image events
// as they run; the transport layer either drains the lists when execution
// finishes (collect mode) or subscribes for a live stream (WebSocket). Every
// event is also forwarded to the logger and, best-effort, to a process-wide
// event sink.
package progress
