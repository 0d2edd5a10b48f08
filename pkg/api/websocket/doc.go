// Package websocket streams workflow execution over a WebSocket connection:
// the client sends the inputs, receives every progress and image event live,
// and finally the execution result.
package websocket
