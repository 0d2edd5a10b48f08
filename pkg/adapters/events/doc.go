// Package events provides EventSink implementations: a Redis Streams sink
// for production and an in-memory sink for tests and single-node setups.
package events
