// Package llm provides ChatClient implementations for the supported
// providers and a factory that selects one from configuration.
package llm
