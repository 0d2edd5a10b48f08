// Package config provides configuration management for the Atelier runtime.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values have sensible defaults for development use.
// API keys configured here are process-level fallbacks; callers may supply
// per-request keys through HTTP headers instead.
package config
