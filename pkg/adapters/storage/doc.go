// Package storage provides ArtifactStore implementations: a Redis store for
// production and an in-memory store for tests and single-node setups. Both
// hand back public URLs under the configured base URL's /assets/ path.
package storage
