// Package ports defines the interfaces between the runtime core and its
// collaborators: chat, image generation, artifact storage, byte fetching,
// event mirroring, and metrics. Adapters under pkg/adapters implement them.
package ports
