// Package domain holds the value types shared across the runtime: workflow
// descriptors and results, match results, task plans, and progress events.
// Types here carry no behavior beyond construction helpers.
package domain
