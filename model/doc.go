// Package model defines the provider-neutral generation interface used by
// model-backed agents, plus a deterministic mock for tests. Provider adapters
// live in the openai and anthropic subpackages.
package model
