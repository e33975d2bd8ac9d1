// Package agent provides the declarative agent model: a Definition binds a
// name to subscriptions, publish specs and an Executor, and a fluent Builder
// assembles definitions from consume/publish declarations. Executors range
// from plain Go functions to model-backed generation.
package agent
