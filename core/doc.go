// Package core contains the central domain contracts of the blackboard
// engine: artifacts, visibility scopes, predicates, subscriptions, publish
// specifications, match groups and the Agent interface, plus the store
// interfaces implemented by the store and trace packages.
//
// The canonical interfaces live here to avoid dependency cycles and keep the
// domain contracts central. Implementation packages (in-memory, SQLite, cloud
// stores) provide backends that can be swapped without touching calling code.
package core
