// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. The engine logs through this interface only; the NoOp
// default keeps library use silent unless a logger is supplied.
package logging
