// Package inspector serves a read-only HTTP view of a binding registry and
// its scene tree.
//
// Routes:
//
//	GET /health          registry and component health
//	GET /info            build information
//	GET /bindings        every binding with its aliases and strategy
//	GET /bindings/:var   the value bound to a variable (Value strategy only)
//	GET /tree            scene snapshot; ?node=<id> or ?path=/root/world selects a subtree
//
// Errors are rendered as AppError JSON bodies.
package inspector
