// Package errors provides the structured error type shared by scenedi
// packages. Every failure surfaced by the registry, resolver and tree
// injector is an *AppError carrying a machine-readable code, so callers can
// branch on the code while logs and the inspector render the details.
package errors
