// Package logger provides structured logging for scenedi using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. The registry, resolver
// and tree injector log through the "di" component logger unless a
// specific logger is handed to them.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Debug("binding registered", logger.Fields("key", "var(mode)"))
package logger
