// Package logger provides the structured logging handle used across igapi.
//
// It wraps zerolog behind the Logger interface. There is no package level
// instance: build one with New (from config.LoggingConfig) or NewWithWriter and
// pass it to the components that need it. Library code that receives no logger
// falls back to NewNopLogger.
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	client, err := instagram.New(instagram.Options{Logger: log, ...})
//
// Tests use NewTestLogger, which records every message for later assertions.
package logger
