// Package storage provides storage mechanism adapters and utilities for the webstore library.
//
// This package contains decorators such as SilentErrorStorage, which wraps any primary Storage
// to silently handle errors, InstrumentedStorage, which records Prometheus metrics, and
// TracedStorage, which records OpenTelemetry spans. FunctionsStorage and FunctionsFallbackStorage
// allow building custom mechanisms using function callbacks.
//
// This package also defines common error types for storage mechanisms:
// ErrQuotaExceeded and ErrClosed.
package storage
