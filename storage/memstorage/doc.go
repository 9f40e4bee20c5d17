// Package memstorage provides an in-memory implementation of the webstore.Storage interface.
//
// It behaves like the Web Storage API: keys are enumerated in insertion order and an optional
// quota bounds the total size of keys and values.
package memstorage
