// Package sqlitestorage provides a durable webstore.Storage backed by SQLite.
//
// Items live in a single table and are enumerated in insertion order.
// It uses the pure Go driver modernc.org/sqlite, so no cgo is required.
package sqlitestorage
