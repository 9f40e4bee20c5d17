// Package badgerstorage provides a durable webstore.Storage backed by Badger.
//
// Items are stored under a key prefix, so a Badger database can be shared with other data.
// Keys are enumerated in Badger's lexicographic order.
// Length and Key share a snapshot of the keys that is taken by one scan and dropped on the next write,
// so walking every index costs one scan instead of one per index.
package badgerstorage
