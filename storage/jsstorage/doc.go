// Package jsstorage binds webstore to the storage mechanisms of a browser when the program is
// compiled to WebAssembly: window.localStorage as the primary mechanism and document.cookie as
// the fallback mechanism.
package jsstorage
