// Package cookiestorage provides a webstore.FallbackStorage that keeps values as cookies in an
// http.CookieJar for a single origin.
//
// Values are encoded as JSON and query-escaped, so the mechanism performs its own encoding.
// A jar shared with an http.Client makes the values travel with every request to the origin,
// the same way browser cookies do.
package cookiestorage
