package cookiestorage

import (
	stdjson "encoding/json"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/karupanerura/webstore/storage"
)

// MaxCookieSize is the maximum size of an encoded cookie name and value in bytes.
const MaxCookieSize = 4096

// Encode encodes the key and the value into a cookie name and value.
// The value is encoded as JSON and query-escaped.
// It fails with storage.ErrQuotaExceeded when the result exceeds MaxCookieSize.
func Encode(key string, value any) (name, encoded string, err error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", "", fmt.Errorf("encode cookie %q: %w", key, err)
	}

	name, encoded = url.QueryEscape(key), url.QueryEscape(string(b))
	if size := len(name) + len(encoded); size > MaxCookieSize {
		return "", "", fmt.Errorf("%w: cookie %q is %d bytes", storage.ErrQuotaExceeded, key, size)
	}
	return name, encoded, nil
}

// EncodeName encodes the key into a cookie name.
func EncodeName(key string) string {
	return url.QueryEscape(key)
}

// DecodeName decodes the cookie name into a key. Names that cannot be unescaped are returned as is.
func DecodeName(name string) string {
	if key, err := url.QueryUnescape(name); err == nil {
		return key
	}
	return name
}

// Decode decodes the cookie value. A value that is not valid JSON is returned as the raw string.
func Decode(encoded string) any {
	raw, err := url.QueryUnescape(encoded)
	if err != nil {
		raw = encoded
	}
	// go-json accepts non-strict text like "007", which must stay a string
	if !stdjson.Valid([]byte(raw)) {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
