package webstore

import (
	stdjson "encoding/json"
	"errors"

	"github.com/goccy/go-json"
)

// ErrInvalidJSON is returned by JSONCodec.Unmarshal for data that is not strict JSON text.
var ErrInvalidJSON = errors.New("invalid JSON text")

// JSONCodec is the default Codec. It encodes values as JSON text.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

// Marshal encodes v as JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
// The data is validated against the strict JSON grammar first: go-json alone accepts
// forms such as leading zeros ("007") or a trailing dot ("1.") and decodes them as numbers.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if !stdjson.Valid(data) {
		return ErrInvalidJSON
	}
	return json.Unmarshal(data, v)
}

// Name returns "json".
func (JSONCodec) Name() string {
	return "json"
}
