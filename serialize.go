package webstore

import (
	"fmt"
)

type undefinedValue struct{}

func (undefinedValue) String() string {
	return "undefined"
}

// Undefined is a sentinel value meaning "no value".
// Setting a key to Undefined removes the key. It is never stored.
var Undefined any = undefinedValue{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// Serialize encodes the value with the Store's codec.
// Encoder errors are returned wrapped with ErrSerialize.
func (s *Store) Serialize(value any) (string, error) {
	b, err := s.codec.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerialize, err)
	}
	return string(b), nil
}

// Deserialize decodes a raw stored value with the Store's codec. It never fails.
//
// If raw is not a string, it returns false. If raw cannot be decoded, it returns raw itself,
// or false when raw is the empty string.
func (s *Store) Deserialize(raw any) (any, bool) {
	str, ok := raw.(string)
	if !ok {
		return nil, false
	}

	var v any
	if err := s.codec.Unmarshal([]byte(str), &v); err != nil {
		if str == "" {
			return nil, false
		}
		return str, true
	}
	return v, true
}
