package httputil

import (
	"encoding/json"
	"fmt"
	"io"
)

// Body is a decoded JSON object that keeps track of which keys the
// client actually sent. Partial-update handlers need the distinction:
// an absent key leaves a field untouched, an explicit null clears it.
type Body map[string]json.RawMessage

// DecodeBody reads a JSON object from r.
func DecodeBody(r io.Reader) (Body, error) {
	var b Body
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, err
	}
	if b == nil {
		b = Body{}
	}
	return b, nil
}

// Has reports whether the client sent the key, null included.
func (b Body) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// String returns the value for key, nil for JSON null.
func (b Body) String(key string) (*string, error) {
	var v *string
	if err := json.Unmarshal(b[key], &v); err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

// Int returns the value for key, nil for JSON null.
func (b Body) Int(key string) (*int, error) {
	var v *int
	if err := json.Unmarshal(b[key], &v); err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

// Int64 returns the value for key, nil for JSON null.
func (b Body) Int64(key string) (*int64, error) {
	var v *int64
	if err := json.Unmarshal(b[key], &v); err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

// Bool returns the value for key, nil for JSON null.
func (b Body) Bool(key string) (*bool, error) {
	var v *bool
	if err := json.Unmarshal(b[key], &v); err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}
