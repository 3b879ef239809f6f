package properties

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Parse decodes a raw JSON filter payload into generic values suitable for
// NormalizeGlobal and NormalizeEntity. A blank payload decodes to nil.
func Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return v, nil
}

// ParseGlobal decodes and normalizes a global filter payload
func ParseGlobal(data []byte) (*FilterGroup, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NormalizeGlobal(v)
}

// ParseEntity decodes and normalizes an entity property payload
func ParseEntity(data []byte) ([]PropertyFilter, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NormalizeEntity(v)
}
