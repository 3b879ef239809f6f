package entity

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	"github.com/BarkinBalci/insight-query-service/internal/properties"
)

// DefaultSignatureCacheSize bounds the signature cache when no size is configured
const DefaultSignatureCacheSize = 4096

// SignatureCache memoizes leaf signatures. It is safe for concurrent use and
// evicts the least recently used entries once full.
type SignatureCache struct {
	entries *lru.Cache[xxh3.Uint128, string]
}

// NewSignatureCache creates a cache holding at most size signatures
func NewSignatureCache(size int) (*SignatureCache, error) {
	if size <= 0 {
		size = DefaultSignatureCacheSize
	}
	entries, err := lru.New[xxh3.Uint128, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create signature cache: %w", err)
	}
	return &SignatureCache{entries: entries}, nil
}

// Len returns the number of cached signatures
func (c *SignatureCache) Len() int {
	return c.entries.Len()
}

func (c *SignatureCache) get(key xxh3.Uint128) (string, bool) {
	return c.entries.Get(key)
}

func (c *SignatureCache) add(key xxh3.Uint128, signature string) {
	c.entries.Add(key, signature)
}

// leafFields are the semantic fields of a leaf that a signature is built from
type leafFields struct {
	Type     string `msgpack:"t"`
	Key      string `msgpack:"k"`
	Operator string `msgpack:"o"`
	Value    any    `msgpack:"v"`
}

// leafKey hashes the canonical msgpack encoding of a leaf's semantic fields
func leafKey(p properties.PropertyFilter) (xxh3.Uint128, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(leafFields{
		Type:     string(p.Type),
		Key:      p.Key,
		Operator: string(p.Operator),
		Value:    p.Value,
	})
	if err != nil {
		return xxh3.Uint128{}, fmt.Errorf("failed to encode leaf: %w", err)
	}
	return xxh3.Hash128(buf.Bytes()), nil
}
