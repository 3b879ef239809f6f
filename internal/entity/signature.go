package entity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BarkinBalci/insight-query-service/internal/properties"
)

const defaultSignatureFormat = "{type}: {key} {operator} {value}"

// signatureFormats holds the per-type layouts that differ from the default
var signatureFormats = map[properties.FilterType]string{
	properties.TypeCohort: "{type}: {key} {value}",
	properties.TypeHogQL:  "{type}: {key}",
}

func signatureFormat(t properties.FilterType) string {
	if f, ok := signatureFormats[t]; ok {
		return f
	}
	return defaultSignatureFormat
}

// Signature returns the order-independent string form of a cleaned leaf.
// Results are memoized in the comparator's cache when one is configured.
func (c *Comparator) Signature(p properties.PropertyFilter) string {
	if c.cache == nil {
		return buildSignature(p)
	}

	key, err := leafKey(p)
	if err != nil {
		return buildSignature(p)
	}
	if sig, ok := c.cache.get(key); ok {
		return sig
	}
	sig := buildSignature(p)
	c.cache.add(key, sig)
	return sig
}

// SortedSignatures cleans every leaf, derives its signature and sorts the result.
// Empty signatures are dropped.
func (c *Comparator) SortedSignatures(props []properties.PropertyFilter) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		if sig := c.Signature(p.Canonical()); sig != "" {
			out = append(out, sig)
		}
	}
	sort.Strings(out)
	return out
}

func buildSignature(p properties.PropertyFilter) string {
	r := strings.NewReplacer(
		"{type}", string(p.Type),
		"{key}", p.Key,
		"{operator}", string(p.Operator),
		"{value}", formatValue(p.Value),
	)
	return r.Replace(signatureFormat(p.Type))
}

// formatValue renders a leaf value. Strings are quoted so a string never
// renders the same as a list or number.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strconv.Quote(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}
