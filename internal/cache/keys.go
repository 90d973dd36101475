package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// maxLiteralKeyLen is the longest candidate kept verbatim; anything longer
// collapses to the hashed form.
const maxLiteralKeyLen = 250

// DeriveKey builds a deterministic cache key for an operation and its
// parameters. Parameters with nil values are dropped, the rest are sorted
// by name and encoded canonically, so structurally equal inputs always map
// to the same key regardless of construction order. Candidates longer than
// 250 characters are replaced by "operation:hash:<md5 hex>".
func DeriveKey(operation string, params map[string]interface{}) string {
	candidate := canonical(operation, params)
	if len(candidate) <= maxLiteralKeyLen {
		return candidate
	}
	return fmt.Sprintf("%s:hash:%x", operation, md5.Sum([]byte(candidate)))
}

// ParamsHash returns the md5 hex digest of the canonical request form.
// Recorded in entry metadata as the input hash.
func ParamsHash(operation string, params map[string]interface{}) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(canonical(operation, params))))
}

func canonical(operation string, params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value == nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, 2*len(names)+1)
	parts = append(parts, operation)
	for _, name := range names {
		parts = append(parts, name, encodeValue(params[name]))
	}
	return strings.Join(parts, ":")
}

// encodeValue produces a deterministic encoding of a parameter value.
// encoding/json emits map keys in sorted order, so nested objects encode
// identically however they were built. Values that cannot be serialized
// fall back to their fmt representation; key derivation never fails.
func encodeValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
