package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Fingerprint derives the deterministic cache key for a request. Params
// are serialized in sorted key order, so two maps that are equal as sets
// of pairs produce the same key regardless of insertion order. The
// options map follows the same rule; a nil map and an empty map are
// equivalent.
func Fingerprint(templateID, model string, params map[string]string, opts map[string]string) string {
	h := sha256.New()
	h.Write([]byte(templateID))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(canonical(params))
	h.Write([]byte{0})
	h.Write(canonical(opts))
	return hex.EncodeToString(h.Sum(nil))
}

// canonical produces a deterministic JSON object for a string map.
func canonical(m map[string]string) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(m[k])
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String())
}
