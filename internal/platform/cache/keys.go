package cache

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateKey builds a deterministic fingerprint for a report request.
// Params with nil values are dropped, the rest are sorted by name so the
// key is independent of insertion order, and the result has the shape
// "<prefix>:name1=v1&name2=v2". An empty params map yields "<prefix>:".
func GenerateKey(prefix string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value == nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, params[name]))
	}

	return prefix + ":" + strings.Join(pairs, "&")
}
