// Package strings provides string list helpers for configuration values.
package strings

import (
	"strings"
)

// SplitList flattens comma separated entries into a single list. Entries are
// trimmed, blanks are dropped and duplicates removed. Order is preserved.
//
//	SplitList([]string{"a:9092, b:9092", "a:9092", " "})
//	// Returns: []string{"a:9092", "b:9092"}
func SplitList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	var result []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			result = append(result, part)
		}
	}
	return result
}
