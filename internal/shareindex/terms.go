package shareindex

import "strings"

// extractTerms lowercases s and splits it on runs of non-alphanumeric
// characters, keeping terms of length >= 2 and de-duplicating.
func extractTerms(s string) []string {
	lower := strings.ToLower(s)

	fields := strings.FieldsFunc(lower, func(r rune) bool {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		return !isAlnum
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	return out
}
