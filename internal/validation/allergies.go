package validation

import "strings"

// NormalizeAllergies turns a comma separated list into trimmed, lower-cased,
// de-duplicated entries. Blank input, or input with no entries left, yields nil.
func NormalizeAllergies(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeAllergyList(strings.Split(raw, ","))
}

// NormalizeAllergyList applies the same rules to entries that arrive already split
func NormalizeAllergyList(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		a := strings.ToLower(strings.TrimSpace(item))
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
