package search

import "github.com/canopus-dev/gitsleuth/internal/domain"

// Dedupe removes later records that share a link with an earlier one,
// preserving first-seen order. Records without a link all share the empty
// key and collapse to the first such record. O(n) with a seen-set.
func Dedupe[T domain.Linked](records []T) []T {
	if len(records) < 2 {
		return records
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]T, 0, len(records))
	for _, r := range records {
		key := r.Link()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
