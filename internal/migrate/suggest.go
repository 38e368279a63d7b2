package migrate

import "github.com/agext/levenshtein"

// suggest returns the candidate closest to value by edit distance, or ""
// when nothing is close enough to be a plausible typo. Candidates must be
// sorted; the first one wins a tie.
func suggest(value string, candidates []string) string {
	value = norm(value)
	if value == "" {
		return ""
	}
	limit := len(value) / 3
	if limit < 2 {
		limit = 2
	}

	best, bestDist := "", limit+1
	for _, c := range candidates {
		if d := levenshtein.Distance(value, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
