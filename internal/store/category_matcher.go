package store

import "strings"

// MatchCategory finds the best matching transaction category for a goal's
// target-category reference (or its title, when no explicit reference is
// set). Matching strategy:
// 1. Exact match (case-insensitive)
// 2. Contains match (e.g., "dining" matches "Food & Dining")
// 3. Word-based match on significant words
// No match returns "".
func MatchCategory(suggested string, categories []string) string {
	suggestedLower := strings.ToLower(strings.TrimSpace(suggested))
	if suggestedLower == "" {
		return ""
	}

	// Strategy 1: Exact match (case-insensitive).
	for _, cat := range categories {
		if strings.EqualFold(cat, suggested) {
			return cat
		}
	}

	// Strategy 2: Contains match - shortest category containing the term.
	best := ""
	for _, cat := range categories {
		if strings.Contains(strings.ToLower(cat), suggestedLower) {
			if best == "" || len(cat) < len(best) {
				best = cat
			}
		}
	}
	if best != "" {
		return best
	}

	// Strategy 2b: Reverse check - the term contains a category name.
	for _, cat := range categories {
		if strings.Contains(suggestedLower, strings.ToLower(cat)) {
			if len(cat) > len(best) {
				best = cat
			}
		}
	}
	if best != "" {
		return best
	}

	// Strategy 3: Word-based matching on significant words.
	suggestedWords := extractSignificantWords(suggested)
	for _, cat := range categories {
		catWords := extractSignificantWords(cat)
		for _, sw := range suggestedWords {
			for _, cw := range catWords {
				if strings.EqualFold(sw, cw) {
					return cat
				}
			}
		}
	}

	return ""
}

// extractSignificantWords extracts words from a string, filtering out
// common separators.
func extractSignificantWords(s string) []string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "&", " ")

	var significant []string
	for _, w := range strings.Fields(s) {
		if len(w) >= 3 && !isStopWord(w) {
			significant = append(significant, w)
		}
	}
	return significant
}

func isStopWord(word string) bool {
	switch word {
	case "and", "the", "for":
		return true
	}
	return false
}
