package search

import (
	"regexp"
	"strings"
)

// exclusionToken splits exclusion input on whitespace, keeping quoted
// phrases whole.
var exclusionToken = regexp.MustCompile(`(?:"[^"]*"|\S+)`)

// Filter removes every process group in which any mention's content
// contains any of the exclusion terms as a case-insensitive substring.
// Quoted phrases are single terms. Returns a new Result; the input is
// never mutated. Blank exclusion input is a no-op.
func Filter(results Result, exclusionTerms string) Result {
	if strings.TrimSpace(exclusionTerms) == "" {
		return results
	}

	var terms []string
	for _, match := range exclusionToken.FindAllString(exclusionTerms, -1) {
		if strings.HasPrefix(match, `"`) && strings.HasSuffix(match, `"`) && len(match) >= 2 {
			match = match[1 : len(match)-1]
		}
		if match != "" {
			terms = append(terms, strings.ToLower(match))
		}
	}
	if len(terms) == 0 {
		return results
	}

	filtered := make(Result, 0, len(results))
	for _, group := range results {
		if !groupMatchesAny(group, terms) {
			filtered = append(filtered, group)
		}
	}
	return filtered
}

func groupMatchesAny(group ProcessGroup, terms []string) bool {
	for _, mention := range group.Mentions {
		content := strings.ToLower(mention.Content)
		for _, term := range terms {
			if strings.Contains(content, term) {
				return true
			}
		}
	}
	return false
}
