package app

import (
	"regexp"
	"strings"
)

// Queries attached to spans are collapsed to one line and capped so a
// large IN clause cannot blow up trace storage.
const tracedQueryLimit = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= tracedQueryLimit {
		return normalized
	}

	return normalized[:tracedQueryLimit] + "..."
}
