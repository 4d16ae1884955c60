package corpus

import (
	"regexp"
	"strings"
)

var (
	bracketedClause = regexp.MustCompile(`[(\[].*?[)\]]`)
	trailingPeriod  = regexp.MustCompile(`\.$`)
)

// NormalizeAnswer produces the canonical comparison form of a stored answer:
// parenthetical and bracketed clauses are dropped, a single trailing period
// and all double quotes are removed, surrounding whitespace is trimmed.
// Applied once at ingestion time, never per comparison. Idempotent.
func NormalizeAnswer(raw string) string {
	s := bracketedClause.ReplaceAllString(raw, "")
	s = trailingPeriod.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}

// NormalizeInput prepares user input (or a stored answer) for comparison:
// trimmed and case-folded. Cheap and idempotent, so the engine applies it to
// both sides on every attempt.
func NormalizeInput(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
