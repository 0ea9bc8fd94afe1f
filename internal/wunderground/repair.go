package wunderground

import "strings"

// repairRule is one pure rewrite applied to a raw daily-history
// payload.
type repairRule struct {
	name  string
	apply func(string) string
}

// repairRules lists the source's known formatting defects in the order
// they must be corrected. Order matters: the patterns later rules
// match are produced by the earlier ones.
var repairRules = []repairRule{
	// The payload opens with a bare newline and ends with one.
	{"trim newlines", func(s string) string {
		return strings.Trim(s, "\n")
	}},
	// Every data line ends with "\n<br>\n", doubling the separator.
	{"collapse doubled line endings", func(s string) string {
		return strings.ReplaceAll(s, "\n<br>\n", "\n")
	}},
	// The header line ends with a lone "<br>\n".
	{"fix header line ending", func(s string) string {
		return strings.ReplaceAll(s, "<br>\n", "\n")
	}},
	// Data lines carry one dangling comma before the line end.
	{"strip trailing commas", func(s string) string {
		return strings.ReplaceAll(s, ",\n", "\n")
	}},
}

// Repair corrects the known formatting defects in a raw payload.
// Already-clean text passes through unchanged.
func Repair(raw string) string {
	for _, rule := range repairRules {
		raw = rule.apply(raw)
	}
	return raw
}
