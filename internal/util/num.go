package util

import (
	"regexp"
	"strconv"
	"strings"
)

var commaGrouped = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

// CoerceNumeric parses a spreadsheet cell as a number, returning 0 for
// anything that does not parse. Formatted xlsx cells come back from excelize
// with NBSP padding or comma digit grouping, so those are stripped before
// parsing. A dot is always a decimal point; a comma that is not digit
// grouping does not parse and coerces to 0.
func CoerceNumeric(value string) float64 {
	s := strings.ReplaceAll(value, " ", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	compact := strings.ReplaceAll(s, " ", "")
	if commaGrouped.MatchString(compact) {
		compact = strings.ReplaceAll(compact, ",", "")
	}

	parsed, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0
	}
	return parsed
}
