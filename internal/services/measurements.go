package services

import (
	"regexp"
	"strings"
)

// Dictated text is split into fragments on commas and newlines; each
// fragment must be a label (1-50 non-digit runes) followed by an
// integer or decimal value. Comma is accepted as a decimal separator
// to match how speech recognition writes numbers out.
var (
	fragmentSplitRe   = regexp.MustCompile(`[,\n]`)
	measurementLineRe = regexp.MustCompile(`^([^\d]{1,50})\s+(\d+(?:[.,]\d+)?)$`)
)

// ParseMeasurementLines extracts label->value pairs from free-form
// dictated text. Fragments that do not look like a measurement are
// silently dropped: partial recognition is expected. When the same
// label is dictated twice the later value wins. Labels come out
// lower-cased and values with "." as the decimal separator.
//
// An empty result means nothing was recognized; the caller reports
// that to the user as a retry prompt.
func ParseMeasurementLines(raw string) map[string]string {
	result := make(map[string]string)

	for _, fragment := range fragmentSplitRe.Split(raw, -1) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		m := measurementLineRe.FindStringSubmatch(fragment)
		if m == nil {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(m[1]))
		value := strings.ReplaceAll(m[2], ",", ".")
		result[label] = value
	}

	return result
}
