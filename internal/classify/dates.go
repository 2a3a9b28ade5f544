package classify

import (
	"strings"
	"time"
)

// dateFormats is the fixed parse priority list. Day-first slash formats
// outrank month-first so that ambiguous values like "01/02/2023" resolve
// the same way across a whole column; dash formats follow the US
// MM-DD-YYYY convention. Non-padded layouts accept both "01" and "1".
// The tail entries are the free-form fallbacks.
var dateFormats = []string{
	"2006-1-2",
	"2/1/2006",
	"1-2-2006",
	"2006/1/2",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseDate attempts to parse a value as a calendar date using the fixed
// format priority list. The list is applied in the same order for every
// value, so day/month ambiguity resolves consistently across a column.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
