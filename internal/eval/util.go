package eval

import "time"

// dateTimeLayouts are tried in order; AIVI date-time literals are
// ISO-8601-looking per spec §4.1.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDateTime(text string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
