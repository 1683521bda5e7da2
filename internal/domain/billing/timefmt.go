package billing

import "time"

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t as UTC ISO-8601 with millisecond precision.
// A nil time renders as nil, never as the epoch.
func FormatISO(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(isoLayout)
	return &s
}
