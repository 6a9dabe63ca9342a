package datetime

import (
	"regexp"
	"time"
)

type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

var postDateFormats = []string{
	time.RFC3339,     // "2006-01-02T15:04:05Z07:00"
	time.RFC3339Nano, // "2006-01-02T15:04:05.999999999Z07:00"
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	time.RFC1123Z, // "Mon, 02 Jan 2006 15:04:05 -0700"
	time.RFC1123,  // "Mon, 02 Jan 2006 15:04:05 MST"
	"2006-01-02",
	"02/01/2006",
}

// ParsePostDate attempts to parse a post's date field. Documents come from
// many exporters, so a ladder of formats is tried in order.
func (f *Formatter) ParsePostDate(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	for _, format := range postDateFormats {
		if parsedTime, err := time.Parse(format, dateStr); err == nil {
			return parsedTime.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatForDisplay renders a verbatim metadata date for the UI. Unparseable
// dates fall back to "unknown date" rather than failing the post.
func (f *Formatter) FormatForDisplay(dateStr string) string {
	t, ok := f.ParsePostDate(dateStr)
	if !ok {
		return "unknown date"
	}
	return t.Format("January 2, 2006 15:04")
}

// fileNamePattern is the fixed date prefix of post file names:
// YYYY-MM-DD_HH-MM-SS_<slug>.<ext>
var fileNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2})_`)

// ExtractDateFromFileName parses the fixed filename date prefix as UTC.
// It is used only for ordering, never for validation; a name without the
// prefix reports ok=false.
func ExtractDateFromFileName(name string) (time.Time, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02_15-04-05", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
