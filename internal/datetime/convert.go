// Package datetime recognizes a date or timestamp in free text and shows it
// in several common representations.
package datetime

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/mattjoyce/launchkit/internal/protocol"
)

// Converter parses queries relative to a location and clock.
type Converter struct {
	Location *time.Location
	Now      func() time.Time
}

// New returns a Converter in the local time zone.
func New() *Converter {
	return &Converter{Location: time.Local, Now: time.Now}
}

// Parse recognizes query as a point in time. ok is false when nothing was
// recognized; that is a normal outcome, not an error.
func (c *Converter) Parse(query string) (t time.Time, ok bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return time.Time{}, false
	}

	now := c.Now().In(c.Location)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location)
	switch strings.ToLower(query) {
	case "now":
		return now, true
	case "today":
		return day, true
	case "yesterday":
		return day.AddDate(0, 0, -1), true
	case "tomorrow":
		return day.AddDate(0, 0, 1), true
	}

	t, err := dateparse.ParseIn(query, c.Location)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Items returns one item per representation, or none if query is not a date.
func (c *Converter) Items(query string) []protocol.Item {
	t, ok := c.Parse(query)
	if !ok {
		return []protocol.Item{}
	}
	return Representations(t, c.Location)
}

// Representations renders t as milliseconds, local ISO 8601, UTC ISO 8601,
// ctime and seconds, in that order.
func Representations(t time.Time, loc *time.Location) []protocol.Item {
	add := func(badge, value string) protocol.Item {
		return protocol.Item{Title: value, Badge: badge}
	}
	local := t.In(loc)
	return []protocol.Item{
		add("MSEC", strconv.FormatInt(t.UnixMilli(), 10)),
		add("ISO", local.Format(time.RFC3339Nano)),
		add("UTC", t.UTC().Format(time.RFC3339Nano)),
		add("CTIME", local.Format(time.ANSIC)),
		add("SEC", strconv.FormatInt(t.Unix(), 10)),
	}
}
