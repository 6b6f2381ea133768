package model

import (
	"strings"
	"time"
)

const (
	// LocalLayout is the datetime-local form used by drafts and inputs.
	LocalLayout = "2006-01-02T15:04"
	isoLayout   = "2006-01-02T15:04:05.000Z"

	dateTimeLayout = "Jan 2, 2006 15:04"
	dateOnlyLayout = "Jan 2, 2006"

	NotSet      = "not set"
	InvalidTime = "invalid time"
)

var instantLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", LocalLayout}

// ToDatetimeLocal renders an ISO instant as datetime-local in loc, or ""
// when the input is empty or unparsable.
func ToDatetimeLocal(iso string, loc *time.Location) string {
	t, ok := parseISO(iso, loc)
	if !ok {
		return ""
	}
	return t.In(orLocal(loc)).Format(LocalLayout)
}

// ToISOString converts a datetime-local value in loc into a UTC instant
// with millisecond precision, or "" when the input is empty or unparsable.
func ToISOString(local string, loc *time.Location) string {
	t, err := parseLocal(local, loc)
	if err != nil {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

func FormatDateTime(iso string, loc *time.Location) string {
	return formatInstant(iso, loc, dateTimeLayout)
}

func FormatDateOnly(iso string, loc *time.Location) string {
	return formatInstant(iso, loc, dateOnlyLayout)
}

func formatInstant(iso string, loc *time.Location, layout string) string {
	if strings.TrimSpace(iso) == "" {
		return NotSet
	}
	t, ok := parseISO(iso, loc)
	if !ok {
		return InvalidTime
	}
	return t.In(orLocal(loc)).Format(layout)
}

func parseISO(iso string, loc *time.Location) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, iso, orLocal(loc)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseInstant(iso string, loc *time.Location) time.Time {
	t, ok := parseISO(iso, loc)
	if !ok {
		return time.Time{}
	}
	return t.In(orLocal(loc))
}

func parseLocal(local string, loc *time.Location) (time.Time, error) {
	local = strings.TrimSpace(local)
	if local == "" {
		return time.Time{}, ErrInvalidTime
	}
	t, err := time.ParseInLocation(LocalLayout, local, orLocal(loc))
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// ISO renders t as a UTC instant with millisecond precision.
func ISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
