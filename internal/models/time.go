package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LocalDateTimeLayout is the zone-less timestamp format the server speaks.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var localDateTimeLayouts = []string{
	LocalDateTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// LocalDateTime is a wall-clock timestamp without a zone, interpreted in UTC.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime truncates t to seconds and drops its zone.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// ParseLocalDateTime accepts full timestamps, minute precision and bare dates.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return LocalDateTime{t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid date-time %q, expected %s", s, LocalDateTimeLayout)
}

// String formats the value in the server layout, or "" for the zero value.
func (l LocalDateTime) String() string {
	if l.IsZero() {
		return ""
	}
	return l.Format(LocalDateTimeLayout)
}

// MarshalJSON implements [json.Marshaler].
func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(l.Format(LocalDateTimeLayout))
}

// UnmarshalJSON implements [json.Unmarshaler]. Null leaves the zero value.
func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = LocalDateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
