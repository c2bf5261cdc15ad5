package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of every date exchanged with callers and downstream services.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day at midnight UTC.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateFromUnix converts epoch seconds to the UTC day containing them.
func DateFromUnix(seconds int64) Date {
	return Date{time.Unix(seconds, 0).UTC().Truncate(24 * time.Hour)}
}

// ParseDate parses a yyyy-mm-dd string. Anything after the first ten characters
// (a time part, a zone) is ignored.
func ParseDate(s string) (Date, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date format %q, expected yyyy-mm-dd", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// DaysUntil returns the number of whole days from d to other. Both dates are
// UTC midnights, so epoch seconds divide evenly.
func (d Date) DaysUntil(other Date) int {
	return int((other.Unix() - d.Unix()) / secondsPerDay)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a yyyy-mm-dd string, a bare epoch-seconds number,
// or an instant object of the form {"seconds": N, "nanos": M}.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case '{':
		var instant struct {
			Seconds *int64 `json:"seconds"`
		}
		if err := json.Unmarshal(data, &instant); err != nil {
			return fmt.Errorf("invalid date object: %w", err)
		}
		if instant.Seconds == nil {
			return fmt.Errorf("invalid date object %s: missing seconds", data)
		}
		*d = DateFromUnix(*instant.Seconds)
		return nil
	default:
		var seconds int64
		if err := json.Unmarshal(data, &seconds); err != nil {
			return fmt.Errorf("invalid date %s: %w", data, err)
		}
		*d = DateFromUnix(seconds)
		return nil
	}
}
