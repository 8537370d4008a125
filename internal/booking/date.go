package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time component, carried as YYYY-MM-DD on
// the wire. All date arithmetic is done in UTC.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string into a Date. Invalid calendar dates
// (2024-02-30) are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// Today returns the current UTC calendar day.
func Today() Date {
	now := time.Now().UTC()
	return Date{time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
}

// AddMonths adds n calendar months, normalizing overflow the way the
// standard library does (Jan 31 + 1 month = Mar 2/3).
func (d Date) AddMonths(n int) Date {
	return Date{d.AddDate(0, n, 0)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Nights returns the number of nights between check-in and check-out,
// rounding partial days up.
func Nights(checkIn, checkOut Date) int {
	hours := checkOut.Sub(checkIn.Time).Hours()
	nights := int(hours / 24)
	if float64(nights*24) < hours {
		nights++
	}
	return nights
}
