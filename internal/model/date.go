package model

import (
    "database/sql/driver"
    "fmt"
    "time"
)

// dateLayout is the wire and storage format for civil dates.  The grid
// operates on whole hotel nights, so no clock component is ever carried.
const dateLayout = "2006-01-02"

// Date is a civil calendar date pinned to UTC midnight.  Reservations use
// half-open [CheckIn, CheckOut) intervals of Dates, and the booking grid
// addresses its columns by Date.  The zero value is the zero time and is
// treated as "unset".
type Date struct {
    t time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
    return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) Date {
    u := t.UTC()
    return NewDate(u.Year(), u.Month(), u.Day())
}

// Today returns the current UTC calendar date.
func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
    t, err := time.Parse(dateLayout, s)
    if err != nil {
        return Date{}, fmt.Errorf("parse date %q: %w", s, err)
    }
    return Date{t: t.UTC()}, nil
}

// AddDays returns the date n days later (or earlier when n is negative).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysUntil returns the number of whole days from d to other.  Negative
// when other precedes d.
func (d Date) DaysUntil(other Date) int {
    return int(other.t.Sub(d.t) / (24 * time.Hour))
}

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d follows other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether both values name the same calendar date.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time exposes the underlying UTC midnight instant.
func (d Date) Time() time.Time { return d.t }

// String renders the date as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format(dateLayout) }

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
    return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
    s := string(b)
    if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
        return fmt.Errorf("invalid date literal %s", s)
    }
    parsed, err := ParseDate(s[1 : len(s)-1])
    if err != nil {
        return err
    }
    *d = parsed
    return nil
}

// Value implements driver.Valuer so Dates can be bound to DATE columns.
func (d Date) Value() (driver.Value, error) { return d.t, nil }

// Scan implements sql.Scanner.  The MySQL driver returns DATE columns as
// time.Time when parseTime=true.
func (d *Date) Scan(src interface{}) error {
    switch v := src.(type) {
    case time.Time:
        *d = DateOf(v)
        return nil
    case []byte:
        parsed, err := ParseDate(string(v))
        if err != nil {
            return err
        }
        *d = parsed
        return nil
    case string:
        parsed, err := ParseDate(v)
        if err != nil {
            return err
        }
        *d = parsed
        return nil
    default:
        return fmt.Errorf("cannot scan %T into Date", src)
    }
}
