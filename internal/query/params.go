package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
)

const DateLayout = "2006-01-02"

// Int parses an optional integer query value. Absent or empty yields nil.
func Int(v url.Values, name string) (*int, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperr.BadRequest("%s must be an integer", name)
	}
	return &n, nil
}

func Int64(v url.Values, name string) (*int64, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, apperr.BadRequest("%s must be an integer", name)
	}
	return &n, nil
}

// ID parses a positive id query value.
func ID(v url.Values, name string) (*int64, error) {
	n, err := Int64(v, name)
	if err != nil || n == nil {
		return n, err
	}
	if *n <= 0 {
		return nil, apperr.BadRequest("%s must be a positive id", name)
	}
	return n, nil
}

// Day parses a calendar day (YYYY-MM-DD) in UTC.
func Day(v url.Values, name string) (*time.Time, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, apperr.BadRequest("%s must be a date in YYYY-MM-DD format", name)
	}
	return &t, nil
}

// DayRange is an inclusive calendar-day range on a timestamp column.
type DayRange struct {
	From *time.Time
	To   *time.Time
}

func ParseDayRange(v url.Values, fromName, toName string) (DayRange, error) {
	var r DayRange
	var err error
	if r.From, err = Day(v, fromName); err != nil {
		return r, err
	}
	if r.To, err = Day(v, toName); err != nil {
		return r, err
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, apperr.BadRequest("%s must not be before %s", toName, fromName)
	}
	return r, nil
}

// Apply adds created_at bounds; the upper bound covers the whole To day.
func (r DayRange) Apply(b *Builder, column string) {
	if r.From != nil {
		b.Where(column+" >= ?", *r.From)
	}
	if r.To != nil {
		b.Where(column+" < ?", r.To.AddDate(0, 0, 1))
	}
}

// IntRange is an inclusive numeric range.
type IntRange struct {
	Min *int64
	Max *int64
}

func ParseIntRange(v url.Values, minName, maxName string) (IntRange, error) {
	var r IntRange
	var err error
	if r.Min, err = Int64(v, minName); err != nil {
		return r, err
	}
	if r.Max, err = Int64(v, maxName); err != nil {
		return r, err
	}
	if r.Min != nil && r.Max != nil && *r.Max < *r.Min {
		return r, apperr.BadRequest("%s must not be less than %s", maxName, minName)
	}
	return r, nil
}

func (r IntRange) Apply(b *Builder, column string) {
	if r.Min != nil {
		b.Where(column+" >= ?", *r.Min)
	}
	if r.Max != nil {
		b.Where(column+" <= ?", *r.Max)
	}
}
