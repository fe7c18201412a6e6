package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Range names a revenue window relative to the current wall-clock time.
type Range string

const (
	RangeToday     Range = "today"
	RangeYesterday Range = "yesterday"
	RangeThisMonth Range = "thisMonth"
	RangeLast30    Range = "last30"
)

// Ranges lists every supported window.
var Ranges = []Range{RangeToday, RangeYesterday, RangeThisMonth, RangeLast30}

var ErrUnknownRange = errors.New("unknown revenue range")

// ParseRange validates a range name.
func ParseRange(s string) (Range, error) {
	for _, r := range Ranges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRange, s)
}

// Window returns the inclusive [start, end] bounds of r around now, in now's
// location:
//
//	today      00:00:00.000 .. 23:59:59.999 of the current day
//	yesterday  the same bounds one calendar day earlier
//	thisMonth  first day 00:00:00.000 .. last day 23:59:59.999
//	last30     midnight 30 days ago .. now
func Window(r Range, now time.Time) (start, end time.Time, err error) {
	loc := now.Location()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch r {
	case RangeToday:
		return midnight, endOfDay(midnight), nil
	case RangeYesterday:
		start = midnight.AddDate(0, 0, -1)
		return start, endOfDay(start), nil
	case RangeThisMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0).Add(-time.Millisecond), nil
	case RangeLast30:
		return midnight.AddDate(0, 0, -30), now, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRange, r)
	}
}

func endOfDay(midnight time.Time) time.Time {
	return midnight.AddDate(0, 0, 1).Add(-time.Millisecond)
}

func counted(o Order, start, end time.Time) bool {
	return o.Status != StatusCancelled && !o.Date.Before(start) && !o.Date.After(end)
}

// RevenueByRange sums the totals of non-cancelled orders dated inside the
// window for r. It depends on the clock, so the same state can yield
// different results on different days.
func (s *Store) RevenueByRange(r Range) (float64, error) {
	start, end, err := Window(r, s.now())
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, o := range s.data.Orders {
		if counted(o, start, end) {
			sum = sum.Add(decimal.NewFromFloat(o.Total))
		}
	}
	total, _ := sum.Float64()
	return total, nil
}

// DailyRevenue is one point of a revenue series.
type DailyRevenue struct {
	Day   time.Time `json:"day"`
	Total float64   `json:"total"`
}

// RevenueSeries breaks the window for r into calendar days, oldest first,
// with days without orders reported as zero.
func (s *Store) RevenueSeries(r Range) ([]DailyRevenue, error) {
	start, end, err := Window(r, s.now())
	if err != nil {
		return nil, err
	}

	type dayKey struct {
		y int
		m time.Month
		d int
	}
	keyOf := func(t time.Time) dayKey {
		y, m, d := t.Date()
		return dayKey{y, m, d}
	}

	perDay := map[dayKey]decimal.Decimal{}
	s.mu.RLock()
	for _, o := range s.data.Orders {
		if counted(o, start, end) {
			k := keyOf(o.Date.In(start.Location()))
			perDay[k] = perDay[k].Add(decimal.NewFromFloat(o.Total))
		}
	}
	s.mu.RUnlock()

	var out []DailyRevenue
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		total, _ := perDay[keyOf(day)].Float64()
		out = append(out, DailyRevenue{Day: day, Total: total})
	}
	return out, nil
}

func (s *Store) now() time.Time {
	return s.nowFunc().In(s.loc)
}
