package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revenue(t *testing.T, s *Store, r Range) float64 {
	t.Helper()
	v, err := s.RevenueByRange(r)
	require.NoError(t, err)
	return v
}

func TestRevenueByRange_Scenario(t *testing.T) {
	s, _ := openWith(t, Data{Orders: []Order{
		{ID: "a", Total: 1000, Status: StatusDelivered, Date: testNow},
		{ID: "b", Total: 500, Status: StatusCancelled, Date: testNow},
		{ID: "c", Total: 2000, Status: StatusPending, Date: testNow.AddDate(0, 0, -30)},
	}})

	assert.Equal(t, 1000.0, revenue(t, s, RangeToday))
	assert.Equal(t, 3000.0, revenue(t, s, RangeLast30))
	assert.Equal(t, 1000.0, revenue(t, s, RangeThisMonth))
	assert.Equal(t, 0.0, revenue(t, s, RangeYesterday))
}

func TestRevenueByRange_NoOrders(t *testing.T) {
	s, _ := openWith(t, Data{})
	for _, r := range Ranges {
		assert.Zero(t, revenue(t, s, r), r)
	}
}

func TestRevenueByRange_Boundaries(t *testing.T) {
	midnight := time.Date(2025, 3, 15, 0, 0, 0, 0, testLoc)
	s, _ := openWith(t, Data{Orders: []Order{
		{ID: "start-of-today", Total: 1, Status: StatusPending, Date: midnight},
		{ID: "end-of-yesterday", Total: 10, Status: StatusShipped, Date: midnight.Add(-time.Millisecond)},
		{ID: "start-of-yesterday", Total: 100, Status: StatusShipped, Date: midnight.AddDate(0, 0, -1)},
		{ID: "before-yesterday", Total: 1000, Status: StatusShipped, Date: midnight.AddDate(0, 0, -1).Add(-time.Millisecond)},
		{ID: "end-of-today", Total: 10000, Status: StatusProcessing, Date: midnight.AddDate(0, 0, 1).Add(-time.Millisecond)},
		{ID: "tomorrow", Total: 100000, Status: StatusProcessing, Date: midnight.AddDate(0, 0, 1)},
	}})

	assert.Equal(t, 10001.0, revenue(t, s, RangeToday))
	assert.Equal(t, 110.0, revenue(t, s, RangeYesterday))
	// last30 ends at the current instant, so later orders today are left out
	assert.Equal(t, 1111.0, revenue(t, s, RangeLast30))
}

func TestRevenueByRange_UsesLocalWallClock(t *testing.T) {
	// 20:00 UTC on the 14th is 01:30 on the 15th in IST
	s, _ := openWith(t, Data{Orders: []Order{
		{ID: "late-utc", Total: 700, Status: StatusDelivered, Date: time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)},
	}})

	assert.Equal(t, 700.0, revenue(t, s, RangeToday))
	assert.Zero(t, revenue(t, s, RangeYesterday))
}

func TestRevenueByRange_ThisMonth(t *testing.T) {
	s, _ := openWith(t, Data{Orders: []Order{
		{ID: "first", Total: 1, Status: StatusDelivered, Date: time.Date(2025, 3, 1, 0, 0, 0, 0, testLoc)},
		{ID: "last", Total: 2, Status: StatusPending, Date: time.Date(2025, 3, 31, 23, 59, 59, 999e6, testLoc)},
		{ID: "prev-month", Total: 4, Status: StatusDelivered, Date: time.Date(2025, 2, 28, 23, 59, 59, 0, testLoc)},
		{ID: "next-month", Total: 8, Status: StatusDelivered, Date: time.Date(2025, 4, 1, 0, 0, 0, 0, testLoc)},
	}})

	assert.Equal(t, 3.0, revenue(t, s, RangeThisMonth))
}

func TestRevenueByRange_DecimalSum(t *testing.T) {
	s, _ := openWith(t, Data{Orders: []Order{
		{ID: "a", Total: 0.1, Status: StatusDelivered, Date: testNow},
		{ID: "b", Total: 0.2, Status: StatusDelivered, Date: testNow},
	}})
	assert.Equal(t, 0.3, revenue(t, s, RangeToday))
}

func TestRevenueByRange_UnknownRange(t *testing.T) {
	s, _ := openWith(t, Data{})
	_, err := s.RevenueByRange(Range("lastYear"))
	assert.ErrorIs(t, err, ErrUnknownRange)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("thisMonth")
	require.NoError(t, err)
	assert.Equal(t, RangeThisMonth, r)

	_, err = ParseRange("ThisMonth")
	assert.ErrorIs(t, err, ErrUnknownRange)
}

func TestWindow(t *testing.T) {
	start, end, err := Window(RangeLast30, testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 13, 0, 0, 0, 0, testLoc), start)
	assert.Equal(t, testNow, end)

	start, end, err = Window(RangeThisMonth, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999e6, time.UTC), end)
}

func TestRevenueSeries(t *testing.T) {
	s, _ := openWith(t, Data{Orders: []Order{
		{ID: "a", Total: 1000, Status: StatusDelivered, Date: testNow},
		{ID: "b", Total: 250, Status: StatusDelivered, Date: testNow.Add(-time.Hour)},
		{ID: "c", Total: 500, Status: StatusCancelled, Date: testNow},
		{ID: "d", Total: 2000, Status: StatusPending, Date: testNow.AddDate(0, 0, -30)},
	}})

	series, err := s.RevenueSeries(RangeLast30)
	require.NoError(t, err)
	require.Len(t, series, 31)
	assert.Equal(t, time.Date(2025, 2, 13, 0, 0, 0, 0, testLoc), series[0].Day)
	assert.Equal(t, 2000.0, series[0].Total)
	assert.Equal(t, 1250.0, series[30].Total)

	var sum float64
	for _, p := range series {
		sum += p.Total
	}
	assert.Equal(t, revenue(t, s, RangeLast30), sum)

	today, err := s.RevenueSeries(RangeToday)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, 1250.0, today[0].Total)

	month, err := s.RevenueSeries(RangeThisMonth)
	require.NoError(t, err)
	assert.Len(t, month, 31)

	_, err = s.RevenueSeries(Range("nope"))
	assert.ErrorIs(t, err, ErrUnknownRange)
}
