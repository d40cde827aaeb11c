package period

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValid(t *testing.T) {
	for _, p := range []Period{Weekly, Monthly, Annual} {
		if !p.Valid() {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if Period("quarterly").Valid() {
		t.Error("expected quarterly to be invalid")
	}
	if Period("").Valid() {
		t.Error("expected empty period to be invalid")
	}
}

func TestWindowWeekly(t *testing.T) {
	t.Run("midweek", func(t *testing.T) {
		// Wednesday 2024-06-12
		start, end := Window(Weekly, date(2024, time.June, 12))
		if !start.Equal(date(2024, time.June, 10)) {
			t.Errorf("expected start Monday 2024-06-10, got %s", start)
		}
		if !end.Equal(date(2024, time.June, 16)) {
			t.Errorf("expected end Sunday 2024-06-16, got %s", end)
		}
	})

	t.Run("monday_is_window_start", func(t *testing.T) {
		start, _ := Window(Weekly, date(2024, time.June, 10))
		if !start.Equal(date(2024, time.June, 10)) {
			t.Errorf("expected Monday to start its own week, got %s", start)
		}
	})

	t.Run("sunday_belongs_to_previous_monday", func(t *testing.T) {
		start, end := Window(Weekly, date(2024, time.June, 16))
		if !start.Equal(date(2024, time.June, 10)) {
			t.Errorf("expected start 2024-06-10, got %s", start)
		}
		if !end.Equal(date(2024, time.June, 16)) {
			t.Errorf("expected end 2024-06-16, got %s", end)
		}
	})

	t.Run("crosses_month_boundary", func(t *testing.T) {
		// Saturday 2024-06-01; its week started Monday May 27.
		start, end := Window(Weekly, date(2024, time.June, 1))
		if !start.Equal(date(2024, time.May, 27)) {
			t.Errorf("expected start 2024-05-27, got %s", start)
		}
		if !end.Equal(date(2024, time.June, 2)) {
			t.Errorf("expected end 2024-06-02, got %s", end)
		}
	})

	t.Run("discards_time_of_day", func(t *testing.T) {
		ref := time.Date(2024, time.June, 12, 23, 59, 59, 0, time.UTC)
		start, _ := Window(Weekly, ref)
		if !start.Equal(date(2024, time.June, 10)) {
			t.Errorf("expected start 2024-06-10, got %s", start)
		}
	})
}

func TestWindowMonthly(t *testing.T) {
	t.Run("thirty_one_days", func(t *testing.T) {
		start, end := Window(Monthly, date(2024, time.July, 20))
		if !start.Equal(date(2024, time.July, 1)) {
			t.Errorf("expected start 2024-07-01, got %s", start)
		}
		if !end.Equal(date(2024, time.July, 31)) {
			t.Errorf("expected end 2024-07-31, got %s", end)
		}
	})

	t.Run("leap_february", func(t *testing.T) {
		_, end := Window(Monthly, date(2024, time.February, 10))
		if !end.Equal(date(2024, time.February, 29)) {
			t.Errorf("expected end 2024-02-29, got %s", end)
		}
	})

	t.Run("non_leap_february", func(t *testing.T) {
		_, end := Window(Monthly, date(2023, time.February, 10))
		if !end.Equal(date(2023, time.February, 28)) {
			t.Errorf("expected end 2023-02-28, got %s", end)
		}
	})
}

func TestWindowAnnual(t *testing.T) {
	start, end := Window(Annual, date(2024, time.August, 15))
	if !start.Equal(date(2024, time.January, 1)) {
		t.Errorf("expected start 2024-01-01, got %s", start)
	}
	if !end.Equal(date(2024, time.December, 31)) {
		t.Errorf("expected end 2024-12-31, got %s", end)
	}
}

func TestWindowUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown period")
		}
	}()
	Window(Period("quarterly"), date(2024, time.June, 12))
}

func TestDaysRemaining(t *testing.T) {
	t.Run("weekly", func(t *testing.T) {
		// Wednesday; Sunday is 4 whole days away.
		if got := DaysRemaining(Weekly, date(2024, time.June, 12)); got != 4 {
			t.Errorf("expected 4 days remaining, got %d", got)
		}
	})

	t.Run("last_day_is_zero", func(t *testing.T) {
		if got := DaysRemaining(Weekly, date(2024, time.June, 16)); got != 0 {
			t.Errorf("expected 0 days remaining on Sunday, got %d", got)
		}
		if got := DaysRemaining(Monthly, date(2024, time.July, 31)); got != 0 {
			t.Errorf("expected 0 days remaining on month end, got %d", got)
		}
	})

	t.Run("monthly", func(t *testing.T) {
		if got := DaysRemaining(Monthly, date(2024, time.July, 1)); got != 30 {
			t.Errorf("expected 30 days remaining, got %d", got)
		}
	})

	t.Run("annual", func(t *testing.T) {
		if got := DaysRemaining(Annual, date(2024, time.December, 30)); got != 1 {
			t.Errorf("expected 1 day remaining, got %d", got)
		}
	})
}
