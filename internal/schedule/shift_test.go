package schedule

import (
	"testing"
)

func TestShiftAll(t *testing.T) {
	t.Parallel()

	t.Run("zero offset splits nothing", func(t *testing.T) {
		t.Parallel()

		intervals := []*Interval{
			NewInterval(0, 1439, choiceTo("100")),
			NewInterval(1440, 2879, choiceTo("100")),
		}
		out := ShiftAll(intervals, 0)
		if len(out) != 2 {
			t.Fatalf("got %d intervals, want 2", len(out))
		}
		if out[0].StartMinute != 0 || out[0].EndMinute != 1439 {
			t.Errorf("first = [%d,%d], want [0,1439]", out[0].StartMinute, out[0].EndMinute)
		}
	})

	t.Run("boundary straddler is split into day-aligned pieces", func(t *testing.T) {
		t.Parallel()

		out := ShiftAll([]*Interval{NewInterval(1430, 1450, choiceTo("100"))}, 0)
		if len(out) != 2 {
			t.Fatalf("got %d intervals, want 2", len(out))
		}
		if out[0].StartMinute != 1430 || out[0].EndMinute != 1439 {
			t.Errorf("head = [%d,%d], want [1430,1439]", out[0].StartMinute, out[0].EndMinute)
		}
		if out[1].StartMinute != 1440 || out[1].EndMinute != 1450 {
			t.Errorf("tail = [%d,%d], want [1440,1450]", out[1].StartMinute, out[1].EndMinute)
		}
		if out[0].DayIndex() != 1 || out[1].DayIndex() != 2 {
			t.Errorf("day indexes = %d,%d, want 1,2", out[0].DayIndex(), out[1].DayIndex())
		}
		if !out[0].Equal(NewInterval(1430, 1439, choiceTo("100"))) {
			t.Error("head lost its routing choices")
		}
		if out[1].Choices[0].Exits[0].Value != "100" {
			t.Error("tail lost its routing choices")
		}
	})

	t.Run("negative offset wraps into previous week", func(t *testing.T) {
		t.Parallel()

		// Sunday 00:00-00:59 shifted back two hours lands at the very end of
		// Saturday, split at the week wrap.
		out := ShiftAll([]*Interval{NewInterval(0, 59, choiceTo("100"))}, -120)
		if len(out) != 1 {
			t.Fatalf("got %d intervals, want 1", len(out))
		}
		if out[0].StartMinute != 10080-120 || out[0].EndMinute != 10080-61 {
			t.Fatalf("got [%d,%d], want [9960,10019]", out[0].StartMinute, out[0].EndMinute)
		}
	})

	t.Run("negative offset crossing midnight splits first", func(t *testing.T) {
		t.Parallel()

		// Monday 00:00-01:59 shifted back one hour straddles Sunday midnight.
		out := ShiftAll([]*Interval{NewInterval(1440, 1559, choiceTo("100"))}, -60)
		if len(out) != 2 {
			t.Fatalf("got %d intervals, want 2", len(out))
		}
		if out[0].StartMinute != 1380 || out[0].EndMinute != 1439 {
			t.Errorf("head = [%d,%d], want [1380,1439]", out[0].StartMinute, out[0].EndMinute)
		}
		if out[1].StartMinute != 1440 || out[1].EndMinute != 1499 {
			t.Errorf("tail = [%d,%d], want [1440,1499]", out[1].StartMinute, out[1].EndMinute)
		}
	})

	t.Run("result is sorted by start minute", func(t *testing.T) {
		t.Parallel()

		intervals := []*Interval{
			NewInterval(7200, 8639, choiceTo("100")),
			NewInterval(0, 1439, choiceTo("100")),
			NewInterval(1440, 7199, choiceTo("100")),
		}
		out := ShiftAll(intervals, 600)
		for i := 1; i < len(out); i++ {
			if out[i-1].StartMinute > out[i].StartMinute {
				t.Fatalf("output not sorted at %d: %d > %d", i, out[i-1].StartMinute, out[i].StartMinute)
			}
		}
	})
}

func TestShiftAll_WeekCoverageInvariant(t *testing.T) {
	t.Parallel()

	// A fully covered week must stay fully covered for any offset: every
	// minute-of-week slot claimed exactly once.
	full := func() []*Interval {
		intervals := make([]*Interval, 0, 14)
		for day := 0; day < DaysPerWeek; day++ {
			offset := day * MinutesPerDay
			intervals = append(intervals,
				NewInterval(offset, offset+539, choiceTo("open")),
				NewInterval(offset+540, offset+1439, choiceTo("closed")),
			)
		}
		return intervals
	}

	for _, offset := range []int{0, 30, 570, -480, 840, -840} {
		out := ShiftAll(full(), offset)

		var covered [MinutesPerWeek]int
		for _, iv := range out {
			if iv.EndMinute < iv.StartMinute {
				t.Fatalf("offset %d: inverted interval [%d,%d]", offset, iv.StartMinute, iv.EndMinute)
			}
			for m := iv.StartMinute; m <= iv.EndMinute; m++ {
				covered[m]++
			}
		}
		for m, n := range covered {
			if n != 1 {
				t.Fatalf("offset %d: minute %d covered %d times", offset, m, n)
			}
		}
	}
}

func TestConversionOffset(t *testing.T) {
	t.Parallel()

	offsets := SystemOffsets{}

	t.Run("same zone is zero", func(t *testing.T) {
		t.Parallel()
		got, err := ConversionOffset(offsets, "America/New_York", "America/New_York")
		if err != nil {
			t.Fatalf("ConversionOffset returned error: %v", err)
		}
		if got != 0 {
			t.Fatalf("offset = %d, want 0", got)
		}
	})

	t.Run("uses standard offsets ignoring DST", func(t *testing.T) {
		t.Parallel()
		// Standard offsets: New York -300, Los Angeles -480. Converting an
		// Eastern schedule to Pacific shifts back three hours year-round.
		got, err := ConversionOffset(offsets, "America/New_York", "America/Los_Angeles")
		if err != nil {
			t.Fatalf("ConversionOffset returned error: %v", err)
		}
		if got != -180 {
			t.Fatalf("offset = %d, want -180", got)
		}
	})

	t.Run("supports half hour zones", func(t *testing.T) {
		t.Parallel()
		// Kolkata is UTC+5:30, Tokyo UTC+9.
		got, err := ConversionOffset(offsets, "Asia/Kolkata", "Asia/Tokyo")
		if err != nil {
			t.Fatalf("ConversionOffset returned error: %v", err)
		}
		if got != 210 {
			t.Fatalf("offset = %d, want 210", got)
		}
	})

	t.Run("unknown zone fails", func(t *testing.T) {
		t.Parallel()
		if _, err := ConversionOffset(offsets, "Nowhere/Invalid", "UTC"); err == nil {
			t.Fatal("expected error for unknown timezone")
		}
	})
}

func TestRoundToHalfHour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{14, 0},
		{15, 30},
		{-14, 0},
		{-15, -30},
		{210, 210},
		{-545, -540},
	}
	for _, tt := range tests {
		if got := roundToHalfHour(tt.in); got != tt.want {
			t.Errorf("roundToHalfHour(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
