package event

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dates(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Date)
	}
	return out
}

func TestExpand(t *testing.T) {
	testCases := []struct {
		name   string
		events []Event
		from   string
		to     string
		want   []string
	}{
		{
			name:   "single event inside range",
			events: []Event{{ID: "1", Title: "Dentist", Date: "2024-06-05", Recurrence: RecurrenceNone}},
			from:   "2024-06-01",
			to:     "2024-06-30",
			want:   []string{"2024-06-05"},
		},
		{
			name:   "single event outside range",
			events: []Event{{ID: "1", Title: "Dentist", Date: "2024-07-05", Recurrence: RecurrenceNone}},
			from:   "2024-06-01",
			to:     "2024-06-30",
			want:   []string{},
		},
		{
			name:   "daily event starting inside range",
			events: []Event{{ID: "1", Title: "Standup", Date: "2024-06-27", Recurrence: RecurrenceDaily}},
			from:   "2024-06-01",
			to:     "2024-06-30",
			want:   []string{"2024-06-27", "2024-06-28", "2024-06-29", "2024-06-30"},
		},
		{
			name:   "weekly event anchored before range",
			events: []Event{{ID: "1", Title: "Review", Date: "2024-05-20", Recurrence: RecurrenceWeekly}},
			from:   "2024-06-01",
			to:     "2024-06-30",
			want:   []string{"2024-06-03", "2024-06-10", "2024-06-17", "2024-06-24"},
		},
		{
			name:   "monthly event on the 31st skips short months",
			events: []Event{{ID: "1", Title: "Rent", Date: "2024-01-31", Recurrence: RecurrenceMonthly}},
			from:   "2024-01-01",
			to:     "2024-05-31",
			want:   []string{"2024-01-31", "2024-03-31", "2024-05-31"},
		},
		{
			name:   "recurring event anchored after range",
			events: []Event{{ID: "1", Title: "Standup", Date: "2024-07-01", Recurrence: RecurrenceDaily}},
			from:   "2024-06-01",
			to:     "2024-06-30",
			want:   []string{},
		},
		{
			name: "occurrences of several events are ordered by date",
			events: []Event{
				{ID: "1", Title: "Review", Date: "2024-06-03", Recurrence: RecurrenceWeekly},
				{ID: "2", Title: "Dentist", Date: "2024-06-05", Recurrence: RecurrenceNone},
			},
			from: "2024-06-01",
			to:   "2024-06-12",
			want: []string{"2024-06-03", "2024-06-05", "2024-06-10"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Expand(tc.events, date(tc.from), date(tc.to), 0)

			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, dates(got)); diff != "" {
				t.Errorf("Expand() dates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpand_KeepsAnchorIdentity(t *testing.T) {
	anchor := Event{ID: "abc", Title: "Standup", Date: "2024-06-03", Recurrence: RecurrenceDaily}

	got, err := Expand([]Event{anchor}, date("2024-06-03"), date("2024-06-04"), 0)

	require.NoError(t, err)
	want := []Event{
		{ID: "abc", Title: "Standup", Date: "2024-06-03", Recurrence: RecurrenceDaily},
		{ID: "abc", Title: "Standup", Date: "2024-06-04", Recurrence: RecurrenceDaily},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_TruncatesAtLimit(t *testing.T) {
	anchor := Event{ID: "abc", Title: "Standup", Date: "2024-01-01", Recurrence: RecurrenceDaily}

	got, err := Expand([]Event{anchor}, date("2024-01-01"), date("2024-12-31"), 10)

	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, "2024-01-10", got[9].Date)

	t.Run("should stop early on a very wide window", func(t *testing.T) {
		got, err := Expand([]Event{anchor}, date("2024-01-01"), date("9999-12-31"), 10)

		require.NoError(t, err)
		assert.Len(t, got, 10)
		assert.Equal(t, "2024-01-10", got[9].Date)
	})
}

func TestExpand_WindowFarAfterAnchor(t *testing.T) {
	t.Run("should keep the weekday of a weekly event", func(t *testing.T) {
		// given 2024-06-03 is a Monday
		anchor := Event{ID: "abc", Title: "Standup", Date: "2024-06-03", Recurrence: RecurrenceWeekly}

		// when
		got, err := Expand([]Event{anchor}, date("9000-01-01"), date("9000-01-31"), 0)

		// then
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for _, e := range got {
			assert.Equal(t, time.Monday, date(e.Date).Weekday(), e.Date)
		}
		assert.LessOrEqual(t, got[0].Date, "9000-01-07")
	})

	t.Run("should skip short months for a monthly event on the 31st", func(t *testing.T) {
		anchor := Event{ID: "abc", Title: "Rent", Date: "2024-01-31", Recurrence: RecurrenceMonthly}

		got, err := Expand([]Event{anchor}, date("2030-06-01"), date("2030-09-30"), 0)

		require.NoError(t, err)
		if diff := cmp.Diff([]string{"2030-07-31", "2030-08-31"}, dates(got)); diff != "" {
			t.Errorf("unexpected occurrences (-want +got):\n%s", diff)
		}
	})

	t.Run("should start on the window for a daily event", func(t *testing.T) {
		anchor := Event{ID: "abc", Title: "Standup", Date: "2024-01-01", Recurrence: RecurrenceDaily}

		got, err := Expand([]Event{anchor}, date("2500-03-01"), date("2500-03-03"), 0)

		require.NoError(t, err)
		assert.Equal(t, []string{"2500-03-01", "2500-03-02", "2500-03-03"}, dates(got))
	})
}

func TestExpand_SkipsMalformedDates(t *testing.T) {
	events := []Event{
		{ID: "bad", Title: "Broken", Date: "someday", Recurrence: RecurrenceDaily},
		{ID: "ok", Title: "Dentist", Date: "2024-06-05", Recurrence: RecurrenceNone},
	}

	got, err := Expand(events, date("2024-06-01"), date("2024-06-30"), 0)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].ID)
}

func TestExpand_RejectsInvertedRange(t *testing.T) {
	_, err := Expand(nil, date("2024-06-30"), date("2024-06-01"), 0)

	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRecurrence_RRule(t *testing.T) {
	assert.Equal(t, "FREQ=DAILY", RecurrenceDaily.RRule())
	assert.Equal(t, "FREQ=WEEKLY", RecurrenceWeekly.RRule())
	assert.Equal(t, "FREQ=MONTHLY", RecurrenceMonthly.RRule())
	assert.Equal(t, "", RecurrenceNone.RRule())
}
