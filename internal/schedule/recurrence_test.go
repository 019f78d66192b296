package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 30, 0, 0, time.UTC)
}

func TestRecurringDates(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		weekdays []time.Weekday
		want     []string
	}{
		{
			name:     "mondays and thursdays across two weeks",
			start:    date(2024, time.March, 4), // Monday
			end:      date(2024, time.March, 17),
			weekdays: []time.Weekday{time.Monday, time.Thursday},
			want:     []string{"2024-03-04", "2024-03-07", "2024-03-11", "2024-03-14"},
		},
		{
			name:     "end date is inclusive",
			start:    date(2024, time.March, 4),
			end:      date(2024, time.March, 11),
			weekdays: []time.Weekday{time.Monday},
			want:     []string{"2024-03-04", "2024-03-11"},
		},
		{
			name:     "inverted range is empty",
			start:    date(2024, time.March, 10),
			end:      date(2024, time.March, 1),
			weekdays: []time.Weekday{time.Sunday},
			want:     []string{},
		},
		{
			name:     "empty weekday set is empty",
			start:    date(2024, time.March, 1),
			end:      date(2024, time.March, 31),
			weekdays: nil,
			want:     []string{},
		},
		{
			name:     "duplicate weekdays produce no duplicate dates",
			start:    date(2024, time.March, 1),
			end:      date(2024, time.March, 8),
			weekdays: []time.Weekday{time.Friday, time.Friday},
			want:     []string{"2024-03-01", "2024-03-08"},
		},
		{
			name:     "crosses month boundary",
			start:    date(2024, time.February, 28),
			end:      date(2024, time.March, 2),
			weekdays: []time.Weekday{time.Thursday, time.Friday, time.Saturday},
			want:     []string{"2024-02-29", "2024-03-01", "2024-03-02"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got := RecurringDates(test.start, test.end, test.weekdays)
			if len(got) != len(test.want) {
				t.Fatalf("expected %d dates, got %d: %v", len(test.want), len(got), got)
			}
			for i, d := range got {
				if d.Format("2006-01-02") != test.want[i] {
					t.Errorf("date %d: expected %s, got %s", i, test.want[i], d.Format("2006-01-02"))
				}
				if d.Hour() != SessionHour || d.Minute() != 0 || d.Second() != 0 {
					t.Errorf("date %d: expected noon, got %s", i, d.Format(time.RFC3339))
				}
			}
		})
	}
}

func TestRecurringDatesProperties(t *testing.T) {
	start := date(2023, time.December, 20)
	end := date(2024, time.April, 2)
	weekdays := []time.Weekday{time.Tuesday, time.Saturday, time.Sunday}

	got := RecurringDates(start, end, weekdays)
	if len(got) == 0 {
		t.Fatal("expected dates")
	}

	allowed := map[time.Weekday]bool{time.Tuesday: true, time.Saturday: true, time.Sunday: true}
	for i, d := range got {
		if !allowed[d.Weekday()] {
			t.Errorf("date %s has weekday %s outside the set", d, d.Weekday())
		}
		if d.Before(Noon(start)) || d.After(Noon(end)) {
			t.Errorf("date %s outside range", d)
		}
		if i > 0 && d.Sub(got[i-1]) < 24*time.Hour {
			t.Errorf("dates %s and %s are not at least a day apart", got[i-1], d)
		}
	}
}

func TestRecurringDatesSameDay(t *testing.T) {
	d := date(2024, time.May, 15) // Wednesday

	got := RecurringDates(d, d, []time.Weekday{d.Weekday()})
	if len(got) != 1 || !got[0].Equal(Noon(d)) {
		t.Errorf("expected exactly [%s], got %v", Noon(d), got)
	}

	got = RecurringDates(d, d, []time.Weekday{time.Monday})
	if len(got) != 0 {
		t.Errorf("expected no dates, got %v", got)
	}
}

func TestSingleDateIgnoresWeekdays(t *testing.T) {
	d := date(2024, time.May, 18)
	got := SingleDate(d)
	if len(got) != 1 || !got[0].Equal(Noon(d)) {
		t.Errorf("expected [%s], got %v", Noon(d), got)
	}
}

func TestWeekdays(t *testing.T) {
	got, ok := Weekdays([]int{0, 6})
	if !ok || len(got) != 2 || got[0] != time.Sunday || got[1] != time.Saturday {
		t.Errorf("unexpected conversion: %v %v", got, ok)
	}
	if _, ok := Weekdays([]int{7}); ok {
		t.Error("expected index 7 to be rejected")
	}
}
