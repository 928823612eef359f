package datetime

import (
	"testing"
	"time"
)

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(ISODateLayout, "invalid-date")
}

func TestParseISODate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"Plain date", "2024-01-15", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), false},
		{"Leap day", "2024-02-29", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), false},
		{"Surrounding whitespace", " 2025-12-31 ", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), false},
		{"Single digit parts", "2024-3-5", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), false},
		{"Not a leap year", "2023-02-29", time.Time{}, true},
		{"Month out of range", "2024-13-01", time.Time{}, true},
		{"Missing day", "2024-01", time.Time{}, true},
		{"Letters", "abcd-ef-gh", time.Time{}, true},
		{"Empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseISODate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseISODate(%q) expected error, got %v", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseISODate(%q) unexpected error: %v", tt.input, err)
			}
			if !result.Equal(tt.expected) {
				t.Errorf("ParseISODate(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
			if result.Location() != time.UTC {
				t.Errorf("ParseISODate(%q) location = %v, expected UTC", tt.input, result.Location())
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		days     int
		expected string
	}{
		{"Thirty days within year", "2024-01-15", 30, "2024-02-14"},
		{"Across leap day", "2024-02-15", 30, "2024-03-16"},
		{"Across year end", "2024-12-15", 30, "2025-01-14"},
		{"Across March DST change", "2024-03-01", 30, "2024-03-31"},
		{"Across November DST change", "2024-10-20", 30, "2024-11-19"},
		{"Zero days", "2024-06-01", 0, "2024-06-01"},
		{"Negative days", "2024-03-01", -1, "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatISO(AddDays(MustParseISODate(tt.date), tt.days))
			if result != tt.expected {
				t.Errorf("AddDays(%s, %d) = %s, expected %s", tt.date, tt.days, result, tt.expected)
			}
		})
	}
}

func TestMoveToBusinessDay(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{"Monday unchanged", "2024-01-15", "2024-01-15"},
		{"Wednesday unchanged", "2024-01-17", "2024-01-17"},
		{"Friday unchanged", "2024-01-19", "2024-01-19"},
		{"Saturday to Monday", "2024-01-20", "2024-01-22"},
		{"Sunday to Monday", "2024-01-21", "2024-01-22"},
		{"Saturday across month end", "2024-08-31", "2024-09-02"},
		{"Sunday across year end", "2023-12-31", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MoveToBusinessDay(MustParseISODate(tt.date))
			if FormatISO(result) != tt.expected {
				t.Errorf("MoveToBusinessDay(%s) = %s, expected %s", tt.date, FormatISO(result), tt.expected)
			}
			if wd := result.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Errorf("MoveToBusinessDay(%s) landed on %s", tt.date, wd)
			}
		})
	}
}

func TestMoveToBusinessDayIdempotentOnWeekdays(t *testing.T) {
	start := MustParseISODate("2024-01-01")
	for i := 0; i < 366; i++ {
		date := AddDays(start, i)
		once := MoveToBusinessDay(date)
		twice := MoveToBusinessDay(once)
		if !once.Equal(twice) {
			t.Fatalf("MoveToBusinessDay not idempotent for %s: %s then %s", FormatISO(date), FormatISO(once), FormatISO(twice))
		}
	}
}

func TestToday(t *testing.T) {
	local := time.FixedZone("ART", -3*60*60)
	// 23:30 on the 15th in Buenos Aires is already the 16th in UTC.
	now := time.Date(2024, time.January, 15, 23, 30, 0, 0, local)

	oldLocal := time.Local
	time.Local = local
	defer func() { time.Local = oldLocal }()

	result := Today(now)
	if FormatISO(result) != "2024-01-15" {
		t.Errorf("Today() = %s, expected 2024-01-15", FormatISO(result))
	}
	if result.Hour() != 0 || result.Location() != time.UTC {
		t.Errorf("Today() = %v, expected UTC midnight", result)
	}
}

func TestFormatDisplay(t *testing.T) {
	result := FormatDisplay(MustParseISODate("2024-03-05"))
	if result != "05/03/2024" {
		t.Errorf("FormatDisplay() = %s, expected 05/03/2024", result)
	}
}
