package utils

import (
	"testing"
	"time"
)

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"brazilian", "31/12/2010", "2010-12-31", true},
		{"iso", "2010-12-31", "2010-12-31", true},
		{"iso with time suffix", "2010-12-31T15:04:05", "2010-12-31", true},
		{"padded", "  05/01/1999 ", "1999-01-05", true},
		{"garbage", "31-12/2010", "", false},
		{"empty", "", "", false},
		{"words", "amanha", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFlexibleDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseFlexibleDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got.Format(DateLayoutISO) != tt.want {
				t.Errorf("ParseFlexibleDate(%q) = %s, want %s", tt.input, got.Format(DateLayoutISO), tt.want)
			}
		})
	}
}

func TestFormatDateBR(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2010-12-31", "31/12/2010"},
		{"31/12/2010", "31/12/2010"},
		{"31-12-2010", "31/12/2010"},
		{"2010-12-31 00:00:00", "31/12/2010"},
		{"not a date", "not a date"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatDateBR(tt.input); got != tt.want {
			t.Errorf("FormatDateBR(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCivilYearAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		birth string
		want  int
	}{
		// The birthday itself is irrelevant; only the calendar year counts.
		{"2010-12-31", 14},
		{"2010-01-01", 14},
		{"2024-06-14", 0},
		{"1990-07-20", 34},
	}

	for _, tt := range tests {
		birth, ok := ParseFlexibleDate(tt.birth)
		if !ok {
			t.Fatalf("failed to parse %q", tt.birth)
		}
		if got := CivilYearAge(birth, now); got != tt.want {
			t.Errorf("CivilYearAge(%s) = %d, want %d", tt.birth, got, tt.want)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("bcrypt at cost 14 is slow")
	}

	hash, err := HashPassword("s3nh4-forte")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPasswordHash("s3nh4-forte", hash) {
		t.Error("CheckPasswordHash rejected the original password")
	}
	if CheckPasswordHash("outra-senha", hash) {
		t.Error("CheckPasswordHash accepted a wrong password")
	}
}
