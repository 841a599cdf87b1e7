package sheet

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want *time.Time
	}{
		{"2026-01-01", timePtr(2026, 1, 1)},
		{"01/01/2026", timePtr(2026, 1, 1)},
		{"1/2/2026", timePtr(2026, 1, 2)},
		{"20260101", timePtr(2026, 1, 1)},
		{"", nil},
		{"not a date", nil},
	}
	for _, c := range cases {
		got := ParseDate(c.in)
		switch {
		case c.want == nil && got != nil:
			t.Errorf("ParseDate(%q): got %v, want nil", c.in, got)
		case c.want != nil && (got == nil || !got.Equal(*c.want)):
			t.Errorf("ParseDate(%q): got %v, want %v", c.in, got, c.want)
		}
	}
}

func timePtr(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  0213t "); got != "0213T" {
		t.Errorf("got %q, want 0213T", got)
	}
	if got := NormalizeCode("   "); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestParseUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{"0", 0, true},
		{" 1,000 ", 1000, true},
		{"3.0", 3, true},
		{"3.5", 0, false},
		{"-1", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseUnits(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseUnits(%q): got (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	if got := normalizeHeader("  HCPCS/CPT\nCode  "); got != "hcpcs/cpt code" {
		t.Errorf("got %q", got)
	}
}
