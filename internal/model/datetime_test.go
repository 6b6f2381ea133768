package model

import "testing"

func TestFormatHelpers(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"datetime empty", FormatDateTime("", shanghai), NotSet},
		{"datetime invalid", FormatDateTime("soon", shanghai), InvalidTime},
		{"datetime", FormatDateTime("2026-10-15T01:30:00Z", shanghai), "Oct 15, 2026 09:30"},
		{"date only", FormatDateOnly("2026-10-14T20:00:00Z", shanghai), "Oct 15, 2026"},
		{"date only empty", FormatDateOnly("  ", shanghai), NotSet},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, tc.got)
		}
	}
}

func TestDatetimeLocalConversions(t *testing.T) {
	if got := ToDatetimeLocal("2026-10-15T01:30:00.000Z", shanghai); got != "2026-10-15T09:30" {
		t.Fatalf("expected local 09:30, got %q", got)
	}
	if got := ToDatetimeLocal("", shanghai); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := ToDatetimeLocal("nope", shanghai); got != "" {
		t.Fatalf("expected empty for invalid input, got %q", got)
	}
	if got := ToISOString("2026-10-15T09:30", shanghai); got != "2026-10-15T01:30:00.000Z" {
		t.Fatalf("expected UTC instant, got %q", got)
	}
	if got := ToISOString("15/10/2026", shanghai); got != "" {
		t.Fatalf("expected empty for invalid local input, got %q", got)
	}
}
