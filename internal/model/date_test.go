package model

import (
	"testing"
	"time"

	yamlv3 "gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.String() != "2024-01-05" {
		t.Errorf("String() = %q, want %q", d.String(), "2024-01-05")
	}
}

func TestParseDate_Malformed(t *testing.T) {
	for _, s := range []string{"05/01/2024", "2024-13-01", "not a date", ""} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q): expected error", s)
		}
	}
}

func TestDate_DaysUntil(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-01-03", "2024-01-05", 2},
		{"2024-01-05", "2024-01-03", -2},
		{"2024-01-05", "2024-01-05", 0},
		{"2024-01-28", "2024-02-02", 5},
		{"2024-12-30", "2025-01-02", 3},
	}
	for _, tt := range tests {
		got := MustDate(tt.from).DaysUntil(MustDate(tt.to))
		if got != tt.want {
			t.Errorf("DaysUntil(%s -> %s) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2024, time.January, 3).AddDays(4)
	if d.String() != "2024-01-07" {
		t.Errorf("AddDays = %s, want 2024-01-07", d)
	}
	if got := NewDate(2024, time.January, 30).AddDays(3); got.String() != "2024-02-02" {
		t.Errorf("AddDays across month = %s, want 2024-02-02", got)
	}
}

func TestDate_YAMLRoundTrip(t *testing.T) {
	type doc struct {
		Target *Date `yaml:"target"`
	}
	in := doc{}
	target := MustDate("2024-06-15")
	in.Target = &target

	raw, err := yamlv3.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out doc
	if err := yamlv3.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Target == nil || !out.Target.Equal(target) {
		t.Errorf("round trip got %v, want %s", out.Target, target)
	}
}
