package display

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{1536, "1.5 KB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "0s"},
		{5 * time.Second, "5s"},
		{65 * time.Second, "1m"},
		{3700 * time.Second, "1h 1m"},
		{25*time.Hour + time.Minute, "1d 1h 1m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCPUTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0.0s"},
		{1500 * time.Millisecond, "1.5s"},
		{59 * time.Second, "59.0s"},
		{2 * time.Minute, "2m"},
	}
	for _, tt := range tests {
		if got := FormatCPUTime(tt.in); got != tt.want {
			t.Errorf("FormatCPUTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	if got := Truncate("exactly-10", 10); got != "exactly-10" {
		t.Errorf("Truncate(exact) = %q", got)
	}
	got := Truncate("a-very-long-command-line-that-keeps-going", 20)
	if len(got) != 20 {
		t.Errorf("Truncate long: len = %d, want 20", len(got))
	}
	if got[17:] != "..." {
		t.Errorf("Truncate long should end with ellipsis, got %q", got)
	}
}
