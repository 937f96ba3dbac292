package config

import (
	"testing"
	"time"
)

func TestMemoryLimitBytes(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"2GB", 2 << 30},
		{"512MB", 512 << 20},
		{"10KB", 10 << 10},
		{"1024", 1024},
	}
	for _, tc := range cases {
		cfg := &Config{MemoryLimit: tc.raw}
		got, err := cfg.MemoryLimitBytes()
		if err != nil {
			t.Fatalf("MemoryLimitBytes(%q) error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("MemoryLimitBytes(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestMemoryLimitBytesInvalid(t *testing.T) {
	cfg := &Config{MemoryLimit: "not-a-size"}
	if _, err := cfg.MemoryLimitBytes(); err == nil {
		t.Error("expected an error for an unparseable memory limit")
	}
}

func TestSelectedDetectorIDsAll(t *testing.T) {
	cfg := &Config{Signals: "all"}
	ids, err := cfg.SelectedDetectorIDs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids != nil {
		t.Error(`"all" should return a nil set meaning every detector runs`)
	}
}

func TestSelectedDetectorIDsList(t *testing.T) {
	cfg := &Config{Signals: "1,4,14"}
	ids, err := cfg.SelectedDetectorIDs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []int{1, 4, 14} {
		if !ids[want] {
			t.Errorf("expected detector %d to be selected", want)
		}
	}
	if ids[2] {
		t.Error("detector 2 was not in the list and should not be selected")
	}
}

func TestSelectedDetectorIDsInvalid(t *testing.T) {
	cfg := &Config{Signals: "1,notanumber"}
	if _, err := cfg.SelectedDetectorIDs(); err == nil {
		t.Error("expected an error for a non-numeric --signals entry")
	}
}

func TestSignalWindowStartDateUnset(t *testing.T) {
	cfg := &Config{}
	got, err := cfg.SignalWindowStartDate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected the zero time for an unset window start, got %v", got)
	}
}

func TestSignalWindowStartDateValid(t *testing.T) {
	cfg := &Config{SignalWindowStart: "2024-03-15"}
	got, err := cfg.SignalWindowStartDate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("SignalWindowStartDate() = %v, want %v", got, want)
	}
}

func TestSignalWindowStartDateInvalid(t *testing.T) {
	cfg := &Config{SignalWindowStart: "03/15/2024"}
	if _, err := cfg.SignalWindowStartDate(); err == nil {
		t.Error("expected an error for a malformed --signal-window-start")
	}
}
