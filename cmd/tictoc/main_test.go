// Package main_test contains unit tests for the tictoc command,
// specifically the unit parsing and elapsed-time formatting helpers.
package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.sazak.io/tictoc/cmd/tictoc/storage"
	"go.sazak.io/tictoc/timespec"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Unit
		wantErr  bool
	}{
		{name: "all", input: "all", expected: UnitAll},
		{name: "seconds", input: "s", expected: UnitSeconds},
		{name: "seconds long form", input: "sec", expected: UnitSeconds},
		{name: "milliseconds", input: "ms", expected: UnitMillis},
		{name: "microseconds", input: "us", expected: UnitMicros},
		{name: "nanoseconds", input: "ns", expected: UnitNanos},
		{name: "uppercase", input: "MS", expected: UnitMillis},
		{name: "surrounding spaces", input: " ns ", expected: UnitNanos},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "fortnights", wantErr: true},
		{name: "minutes unsupported", input: "min", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUnit(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for input %q, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if got != tt.expected {
				t.Errorf("expected unit %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	ts := timespec.Timespec{Sec: 1, Nsec: 500_000_000}

	tests := []struct {
		name     string
		unit     Unit
		expected []string
	}{
		{
			name:     "seconds",
			unit:     UnitSeconds,
			expected: []string{"1.500000 s"},
		},
		{
			name:     "milliseconds",
			unit:     UnitMillis,
			expected: []string{"1500 ms"},
		},
		{
			name:     "microseconds",
			unit:     UnitMicros,
			expected: []string{"1500000 us"},
		},
		{
			name:     "nanoseconds",
			unit:     UnitNanos,
			expected: []string{"1500000000 ns"},
		},
		{
			name: "all units",
			unit: UnitAll,
			expected: []string{
				"1.500000 s",
				"1500 ms",
				"1500000 us",
				"1500000000 ns",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatElapsed(ts, tt.unit)

			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d lines, got %d: %v", len(tt.expected), len(got), got)
			}
			for i, line := range got {
				if line != tt.expected[i] {
					t.Errorf("line %d: expected %q, got %q", i, tt.expected[i], line)
				}
			}
		})
	}
}

func TestFormatElapsedTruncates(t *testing.T) {
	// 999,999 ns is below a millisecond; integer conversions truncate
	ts := timespec.Timespec{Sec: 0, Nsec: 999_999}

	lines := formatElapsed(ts, UnitAll)
	joined := strings.Join(lines, "\n")

	for _, want := range []string{"0 ms", "999 us", "999999 ns"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, joined)
		}
	}
}

func TestRecordLapCountsLaps(t *testing.T) {
	manager, err := storage.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	session = &storage.Session{
		ID:        "record-lap-test",
		StartTime: time.Now(),
		Command:   "true",
	}
	lapStore, err = manager.CreateSession(context.Background(), session, "jsonl")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(func() {
		lapStore.Close()
		lapStore = nil
		session = nil
	})

	for i := uint64(0); i < 3; i++ {
		start := timespec.Timespec{Sec: int64(10 * i)}
		stop := timespec.Timespec{Sec: int64(10*i) + 1}
		recordLap(i, start, stop, stop.Sub(start))
	}

	if session.LapCount != 3 {
		t.Errorf("expected LapCount 3, got %d", session.LapCount)
	}

	laps, err := lapStore.ReadLaps(context.Background(), &storage.LapFilter{})
	if err != nil {
		t.Fatalf("failed to read laps: %v", err)
	}
	if len(laps) != 3 {
		t.Errorf("expected 3 stored laps, got %d", len(laps))
	}
}

func BenchmarkFormatElapsed(b *testing.B) {
	ts := timespec.Timespec{Sec: 12, Nsec: 345_678_901}
	for i := 0; i < b.N; i++ {
		_ = formatElapsed(ts, UnitAll)
	}
}
