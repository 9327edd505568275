package timespec

import "testing"

func TestSub(t *testing.T) {
	tests := []struct {
		name     string
		start    Timespec
		stop     Timespec
		expected Timespec
	}{
		{
			name:     "zero difference",
			start:    Timespec{Sec: 5, Nsec: 100},
			stop:     Timespec{Sec: 5, Nsec: 100},
			expected: Timespec{},
		},
		{
			name:     "no borrow needed",
			start:    Timespec{Sec: 1, Nsec: 100},
			stop:     Timespec{Sec: 3, Nsec: 500},
			expected: Timespec{Sec: 2, Nsec: 400},
		},
		{
			name:     "borrow across the second boundary",
			start:    Timespec{Sec: 5, Nsec: 100},
			stop:     Timespec{Sec: 6, Nsec: 50},
			expected: Timespec{Sec: 0, Nsec: 999_999_950},
		},
		{
			name:     "borrow leaves seconds positive",
			start:    Timespec{Sec: 5, Nsec: 900_000_000},
			stop:     Timespec{Sec: 8, Nsec: 100_000_000},
			expected: Timespec{Sec: 2, Nsec: 200_000_000},
		},
		{
			name:     "negative result when stop precedes start",
			start:    Timespec{Sec: 10, Nsec: 0},
			stop:     Timespec{Sec: 7, Nsec: 0},
			expected: Timespec{Sec: -3, Nsec: 0},
		},
		{
			name:     "negative result with carry",
			start:    Timespec{Sec: 6, Nsec: 50},
			stop:     Timespec{Sec: 5, Nsec: 100},
			expected: Timespec{Sec: 0, Nsec: -999_999_950},
		},
		{
			name:     "negative seconds positive nanos renormalized",
			start:    Timespec{Sec: 8, Nsec: 100_000_000},
			stop:     Timespec{Sec: 5, Nsec: 900_000_000},
			expected: Timespec{Sec: -2, Nsec: -200_000_000},
		},
		{
			name:     "sub-second interval",
			start:    Timespec{Sec: 42, Nsec: 250_000_000},
			stop:     Timespec{Sec: 42, Nsec: 750_000_000},
			expected: Timespec{Sec: 0, Nsec: 500_000_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.stop.Sub(tt.start)
			if got != tt.expected {
				t.Errorf("Sub: expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestSubExactNanoseconds(t *testing.T) {
	// the normalized difference must be exact in total nanoseconds,
	// in both operand orders
	pairs := []struct {
		a, b Timespec
	}{
		{Timespec{Sec: 0, Nsec: 0}, Timespec{Sec: 0, Nsec: 1}},
		{Timespec{Sec: 5, Nsec: 100}, Timespec{Sec: 6, Nsec: 50}},
		{Timespec{Sec: 1, Nsec: 999_999_999}, Timespec{Sec: 2, Nsec: 0}},
		{Timespec{Sec: 100, Nsec: 500_000_000}, Timespec{Sec: 100, Nsec: 500_000_000}},
		{Timespec{Sec: 3, Nsec: 250}, Timespec{Sec: 9, Nsec: 750_000_000}},
	}

	for _, p := range pairs {
		fwd := p.b.Sub(p.a)
		if got, want := fwd.Nanoseconds(), p.b.Nanoseconds()-p.a.Nanoseconds(); got != want {
			t.Errorf("Sub(%+v, %+v): expected %d ns, got %d ns", p.a, p.b, want, got)
		}

		// swapping operands negates the result
		rev := p.a.Sub(p.b)
		if fwd.Nanoseconds() != -rev.Nanoseconds() {
			t.Errorf("Sub(%+v, %+v): %d ns is not the negation of %d ns",
				p.a, p.b, fwd.Nanoseconds(), rev.Nanoseconds())
		}
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		t1       Timespec
		t2       Timespec
		expected Timespec
	}{
		{
			name:     "no carry",
			t1:       Timespec{Sec: 1, Nsec: 200},
			t2:       Timespec{Sec: 2, Nsec: 300},
			expected: Timespec{Sec: 3, Nsec: 500},
		},
		{
			name:     "carry on overflow",
			t1:       Timespec{Sec: 1, Nsec: 600_000_000},
			t2:       Timespec{Sec: 2, Nsec: 700_000_000},
			expected: Timespec{Sec: 4, Nsec: 300_000_000},
		},
		{
			name:     "carry at exactly one second",
			t1:       Timespec{Sec: 0, Nsec: 500_000_000},
			t2:       Timespec{Sec: 0, Nsec: 500_000_000},
			expected: Timespec{Sec: 1, Nsec: 0},
		},
		{
			name:     "zero operand",
			t1:       Timespec{Sec: 7, Nsec: 123},
			t2:       Timespec{},
			expected: Timespec{Sec: 7, Nsec: 123},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.t1.Add(tt.t2)
			if got != tt.expected {
				t.Errorf("Add: expected %+v, got %+v", tt.expected, got)
			}

			// commutative in total nanoseconds
			swapped := tt.t2.Add(tt.t1)
			if got.Nanoseconds() != swapped.Nanoseconds() {
				t.Errorf("Add is not commutative: %d != %d",
					got.Nanoseconds(), swapped.Nanoseconds())
			}
			if got.Nanoseconds() != tt.t1.Nanoseconds()+tt.t2.Nanoseconds() {
				t.Errorf("Add lost nanoseconds: expected %d, got %d",
					tt.t1.Nanoseconds()+tt.t2.Nanoseconds(), got.Nanoseconds())
			}
		})
	}
}

func TestConversions(t *testing.T) {
	tests := []struct {
		name string
		ts   Timespec
		sec  float64
		msec int64
		usec int64
		nsec int64
	}{
		{
			name: "zero",
			ts:   Timespec{},
		},
		{
			name: "one and a half seconds",
			ts:   Timespec{Sec: 1, Nsec: 500_000_000},
			sec:  1.5,
			msec: 1500,
			usec: 1_500_000,
			nsec: 1_500_000_000,
		},
		{
			name: "sub-millisecond truncates",
			ts:   Timespec{Sec: 0, Nsec: 999_999},
			sec:  0.000999999,
			msec: 0,
			usec: 999,
			nsec: 999_999,
		},
		{
			name: "truncation keeps whole units",
			ts:   Timespec{Sec: 2, Nsec: 345_678_901},
			sec:  2.345678901,
			msec: 2345,
			usec: 2_345_678,
			nsec: 2_345_678_901,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ts.Seconds(); got != tt.sec {
				t.Errorf("Seconds: expected %v, got %v", tt.sec, got)
			}
			if got := tt.ts.Milliseconds(); got != tt.msec {
				t.Errorf("Milliseconds: expected %d, got %d", tt.msec, got)
			}
			if got := tt.ts.Microseconds(); got != tt.usec {
				t.Errorf("Microseconds: expected %d, got %d", tt.usec, got)
			}
			if got := tt.ts.Nanoseconds(); got != tt.nsec {
				t.Errorf("Nanoseconds: expected %d, got %d", tt.nsec, got)
			}

			// conversions agree with each other under integer truncation
			if tt.ts.Sec >= 0 && tt.ts.Nsec >= 0 {
				if tt.ts.Milliseconds() != tt.ts.Nanoseconds()/1_000_000 {
					t.Errorf("Milliseconds disagrees with Nanoseconds/1e6")
				}
				if tt.ts.Microseconds() != tt.ts.Nanoseconds()/1_000 {
					t.Errorf("Microseconds disagrees with Nanoseconds/1e3")
				}
			}
		})
	}
}

func TestNowMonotonic(t *testing.T) {
	prev := Now()
	for i := 0; i < 1000; i++ {
		cur := Now()
		if cur.Sub(prev).Nanoseconds() < 0 {
			t.Fatalf("clock went backwards: %+v -> %+v", prev, cur)
		}
		prev = cur
	}

	if prev.Nsec < 0 || prev.Nsec >= 1_000_000_000 {
		t.Errorf("Now returned unnormalized nanoseconds: %d", prev.Nsec)
	}
}

func BenchmarkNow(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Now()
	}
}

func BenchmarkSub(b *testing.B) {
	t1 := Timespec{Sec: 5, Nsec: 100}
	t2 := Timespec{Sec: 6, Nsec: 50}
	for i := 0; i < b.N; i++ {
		_ = t2.Sub(t1)
	}
}
