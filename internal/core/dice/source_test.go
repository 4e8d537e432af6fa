package dice

import (
	"errors"
	"testing"
)

func TestNewSource_Deterministic(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)
	for i := 0; i < 20; i++ {
		if got, want := Percentile(a), Percentile(b); got != want {
			t.Fatalf("draw %d = %d, want %d", i, got, want)
		}
	}
}

func TestPercentile_Range(t *testing.T) {
	src := NewSource(7)
	for i := 0; i < 1000; i++ {
		v := Percentile(src)
		if v < 0 || v > 99 {
			t.Fatalf("Percentile = %d, want [0,99]", v)
		}
	}
}

func TestPick(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr error
	}{
		{name: "single", n: 1},
		{name: "several", n: 5},
		{name: "zero", n: 0, wantErr: ErrInvalidSides},
		{name: "negative", n: -3, wantErr: ErrInvalidSides},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pick(NewSource(1), tt.n)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Pick error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && (got < 0 || got >= tt.n) {
				t.Fatalf("Pick = %d, want [0,%d)", got, tt.n)
			}
		})
	}
}

func TestScript_WrapsAndReduces(t *testing.T) {
	s := &Script{Values: []int{5, 120, -1}}
	if got := s.Intn(100); got != 5 {
		t.Fatalf("first = %d, want 5", got)
	}
	if got := s.Intn(100); got != 20 {
		t.Fatalf("second = %d, want 20", got)
	}
	if got := s.Intn(100); got != 99 {
		t.Fatalf("third = %d, want 99", got)
	}
	if got := s.Intn(100); got != 5 {
		t.Fatalf("wrapped = %d, want 5", got)
	}
	if s.Draws() != 4 {
		t.Fatalf("Draws = %d, want 4", s.Draws())
	}
}

func TestNewSeed(t *testing.T) {
	if _, err := NewSeed(); err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
}

func TestLaneSeed_Distinct(t *testing.T) {
	seen := map[int64]bool{}
	for lane := 0; lane < 8; lane++ {
		s := LaneSeed(100, lane)
		if seen[s] {
			t.Fatalf("lane %d seed %d repeated", lane, s)
		}
		seen[s] = true
	}
	if LaneSeed(100, 0) != 100 {
		t.Fatalf("lane 0 seed = %d, want base", LaneSeed(100, 0))
	}
}

func TestPolicySeed_ApartFromLaneSeeds(t *testing.T) {
	lanes := map[int64]bool{}
	for lane := 0; lane < 8; lane++ {
		lanes[LaneSeed(100, lane)] = true
	}
	for lane := 0; lane < 8; lane++ {
		if s := PolicySeed(100, lane); lanes[s] {
			t.Fatalf("policy seed %d of lane %d collides with a lane seed", s, lane)
		}
	}
}
