package trajectory

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-12

func TestBakeSingleLeg(t *testing.T) {
	moves := []Waypoint{{Offset: Pt(1, 0), Zoom: 1, Speed: 1}}

	raw, err := BakePath(moves, Pt(0, 0), 1, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("BakePath failed: %v", err)
	}

	if len(raw) != 1 {
		t.Fatalf("Expected exactly 1 sample, got %d", len(raw))
	}
	if raw[0].Position != Pt(1, 0) || raw[0].Scale != 1 {
		t.Errorf("Expected sample at (1,0) scale 1, got %v scale %v", raw[0].Position, raw[0].Scale)
	}
}

func TestBakeOffsetIsScaleRelative(t *testing.T) {
	moves := []Waypoint{
		{Offset: Pt(1, 0), Zoom: 0.5, Speed: 1},
		{Offset: Pt(1, 0), Zoom: 1, Speed: 1},
	}

	st := seedState(moves, Pt(0, 0), 2)
	first := resolveLeg(st, moves[0], 0.1)
	if first.target != Pt(2, 0) {
		t.Errorf("First leg target: expected (2,0), got %v", first.target)
	}
	if first.targetScale != 1 {
		t.Errorf("First leg scale: expected 1, got %v", first.targetScale)
	}
	if first.newSpeed != 1 {
		t.Errorf("First leg end speed: expected 1, got %v", first.newSpeed)
	}

	// Seed speed is the first leg's speed at the start scale
	if st.Speed != 2 {
		t.Errorf("Seed speed: expected 2, got %v", st.Speed)
	}
}

func TestBakeFastLegCarriesRemainder(t *testing.T) {
	dt := 1.0
	fast := Waypoint{Offset: Pt(1, 0), Zoom: 1, Speed: 4} // 0.25 steps
	slow := Waypoint{Offset: Pt(2, 0), Zoom: 1, Speed: 4}

	st := legState{Pos: Pt(0, 0), Scale: 1, Speed: 4}
	next, out := advance(st, fast, dt, false)

	if len(out) != 0 {
		t.Fatalf("Expected no samples for a sub-step leg, got %d", len(out))
	}
	if math.Abs(next.Remainder-0.25) > eps {
		t.Errorf("Expected remainder 0.25, got %v", next.Remainder)
	}
	if next.Pos != st.Pos || next.Scale != st.Scale {
		t.Errorf("Skipped leg must not move the view: got %v scale %v", next.Pos, next.Scale)
	}
	if next.Speed != 4 {
		t.Errorf("Expected carried speed 4, got %v", next.Speed)
	}

	without := resolveLeg(legState{Pos: Pt(0, 0), Scale: 1, Speed: 4}, slow, dt)
	with := resolveLeg(next, slow, dt)
	if math.Abs(with.stepCount-without.stepCount-0.25) > eps {
		t.Errorf("Next leg budget should grow by 0.25: %v vs %v", with.stepCount, without.stepCount)
	}
}

func TestBakeSnapSkippedLeg(t *testing.T) {
	st := legState{Pos: Pt(0, 0), Scale: 1, Speed: 4}
	next, out := advance(st, Waypoint{Offset: Pt(1, 0), Zoom: 0.5, Speed: 8}, 1, true)

	if len(out) != 0 {
		t.Fatalf("Expected no samples, got %d", len(out))
	}
	if next.Pos != Pt(1, 0) || next.Scale != 0.5 {
		t.Errorf("Expected snap to (1,0) scale 0.5, got %v scale %v", next.Pos, next.Scale)
	}
}

func TestBakeZeroDistanceKeepsRemainder(t *testing.T) {
	tests := []struct {
		name      string
		remainder float64
	}{
		{"fractional", 0.6},
		{"zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := legState{Pos: Pt(3, 4), Scale: 1, Speed: 1, Remainder: tt.remainder}
			next, out := advance(st, Waypoint{Offset: Pt(0, 0), Zoom: 1, Speed: 1}, 0.1, false)

			if len(out) != 0 {
				t.Errorf("Expected 0 samples, got %d", len(out))
			}
			if next.Remainder != tt.remainder {
				t.Errorf("Expected remainder %v, got %v", tt.remainder, next.Remainder)
			}
		})
	}
}

func TestBakeSpeedRampIsMonotonic(t *testing.T) {
	tests := []struct {
		name        string
		start, end  float64
		accelerates bool
	}{
		{"accelerating", 0.5, 2, true},
		{"decelerating", 2, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := legState{Pos: Pt(0, 0), Scale: 1, Speed: tt.start}
			_, out := advance(st, Waypoint{Offset: Pt(10, 0), Zoom: 1, Speed: tt.end}, 1.0/60, false)
			if len(out) < 3 {
				t.Fatalf("Expected a dense leg, got %d samples", len(out))
			}

			prev := st.Pos
			lastStep := -1.0
			for i, s := range out {
				d := s.Position.Sub(prev).Len()
				if lastStep >= 0 {
					if tt.accelerates && d < lastStep-eps {
						t.Fatalf("Step %d shrank while accelerating: %v < %v", i, d, lastStep)
					}
					if !tt.accelerates && d > lastStep+eps {
						t.Fatalf("Step %d grew while decelerating: %v > %v", i, d, lastStep)
					}
				}
				lastStep = d
				prev = s.Position
			}
		})
	}
}

func TestBakeCeiling(t *testing.T) {
	moves := []Waypoint{
		{Offset: Pt(1.5, 0), Zoom: 1, Speed: 1}, // 6 samples
		{Offset: Pt(100, 0), Zoom: 1, Speed: 1},
	}
	opts := DefaultOptions()
	opts.MaxSamples = 100

	_, err := BakePath(moves, Pt(0, 0), 1, 0.25, opts)
	if err == nil {
		t.Fatal("Expected overflow error, got nil")
	}
	if !errors.Is(err, ErrSampleCeiling) {
		t.Errorf("Expected ErrSampleCeiling, got %v", err)
	}

	var overflow *OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("Expected *OverflowError, got %T", err)
	}
	if overflow.Leg != 1 {
		t.Errorf("Expected leg 1 to overflow, got %d", overflow.Leg)
	}
	if overflow.Available != 100-6 {
		t.Errorf("Expected 94 samples available, got %d", overflow.Available)
	}
	if overflow.Requested <= overflow.Available {
		t.Errorf("Requested %d should exceed available %d", overflow.Requested, overflow.Available)
	}
	t.Logf("Overflow: %v", err)
}

func TestBakeLengthBoundedByCeiling(t *testing.T) {
	moves := []Waypoint{
		{Offset: Pt(-0.5, 0), Zoom: 0.5, Speed: 0.4},
		{Offset: Pt(0, 0.25), Zoom: 0.25, Speed: 0.4},
		{Offset: Pt(-0.25, -0.25), Zoom: 0.15, Speed: 0.6},
		{Offset: Pt(0.4, 0.1), Zoom: 2, Speed: 0.5},
	}

	for _, ceiling := range []int{10, 100, 1000, DefaultMaxSamples} {
		opts := DefaultOptions()
		opts.MaxSamples = ceiling

		raw, err := BakePath(moves, Pt(-0.5, 0), 1.5, 1.0/60, opts)
		if err != nil {
			if !errors.Is(err, ErrSampleCeiling) {
				t.Errorf("ceiling %d: unexpected error %v", ceiling, err)
			}
			continue
		}
		if len(raw) > ceiling {
			t.Errorf("ceiling %d: got %d samples", ceiling, len(raw))
		}
	}
}

func TestBakeHugeStepCountOverflows(t *testing.T) {
	moves := []Waypoint{{Offset: Pt(1e300, 0), Zoom: 1, Speed: 1e-300}}

	_, err := BakePath(moves, Pt(0, 0), 1, 1, DefaultOptions())
	var overflow *OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("Expected *OverflowError, got %v", err)
	}
	if overflow.Requested <= DefaultMaxSamples {
		t.Errorf("Expected a huge request, got %d", overflow.Requested)
	}
}

func TestBakeDeterministic(t *testing.T) {
	moves := []Waypoint{
		{Offset: Pt(-0.5, 0.1), Zoom: 0.5, Speed: 0.3},
		{Offset: Pt(0.3, 0.25), Zoom: 0.7, Speed: 0.5},
	}

	a, err := BakePath(moves, Pt(-0.5, 0), 1.5, 1.0/60, DefaultOptions())
	if err != nil {
		t.Fatalf("BakePath failed: %v", err)
	}
	b, err := BakePath(moves, Pt(-0.5, 0), 1.5, 1.0/60, DefaultOptions())
	if err != nil {
		t.Fatalf("BakePath failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("Length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestBakeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		moves      []Waypoint
		scale, dt  float64
		wantTarget error
	}{
		{"zero speed", []Waypoint{{Offset: Pt(1, 0), Zoom: 1, Speed: 0}}, 1, 0.1, ErrInvalidWaypoint},
		{"negative zoom", []Waypoint{{Offset: Pt(1, 0), Zoom: -1, Speed: 1}}, 1, 0.1, ErrInvalidWaypoint},
		{"nan offset", []Waypoint{{Offset: Pt(math.NaN(), 0), Zoom: 1, Speed: 1}}, 1, 0.1, ErrInvalidWaypoint},
		{"zero dt", []Waypoint{{Offset: Pt(1, 0), Zoom: 1, Speed: 1}}, 1, 0, ErrInvalidStep},
		{"zero scale", []Waypoint{{Offset: Pt(1, 0), Zoom: 1, Speed: 1}}, 0, 0.1, ErrInvalidStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BakePath(tt.moves, Pt(0, 0), tt.scale, tt.dt, DefaultOptions())
			if !errors.Is(err, tt.wantTarget) {
				t.Errorf("Expected %v, got %v", tt.wantTarget, err)
			}
		})
	}
}

func TestBakeEmpty(t *testing.T) {
	raw, err := BakePath(nil, Pt(0, 0), 1, 0.1, DefaultOptions())
	if err != nil {
		t.Fatalf("BakePath failed: %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("Expected no samples, got %d", len(raw))
	}
}

func TestEndStateStopsAtLastSample(t *testing.T) {
	// 1.25 / (1 * 0.5) = 2.5 steps: two samples, the last at ratio 0.8
	moves := []Waypoint{{Offset: Pt(1.25, 0), Zoom: 1, Speed: 1}}

	pos, scale, err := EndState(moves, Pt(0, 0), 1, 0.5, DefaultOptions())
	if err != nil {
		t.Fatalf("EndState failed: %v", err)
	}
	raw, _ := BakePath(moves, Pt(0, 0), 1, 0.5, DefaultOptions())
	if len(raw) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(raw))
	}
	if pos != raw[1].Position || scale != raw[1].Scale {
		t.Errorf("Expected end state at last sample %v, got %v scale %v", raw[1], pos, scale)
	}
	if pos.X >= 1.25-1e-9 {
		t.Errorf("End state should fall short of the nominal target 1.25, got %v", pos.X)
	}
}

func TestEndStateSkippedLeg(t *testing.T) {
	moves := []Waypoint{{Offset: Pt(1, 0), Zoom: 1, Speed: 4}} // 0.25 steps at dt 1

	pos, _, err := EndState(moves, Pt(0, 0), 1, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("EndState failed: %v", err)
	}
	if pos != Pt(0, 0) {
		t.Errorf("Skipped leg should leave the view at the start, got %v", pos)
	}

	opts := DefaultOptions()
	opts.SnapSkippedLegs = true
	pos, _, err = EndState(moves, Pt(0, 0), 1, 1, opts)
	if err != nil {
		t.Fatalf("EndState failed: %v", err)
	}
	if pos != Pt(1, 0) {
		t.Errorf("Snapped leg should end at its target, got %v", pos)
	}
}

func TestEndStateReportsOverflow(t *testing.T) {
	moves := []Waypoint{{Offset: Pt(100, 0), Zoom: 1, Speed: 1}}
	opts := DefaultOptions()
	opts.MaxSamples = 10

	if _, _, err := EndState(moves, Pt(0, 0), 1, 1, opts); !errors.Is(err, ErrSampleCeiling) {
		t.Errorf("Expected ErrSampleCeiling, got %v", err)
	}
}
