package trajectory

import (
	"errors"
	"testing"
	"time"
)

func newTestTrajectory(t *testing.T) *Trajectory {
	t.Helper()
	tr := New(1.0 / 60)
	moves := [][4]float64{
		{-0.5, 0, 0.5, 0.3},
		{0, 0.25, 0.25, 0.3},
		{-0.25, -0.25, 0.6, 0.5},
	}
	for _, m := range moves {
		if err := tr.AddMove(m[0], m[1], m[2], m[3]); err != nil {
			t.Fatalf("AddMove failed: %v", err)
		}
	}
	return tr
}

func TestTrajectoryPlayback(t *testing.T) {
	tr := newTestTrajectory(t)
	if err := tr.Bake(Pt(-0.5, 0), 1.5); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}

	n := tr.Len()
	if n == 0 {
		t.Fatal("Expected baked samples")
	}
	if tr.Moves() != 0 {
		t.Errorf("Bake should consume waypoints, %d left", tr.Moves())
	}

	want := tr.Samples()
	for i := 0; i < n; i++ {
		if tr.Finished() {
			t.Fatalf("Finished after only %d of %d steps", i, n)
		}
		pos, scale, err := tr.Step()
		if err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
		if pos != want[i].Position || scale != want[i].Scale {
			t.Fatalf("Step %d: expected %v, got %v/%v", i, want[i], pos, scale)
		}
	}

	for i := 0; i < 3; i++ {
		if !tr.Finished() {
			t.Fatal("Expected trajectory to stay finished")
		}
		_, _, err := tr.Step()
		if !errors.Is(err, ErrCursorExhausted) {
			t.Fatalf("Expected ErrCursorExhausted, got %v", err)
		}
		var cursorErr *CursorError
		if !errors.As(err, &cursorErr) || cursorErr.Length != n {
			t.Errorf("Expected *CursorError with length %d, got %v", n, err)
		}
	}
	if tr.Remaining() != 0 {
		t.Errorf("Expected 0 remaining, got %d", tr.Remaining())
	}
}

func TestTrajectoryLifecycle(t *testing.T) {
	tr := New(1.0 / 60)
	if err := tr.AddMove(1, 0, 1, 1); err != nil {
		t.Fatalf("AddMove failed: %v", err)
	}

	if _, _, err := tr.Step(); !errors.Is(err, ErrNotBaked) {
		t.Errorf("Expected ErrNotBaked, got %v", err)
	}
	if err := tr.Bake(Pt(0, 0), 1); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	if !tr.Baked() {
		t.Error("Expected Baked() after Bake")
	}
	if err := tr.Bake(Pt(0, 0), 1); !errors.Is(err, ErrAlreadyBaked) {
		t.Errorf("Expected ErrAlreadyBaked on second bake, got %v", err)
	}
	if err := tr.AddMove(1, 0, 1, 1); !errors.Is(err, ErrAlreadyBaked) {
		t.Errorf("Expected ErrAlreadyBaked from AddMove, got %v", err)
	}
}

func TestTrajectoryFailedBakeCanRetry(t *testing.T) {
	tr := newTestTrajectory(t)
	tr.Options.MaxSamples = 5

	if err := tr.Bake(Pt(-0.5, 0), 1.5); !errors.Is(err, ErrSampleCeiling) {
		t.Fatalf("Expected ErrSampleCeiling, got %v", err)
	}
	if tr.Baked() {
		t.Fatal("A failed bake must not mark the trajectory baked")
	}

	tr.Options.MaxSamples = DefaultMaxSamples
	if err := tr.Bake(Pt(-0.5, 0), 1.5); err != nil {
		t.Fatalf("Bake after relaxing the ceiling failed: %v", err)
	}
}

func TestTrajectoryRejectsBadSmoothing(t *testing.T) {
	tr := newTestTrajectory(t)
	tr.Options.Smoothing = 1

	if err := tr.Bake(Pt(0, 0), 1); err == nil {
		t.Error("Expected error for smoothing coefficient 1")
	}
}

func TestTrajectoryDuration(t *testing.T) {
	tr := New(0.5)
	tr.AddMove(2, 0, 1, 1) // 4 steps at unit speed
	if err := tr.Bake(Pt(0, 0), 1); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}

	if tr.Len() != 4 {
		t.Fatalf("Expected 4 samples, got %d", tr.Len())
	}
	if tr.Duration() != 2*time.Second {
		t.Errorf("Expected 2s, got %v", tr.Duration())
	}
}

func TestTrajectoryWithoutMovesIsFinished(t *testing.T) {
	tr := New(1.0 / 30)
	if err := tr.Bake(Pt(0, 0), 1); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	if !tr.Finished() {
		t.Error("Expected an empty trajectory to be finished")
	}
}
