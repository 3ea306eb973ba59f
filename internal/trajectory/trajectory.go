// Package trajectory plans the camera path of a fractal fly-through.
//
// Waypoints are authored relative to the view that will be current when each
// leg begins. Bake resolves them against a start view into one sample per
// output frame, and Step replays those samples to the render loop.
package trajectory

import "time"

// Trajectory owns the authored waypoints until Bake and the baked samples after
type Trajectory struct {
	Options Options

	dt      float64
	moves   []Waypoint
	samples []Sample
	cursor  int
	baked   bool
}

// New creates an empty trajectory sampled every dt seconds (1/fps)
func New(dt float64) *Trajectory {
	return &Trajectory{
		Options: DefaultOptions(),
		dt:      dt,
	}
}

// AddMove appends a leg. x, y are an offset in units of the scale current at
// the start of the leg, zoom multiplies that scale and speed is the desired
// travel speed at the end of the leg, also scale-relative.
func (t *Trajectory) AddMove(x, y, zoom, speed float64) error {
	if t.baked {
		return ErrAlreadyBaked
	}
	t.moves = append(t.moves, Waypoint{Offset: Pt(x, y), Zoom: zoom, Speed: speed})
	return nil
}

// Bake consumes the waypoints and replaces them with the smoothed sample
// sequence. It runs once; the cursor starts at the first sample.
func (t *Trajectory) Bake(start Point, startScale float64) error {
	if t.baked {
		return ErrAlreadyBaked
	}
	if err := validSmoothing(t.Options.Smoothing); err != nil {
		return err
	}

	raw, err := BakePath(t.moves, start, startScale, t.dt, t.Options)
	if err != nil {
		return err
	}

	t.samples = Smooth(raw, start, startScale, t.Options.Smoothing)
	t.moves = nil
	t.cursor = 0
	t.baked = true
	return nil
}

// Step returns the next sample and advances the cursor
func (t *Trajectory) Step() (Point, float64, error) {
	if !t.baked {
		return Point{}, 0, ErrNotBaked
	}
	if t.Finished() {
		return Point{}, 0, &CursorError{Cursor: t.cursor, Length: len(t.samples)}
	}
	s := t.samples[t.cursor]
	t.cursor++
	return s.Position, s.Scale, nil
}

// Finished reports whether every baked sample has been handed out.
// An unbaked trajectory has no samples and is always finished.
func (t *Trajectory) Finished() bool {
	return t.cursor >= len(t.samples)
}

func (t *Trajectory) Baked() bool { return t.baked }

func (t *Trajectory) Moves() int { return len(t.moves) }

// Len is the number of baked samples
func (t *Trajectory) Len() int { return len(t.samples) }

func (t *Trajectory) Remaining() int { return len(t.samples) - t.cursor }

// Samples returns a copy of the baked sequence
func (t *Trajectory) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Duration is the playback length of the baked sequence
func (t *Trajectory) Duration() time.Duration {
	return time.Duration(float64(len(t.samples)) * t.dt * float64(time.Second))
}
