package trajectory

import (
	"fmt"
	"math"
)

const (
	// DefaultMaxSamples bounds the raw sequence of a single bake
	DefaultMaxSamples = 50000
	// DefaultSmoothing is the low-pass coefficient applied after baking
	DefaultSmoothing = 0.95
)

// Waypoint is one authored leg of the camera path.
// Offset is measured in units of the scale current when the leg starts,
// Zoom multiplies that scale, Speed is expressed the same scale-relative way.
type Waypoint struct {
	Offset Point
	Zoom   float64
	Speed  float64
}

// Sample is one baked (position, scale) pair, one per output frame
type Sample struct {
	Position Point
	Scale    float64
}

// Options tune a bake
type Options struct {
	MaxSamples int     // Raw sample ceiling, DefaultMaxSamples when <= 0
	Smoothing  float64 // Low-pass coefficient in [0, 1); 0 disables smoothing

	// SnapSkippedLegs makes a leg too short to produce a single sample jump
	// the carried position and scale to its target. By default such a leg
	// only carries its fractional step budget and speed into the next leg.
	SnapSkippedLegs bool
}

// DefaultOptions returns the settings used by New
func DefaultOptions() Options {
	return Options{
		MaxSamples: DefaultMaxSamples,
		Smoothing:  DefaultSmoothing,
	}
}

func (o Options) ceiling() int {
	if o.MaxSamples <= 0 {
		return DefaultMaxSamples
	}
	return o.MaxSamples
}

// legState is carried from one leg to the next
type legState struct {
	Pos       Point
	Scale     float64
	Speed     float64
	Remainder float64
}

// leg is a waypoint resolved against the state it starts from
type leg struct {
	from        legState
	target      Point
	targetScale float64
	newSpeed    float64
	avgSpeed    float64
	stepCount   float64
}

func resolveLeg(st legState, w Waypoint, dt float64) leg {
	target := st.Pos.Add(w.Offset.Mul(st.Scale))
	targetScale := st.Scale * w.Zoom
	newSpeed := w.Speed * targetScale

	distance := target.Sub(st.Pos).Len()
	avgSpeed := (st.Speed + newSpeed) / 2

	return leg{
		from:        st,
		target:      target,
		targetScale: targetScale,
		newSpeed:    newSpeed,
		avgSpeed:    avgSpeed,
		stepCount:   distance/(avgSpeed*dt) + st.Remainder,
	}
}

// steps is the number of samples the leg emits
func (l leg) steps() float64 {
	if l.stepCount < 1 {
		return 0
	}
	return math.Floor(l.stepCount)
}

func (l leg) samples() []Sample {
	n := int(l.steps())
	out := make([]Sample, 0, n)
	delta := l.target.Sub(l.from.Pos)
	for step := 1; step <= n; step++ {
		s := float64(step)
		curSpeed := l.from.Speed + (l.newSpeed-l.from.Speed)*s/l.stepCount
		curAvg := (l.from.Speed + curSpeed) / 2
		// Weighted by distance covered at the ramped speed, not by elapsed steps
		ratio := curAvg * s / (l.avgSpeed * l.stepCount)
		out = append(out, Sample{
			Position: l.from.Pos.Add(delta.Mul(ratio)),
			Scale:    l.from.Scale + (l.targetScale-l.from.Scale)*ratio,
		})
	}
	return out
}

func (l leg) next(out []Sample, snap bool) legState {
	st := legState{
		Pos:       l.from.Pos,
		Scale:     l.from.Scale,
		Speed:     l.newSpeed,
		Remainder: l.stepCount - math.Floor(l.stepCount),
	}
	switch {
	case len(out) > 0:
		last := out[len(out)-1]
		st.Pos, st.Scale = last.Position, last.Scale
	case snap:
		st.Pos, st.Scale = l.target, l.targetScale
	}
	return st
}

// advance folds one waypoint into the carried state and returns the raw
// samples of that leg. It does not enforce the sample ceiling.
func advance(st legState, w Waypoint, dt float64, snap bool) (legState, []Sample) {
	l := resolveLeg(st, w, dt)
	out := l.samples()
	return l.next(out, snap), out
}

func seedState(moves []Waypoint, start Point, startScale float64) legState {
	st := legState{Pos: start, Scale: startScale}
	if len(moves) > 0 {
		st.Speed = moves[0].Speed * startScale
	}
	return st
}

// BakePath converts waypoints into raw samples spaced dt seconds apart.
// Travel speed ramps linearly from one waypoint's speed to the next, in
// absolute plane units, so zooming in slows the pan down proportionally.
func BakePath(moves []Waypoint, start Point, startScale, dt float64, opts Options) ([]Sample, error) {
	raw, _, err := bake(moves, start, startScale, dt, opts)
	return raw, err
}

// EndState returns the position and scale a waypoint appended after moves
// would be resolved against. With a fractional remainder this is the last
// emitted sample, short of the nominal target of the final leg.
func EndState(moves []Waypoint, start Point, startScale, dt float64, opts Options) (Point, float64, error) {
	_, st, err := bake(moves, start, startScale, dt, opts)
	if err != nil {
		return Point{}, 0, err
	}
	return st.Pos, st.Scale, nil
}

func bake(moves []Waypoint, start Point, startScale, dt float64, opts Options) ([]Sample, legState, error) {
	if err := validate(moves, start, startScale, dt); err != nil {
		return nil, legState{}, err
	}

	ceiling := opts.ceiling()
	st := seedState(moves, start, startScale)
	raw := make([]Sample, 0)

	for i, w := range moves {
		l := resolveLeg(st, w, dt)
		if math.IsNaN(l.stepCount) {
			return nil, legState{}, &WaypointError{Leg: i, Reason: "leg resolves to a non-finite step count"}
		}

		available := ceiling - len(raw)
		if n := l.steps(); n > float64(available) {
			requested := math.MaxInt
			if n < float64(math.MaxInt32) {
				requested = int(n)
			}
			return nil, legState{}, &OverflowError{Leg: i, Requested: requested, Available: available, Ceiling: ceiling}
		}

		out := l.samples()
		raw = append(raw, out...)
		st = l.next(out, opts.SnapSkippedLegs)
	}

	return raw, st, nil
}

func validate(moves []Waypoint, start Point, startScale, dt float64) error {
	if !(dt > 0) || !isFinite(dt) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, dt)
	}
	if !(startScale > 0) || !isFinite(startScale) || !start.finite() {
		return fmt.Errorf("%w: center=%v scale=%v", ErrInvalidStart, start, startScale)
	}
	for i, w := range moves {
		switch {
		case !w.Offset.finite():
			return &WaypointError{Leg: i, Reason: fmt.Sprintf("offset %v is not finite", w.Offset)}
		case !(w.Zoom > 0) || !isFinite(w.Zoom):
			return &WaypointError{Leg: i, Reason: fmt.Sprintf("zoom factor must be positive, got %v", w.Zoom)}
		case !(w.Speed > 0) || !isFinite(w.Speed):
			return &WaypointError{Leg: i, Reason: fmt.Sprintf("speed must be positive, got %v", w.Speed)}
		}
	}
	return nil
}
