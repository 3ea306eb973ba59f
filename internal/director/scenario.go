package director

import (
	"fmt"
	"math"

	"github.com/ivlev/fractal2video/internal/trajectory"
)

const ScenarioVersion = "1.0"

// Scenario is a flight plan: where the camera starts and the legs it flies
type Scenario struct {
	Version string `yaml:"version"`
	Start   View   `yaml:"start"`
	Moves   []Move `yaml:"moves"`
}

// View is an absolute camera position on the fractal plane
type View struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Scale float64 `yaml:"scale"`
}

// Move is one leg, relative to the view at the start of the leg
type Move struct {
	X     float64 `yaml:"x"`     // Offset in units of the current scale
	Y     float64 `yaml:"y"`     // Offset in units of the current scale
	Zoom  float64 `yaml:"zoom"`  // Scale multiplier (< 1 zooms in)
	Speed float64 `yaml:"speed"` // Travel speed at the end of the leg, scale-relative
	Note  string  `yaml:"note,omitempty"`
}

// DefaultScenario is the built-in fly-through along the seahorse valley
func DefaultScenario() *Scenario {
	return &Scenario{
		Version: ScenarioVersion,
		Start:   View{X: -0.5, Y: 0, Scale: 1.5},
		Moves: []Move{
			{X: -0.15, Y: 0.05, Zoom: 0.5, Speed: 0.1, Note: "approach"},
			{X: -0.12, Y: 0.12, Zoom: 0.5, Speed: 0.1, Note: "seahorse valley"},
			{X: 0.05, Y: 0.08, Zoom: 0.4, Speed: 0.12},
			{X: -0.2, Y: -0.1, Zoom: 0.6, Speed: 0.12},
			{X: 0.3, Y: 0.1, Zoom: 1.8, Speed: 0.1, Note: "pull back"},
			{X: 0.4, Y: -0.2, Zoom: 2.5, Speed: 0.08, Note: "overview"},
		},
	}
}

// Validate checks the plan before it is baked
func (s *Scenario) Validate() error {
	if s.Version != ScenarioVersion {
		return fmt.Errorf("unsupported scenario version %q (expected %s)", s.Version, ScenarioVersion)
	}
	if !finite(s.Start.X) || !finite(s.Start.Y) || !finite(s.Start.Scale) || s.Start.Scale <= 0 {
		return fmt.Errorf("start view must be finite with positive scale, got %+v", s.Start)
	}
	if len(s.Moves) == 0 {
		return fmt.Errorf("scenario has no moves")
	}
	for i, m := range s.Moves {
		if !finite(m.X) || !finite(m.Y) {
			return fmt.Errorf("move %d: offset must be finite", i+1)
		}
		if !finite(m.Zoom) || m.Zoom <= 0 {
			return fmt.Errorf("move %d: zoom must be positive, got %v", i+1, m.Zoom)
		}
		if !finite(m.Speed) || m.Speed <= 0 {
			return fmt.Errorf("move %d: speed must be positive, got %v", i+1, m.Speed)
		}
	}
	return nil
}

// Waypoint converts the move to a trajectory waypoint
func (m Move) Waypoint() trajectory.Waypoint {
	return trajectory.Waypoint{Offset: trajectory.Pt(m.X, m.Y), Zoom: m.Zoom, Speed: m.Speed}
}

// Trajectory builds the authoring-phase trajectory for this plan
func (s *Scenario) Trajectory(dt float64, opts trajectory.Options) (*trajectory.Trajectory, error) {
	tr := trajectory.New(dt)
	tr.Options = opts
	for _, m := range s.Moves {
		if err := tr.AddMove(m.X, m.Y, m.Zoom, m.Speed); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

// StartPoint returns the start view as a trajectory point and scale
func (s *Scenario) StartPoint() (trajectory.Point, float64) {
	return trajectory.Pt(s.Start.X, s.Start.Y), s.Start.Scale
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
