package director

import (
	"context"
	"fmt"
	"math"

	"github.com/ivlev/fractal2video/internal/analyzer"
	"github.com/ivlev/fractal2video/internal/renderer"
	"github.com/ivlev/fractal2video/internal/trajectory"
	"github.com/ivlev/fractal2video/internal/viewport"
)

// Autopilot generates a flight plan by repeatedly rendering a preview,
// picking the most detailed region and flying towards it
type Autopilot struct {
	Renderer renderer.Renderer
	Detector analyzer.Detector
	Legs     int     // Number of moves to generate
	Zoom     float64 // Scale multiplier per leg
	Speed    float64 // Scale-relative speed per leg
	MaxReach float64 // Longest offset per leg, in units of the current scale

	// Bake settings used to find where each previewed leg starts
	FrameInterval float64
	Options       trajectory.Options
}

// NewAutopilot creates an Autopilot with default settings
func NewAutopilot(r renderer.Renderer, d analyzer.Detector) *Autopilot {
	return &Autopilot{
		Renderer: r,
		Detector: d,
		Legs:     6,
		Zoom:     0.5,
		Speed:    0.4,
		MaxReach: 0.8,

		FrameInterval: 1.0 / 60,
		Options:       trajectory.DefaultOptions(),
	}
}

// Generate creates a scenario starting from start. Each preview is rendered
// from the view the baker resolves the next offset against, which is the
// last emitted sample rather than the nominal leg target, so the detected
// region is where the next leg lands.
func (a *Autopilot) Generate(ctx context.Context, start View) (*Scenario, error) {
	if a.Legs <= 0 {
		return nil, fmt.Errorf("autopilot needs at least one leg")
	}
	if a.Zoom <= 0 || a.Speed <= 0 {
		return nil, fmt.Errorf("autopilot zoom and speed must be positive")
	}

	view := viewport.Viewport{CenterX: start.X, CenterY: start.Y, Scale: start.Scale}
	w, h := a.Renderer.Size()
	origin := trajectory.Pt(start.X, start.Y)

	moves := make([]Move, 0, a.Legs)
	waypoints := make([]trajectory.Waypoint, 0, a.Legs)
	for i := 0; i < a.Legs; i++ {
		move, err := a.nextMove(ctx, view, w, h, i)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i+1, err)
		}
		moves = append(moves, move)
		waypoints = append(waypoints, move.Waypoint())

		pos, scale, err := trajectory.EndState(waypoints, origin, start.Scale, a.FrameInterval, a.Options)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i+1, err)
		}
		view.SetCenter(pos.X, pos.Y).SetScale(scale)
	}

	return &Scenario{
		Version: ScenarioVersion,
		Start:   start,
		Moves:   moves,
	}, nil
}

func (a *Autopilot) nextMove(ctx context.Context, view viewport.Viewport, w, h, leg int) (Move, error) {
	img, err := a.Renderer.Render(ctx, view)
	if err != nil {
		return Move{}, err
	}
	blocks, err := a.Detector.Detect(img)
	a.Renderer.Release(img)
	if err != nil {
		return Move{}, err
	}

	if len(blocks) == 0 {
		// Nothing to aim at: drift sideways so the leg still has distance
		dir := 1.0
		if leg%2 == 1 {
			dir = -1.0
		}
		return Move{X: 0.25 * dir, Y: 0, Zoom: a.Zoom, Speed: a.Speed, Note: "drift"}, nil
	}

	best := blocks[0]
	px, py := best.Center()
	x, y := view.PixelToPlane(px-0.5, py-0.5, w, h)

	dx := (x - view.CenterX) / view.Scale
	dy := (y - view.CenterY) / view.Scale
	dx, dy = clampReach(dx, dy, a.MaxReach)

	return Move{
		X:     dx,
		Y:     dy,
		Zoom:  a.Zoom,
		Speed: a.Speed,
		Note:  fmt.Sprintf("detail %.2f", best.Score),
	}, nil
}

func clampReach(dx, dy, reach float64) (float64, float64) {
	if reach <= 0 {
		return dx, dy
	}
	d2 := dx*dx + dy*dy
	if d2 <= reach*reach {
		return dx, dy
	}
	k := reach / math.Sqrt(d2)
	return dx * k, dy * k
}
