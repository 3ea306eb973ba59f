package trajectory

import (
	"errors"
	"fmt"
)

var (
	// ErrSampleCeiling is matched by every *OverflowError
	ErrSampleCeiling = errors.New("trajectory: sample ceiling exceeded")
	// ErrCursorExhausted is matched by every *CursorError
	ErrCursorExhausted = errors.New("trajectory: step called after the last sample")
	ErrNotBaked        = errors.New("trajectory: not baked yet")
	ErrAlreadyBaked    = errors.New("trajectory: already baked")
	ErrInvalidStep     = errors.New("trajectory: frame interval must be positive and finite")
	ErrInvalidStart    = errors.New("trajectory: start view must have a positive finite scale")
	ErrInvalidWaypoint = errors.New("trajectory: invalid waypoint")
)

// OverflowError reports a bake that would emit more raw samples than allowed.
// The caller has to split the path, raise the speed or relax the ceiling.
type OverflowError struct {
	Leg       int // index of the leg that crossed the ceiling
	Requested int // samples that leg asked for
	Available int // samples left in the budget when the leg started
	Ceiling   int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("trajectory: leg %d needs %d samples but only %d of %d remain (waypoints too distant, speed too low or frame rate too high)",
		e.Leg, e.Requested, e.Available, e.Ceiling)
}

func (e *OverflowError) Unwrap() error {
	return ErrSampleCeiling
}

// CursorError is returned by Step once the trajectory is finished
type CursorError struct {
	Cursor int
	Length int
}

func (e *CursorError) Error() string {
	return fmt.Sprintf("trajectory: cursor %d is past the end of %d samples", e.Cursor, e.Length)
}

func (e *CursorError) Unwrap() error {
	return ErrCursorExhausted
}

// WaypointError points at the authored leg that is rejected at bake time
type WaypointError struct {
	Leg    int
	Reason string
}

func (e *WaypointError) Error() string {
	return fmt.Sprintf("trajectory: leg %d: %s", e.Leg, e.Reason)
}

func (e *WaypointError) Unwrap() error {
	return ErrInvalidWaypoint
}
