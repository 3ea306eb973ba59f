package video

import (
	"context"
	"fmt"
)

// MemorySink keeps frames in memory. Used for previews and tests.
type MemorySink struct {
	Width, Height int
	Keep          bool // Store copies of the frames, not only count them

	FrameData [][]byte
	Opened    bool
	Finalized bool
	frames    int
}

func (s *MemorySink) Open(context.Context) error {
	if s.Opened {
		return fmt.Errorf("%w: open called twice", ErrSinkState)
	}
	s.Opened = true
	return nil
}

func (s *MemorySink) AddFrame(pix []byte) error {
	if !s.Opened || s.Finalized {
		return fmt.Errorf("%w: add frame outside open/finalize", ErrSinkState)
	}
	if want := s.Width * s.Height * 4; len(pix) != want {
		return fmt.Errorf("frame %d: expected %d bytes, got %d", s.frames, want, len(pix))
	}
	if s.Keep {
		s.FrameData = append(s.FrameData, append([]byte(nil), pix...))
	}
	s.frames++
	return nil
}

func (s *MemorySink) Finalize() error {
	if !s.Opened || s.Finalized {
		return fmt.Errorf("%w: finalize without open or twice", ErrSinkState)
	}
	s.Finalized = true
	return nil
}

func (s *MemorySink) Frames() int {
	return s.frames
}
