package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ErrSinkState is returned when Open, AddFrame and Finalize are called out of order
var ErrSinkState = errors.New("frame sink used out of order")

// FrameSink accepts fixed-size RGBA8 frames, rows top to bottom, and turns
// them into a video. Open once, AddFrame per frame, Finalize once.
type FrameSink interface {
	Open(ctx context.Context) error
	AddFrame(pix []byte) error
	Finalize() error
	Frames() int
}

// SinkParams fixes the geometry and rate of the output stream
type SinkParams struct {
	Width, Height int
	FPS           int
	BitRate       int    // bits per second
	Encoder       string // ffmpeg encoder name
	OutputPath    string
}

func (p SinkParams) frameSize() int {
	return p.Width * p.Height * 4
}

type sinkState int

const (
	stateNew sinkState = iota
	stateOpen
	stateFailed
	stateFinalized
)

// FFmpegSink pipes raw RGBA frames into an ffmpeg child process, which
// converts them to yuv420p and writes the container
type FFmpegSink struct {
	Params SinkParams
	Binary string

	state  sinkState
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    bytes.Buffer
	frames int
}

func NewFFmpegSink(params SinkParams) *FFmpegSink {
	return &FFmpegSink{Params: params, Binary: "ffmpeg"}
}

// Open starts the encoder; the container header is written by ffmpeg
func (s *FFmpegSink) Open(ctx context.Context) error {
	if s.state != stateNew {
		return fmt.Errorf("%w: open called twice", ErrSinkState)
	}
	if s.Params.Width <= 0 || s.Params.Height <= 0 || s.Params.FPS <= 0 {
		return fmt.Errorf("invalid sink parameters %dx%d @ %d FPS", s.Params.Width, s.Params.Height, s.Params.FPS)
	}

	cmd := exec.CommandContext(ctx, s.Binary, s.buildFFmpegArgs()...)
	cmd.Stdout = &s.log
	cmd.Stderr = &s.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.state = stateOpen
	return nil
}

// AddFrame writes one frame; pix must hold exactly Width*Height*4 bytes
func (s *FFmpegSink) AddFrame(pix []byte) error {
	if s.state != stateOpen {
		return fmt.Errorf("%w: add frame outside open/finalize", ErrSinkState)
	}
	if len(pix) != s.Params.frameSize() {
		return fmt.Errorf("frame %d: expected %d bytes, got %d", s.frames, s.Params.frameSize(), len(pix))
	}

	if _, err := s.stdin.Write(pix); err != nil {
		// ffmpeg output is only complete and safe to read after Wait
		s.state = stateFailed
		s.stdin.Close()
		werr := s.cmd.Wait()
		return fmt.Errorf("write raw error: %w (ffmpeg: %v), output: %s", err, werr, s.log.String())
	}
	s.frames++
	return nil
}

// Finalize flushes the encoder and waits for the trailer to be written.
// After a failed AddFrame the process has already been reaped and the
// error reported there, so Finalize only closes the sink.
func (s *FFmpegSink) Finalize() error {
	switch s.state {
	case stateFailed:
		s.state = stateFinalized
		return nil
	case stateOpen:
	default:
		return fmt.Errorf("%w: finalize without open or twice", ErrSinkState)
	}
	s.state = stateFinalized

	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %v, output: %s", err, s.log.String())
	}
	return nil
}

func (s *FFmpegSink) Frames() int {
	return s.frames
}

func (s *FFmpegSink) buildFFmpegArgs() []string {
	p := s.Params
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
		"-r", fmt.Sprintf("%d", p.FPS),
	}

	// Битрейт фиксирован; для программного x264 дополнительно задаем пресет
	bitrate := fmt.Sprintf("%dk", p.BitRate/1000)
	switch p.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", bitrate)
	case "h264_nvenc":
		args = append(args, "-b:v", bitrate, "-rc", "cbr")
	default: // libx264
		args = append(args, "-b:v", bitrate, "-preset", "medium")
	}

	args = append(args, "-movflags", "+faststart", p.OutputPath)
	return args
}
