package config

type Config struct {
	PlanPath        string
	OutputVideo     string
	Width           int
	Height          int
	FPS             int
	BitRate         int // bits per second
	Workers         int
	Iterations      int
	Escape          float64
	MaxSamples      int
	MaxFrames       int // 0 = no limit
	Smoothing       float64
	SnapSkippedLegs bool
	VideoEncoder    string
	ShowHUD         bool
	ShowQR          bool
	ShowStats       bool
	DryRun          bool
	GeneratePlan    bool
	PlanOutput      string
	AutopilotLegs   int
	AutopilotZoom   float64
	AutopilotSpeed  float64
	BuildVersion    string
}

// Default mirrors the CLI defaults
func Default() *Config {
	return &Config{
		OutputVideo:    "output/flight.mp4",
		Width:          1680,
		Height:         960,
		FPS:            60,
		BitRate:        25_000_000,
		Workers:        4,
		Iterations:     200,
		Escape:         3,
		MaxSamples:     50000,
		MaxFrames:      9000,
		Smoothing:      0.95,
		VideoEncoder:   "libx264",
		AutopilotLegs:  6,
		AutopilotZoom:  0.5,
		AutopilotSpeed: 0.4,
	}
}

// FrameInterval is the time between two output frames in seconds
func (c *Config) FrameInterval() float64 {
	return 1.0 / float64(c.FPS)
}

// FrameParams describes the frame being produced, for overlays
type FrameParams struct {
	Width, Height int
	Index         int
	Total         int
	CenterX       float64
	CenterY       float64
	Scale         float64
}
