package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/fractal2video/internal/config"
	"github.com/ivlev/fractal2video/internal/director"
	"github.com/ivlev/fractal2video/internal/effects"
	"github.com/ivlev/fractal2video/internal/renderer"
	"github.com/ivlev/fractal2video/internal/system"
	"github.com/ivlev/fractal2video/internal/trajectory"
	"github.com/ivlev/fractal2video/internal/video"
	"github.com/ivlev/fractal2video/internal/viewport"
)

// FlightProject bakes a flight plan and plays it through the renderer into a sink
type FlightProject struct {
	Config   *config.Config
	Scenario *director.Scenario
	Renderer renderer.Renderer
	Sink     video.FrameSink
	Effect   effects.Effect

	BenchmarkLog string
}

func NewFlightProject(cfg *config.Config, scenario *director.Scenario, r renderer.Renderer, sink video.FrameSink, eff effects.Effect) *FlightProject {
	if eff == nil {
		eff = effects.None{}
	}
	return &FlightProject{
		Config:       cfg,
		Scenario:     scenario,
		Renderer:     r,
		Sink:         sink,
		Effect:       eff,
		BenchmarkLog: "benchmark.log",
	}
}

// PlanSummary describes a baked trajectory
type PlanSummary struct {
	Moves    int
	Samples  int
	Frames   int // Samples actually played, after MaxFrames
	Duration time.Duration
	Final    trajectory.Sample
	BakeTime time.Duration
}

func (s PlanSummary) String() string {
	return fmt.Sprintf("ходов: %d | сэмплов: %d | кадров: %d | длительность: %.2fs | финал: x=%.10f y=%.10f scale=%.3e",
		s.Moves, s.Samples, s.Frames, s.Duration.Seconds(), s.Final.Position.X, s.Final.Position.Y, s.Final.Scale)
}

func (p *FlightProject) options() trajectory.Options {
	opts := trajectory.DefaultOptions()
	if p.Config.MaxSamples > 0 {
		opts.MaxSamples = p.Config.MaxSamples
	}
	opts.Smoothing = p.Config.Smoothing
	opts.SnapSkippedLegs = p.Config.SnapSkippedLegs
	return opts
}

// bake builds and bakes the trajectory for the scenario
func (p *FlightProject) bake() (*trajectory.Trajectory, PlanSummary, error) {
	if p.Config.FPS <= 0 {
		return nil, PlanSummary{}, fmt.Errorf("FPS должен быть положительным, получено %d", p.Config.FPS)
	}

	tr, err := p.Scenario.Trajectory(p.Config.FrameInterval(), p.options())
	if err != nil {
		return nil, PlanSummary{}, err
	}

	start := time.Now()
	pos, scale := p.Scenario.StartPoint()
	if err := tr.Bake(pos, scale); err != nil {
		var overflow *trajectory.OverflowError
		if errors.As(err, &overflow) {
			log.Printf("[!] Ход %d требует %d кадров, доступно %d из %d. Разбейте путь, увеличьте скорость или поднимите -max-samples",
				overflow.Leg+1, overflow.Requested, overflow.Available, overflow.Ceiling)
		}
		return nil, PlanSummary{}, fmt.Errorf("ошибка построения траектории: %w", err)
	}

	summary := PlanSummary{
		Moves:    len(p.Scenario.Moves),
		Samples:  tr.Len(),
		Frames:   tr.Len(),
		Duration: tr.Duration(),
		BakeTime: time.Since(start),
	}
	if p.Config.MaxFrames > 0 && summary.Frames > p.Config.MaxFrames {
		summary.Frames = p.Config.MaxFrames
	}
	if samples := tr.Samples(); len(samples) > 0 {
		summary.Final = samples[summary.Frames-1]
	}
	return tr, summary, nil
}

// Plan bakes the trajectory without rendering
func (p *FlightProject) Plan() (PlanSummary, error) {
	_, summary, err := p.bake()
	return summary, err
}

// Run bakes the trajectory and renders one frame per sample into the sink
func (p *FlightProject) Run(ctx context.Context) (err error) {
	startTime := time.Now()

	tr, summary, err := p.bake()
	if err != nil {
		return err
	}

	w, h := p.Renderer.Size()
	fmt.Println("--- [PROJECT: FRACTAL FLIGHT] ---")
	fmt.Printf("[*] План: %s\n", summary)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Битрейт: %d кбит/с\n", w, h, p.Config.FPS, p.Config.BitRate/1000)
	fmt.Println("-----------------------------")

	if summary.Frames == 0 {
		return fmt.Errorf("траектория не содержит кадров: пути слишком короткие для %d FPS", p.Config.FPS)
	}

	if err := p.Sink.Open(ctx); err != nil {
		return fmt.Errorf("ошибка открытия видеопотока: %w", err)
	}
	defer func() {
		if ferr := p.Sink.Finalize(); ferr != nil {
			err = errors.Join(err, fmt.Errorf("ошибка финализации видео: %w", ferr))
		}
	}()

	renderStart := time.Now()
	var renderTime time.Duration
	view := viewport.New(p.Scenario.Start.X, p.Scenario.Start.Y, p.Scenario.Start.Scale)

	for frame := 0; !tr.Finished() && frame < summary.Frames; frame++ {
		pos, scale, err := tr.Step()
		if err != nil {
			return err
		}
		view.SetCenter(pos.X, pos.Y).SetScale(scale)

		t0 := time.Now()
		img, err := p.Renderer.Render(ctx, *view)
		if err != nil {
			return fmt.Errorf("ошибка рендеринга кадра %d: %w", frame, err)
		}
		renderTime += time.Since(t0)

		params := config.FrameParams{
			Width: w, Height: h,
			Index: frame, Total: summary.Frames,
			CenterX: view.CenterX, CenterY: view.CenterY, Scale: view.Scale,
		}
		if err := p.Effect.Apply(img, params); err != nil {
			p.Renderer.Release(img)
			return fmt.Errorf("ошибка наложения эффекта на кадр %d: %w", frame, err)
		}

		err = p.Sink.AddFrame(img.Pix)
		p.Renderer.Release(img)
		if err != nil {
			return fmt.Errorf("ошибка записи кадра %d: %w", frame, err)
		}

		if (frame+1)%p.Config.FPS == 0 || frame+1 == summary.Frames {
			fmt.Printf("[>] Кадр: %d/%d\n", frame+1, summary.Frames)
		}
	}

	if p.Config.ShowStats {
		p.report(summary, time.Since(startTime), renderTime, time.Since(renderStart))
	}
	return nil
}

func (p *FlightProject) report(summary PlanSummary, total, render, loop time.Duration) {
	fps := float64(summary.Frames) / total.Seconds()
	res := system.Snapshot()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Bake: %.3fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding + overlays: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Host: %s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), summary.BakeTime.Seconds(), render.Seconds(), (loop - render).Seconds(), fps, res,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Plan: %s | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f | RSS: %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.PlanPath),
		summary.Frames,
		total.Seconds(),
		render.Seconds(),
		fps,
		system.FormatBytes(res.ProcessRSS),
	)

	if err := appendLog(p.BenchmarkLog, logEntry); err != nil {
		log.Printf("[!] Не удалось записать %s: %v", p.BenchmarkLog, err)
	}
}

func appendLog(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
