package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/fractal2video/internal/analyzer"
	"github.com/ivlev/fractal2video/internal/config"
	"github.com/ivlev/fractal2video/internal/director"
	"github.com/ivlev/fractal2video/internal/effects"
	"github.com/ivlev/fractal2video/internal/engine"
	"github.com/ivlev/fractal2video/internal/renderer"
	"github.com/ivlev/fractal2video/internal/system"
	"github.com/ivlev/fractal2video/internal/video"
)

var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	def := config.Default()

	planPtr := flag.String("plan", "", "Путь к YAML-плану полета (по умолчанию: самый свежий в input/plans/, иначе встроенный)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	widthPtr := flag.Int("width", def.Width, "Ширина")
	heightPtr := flag.Int("height", def.Height, "Высота")
	fpsPtr := flag.Int("fps", def.FPS, "FPS")
	bitratePtr := flag.Int("bitrate", def.BitRate, "Битрейт, бит/с")
	workersPtr := flag.Int("workers", system.DefaultWorkers(), "Потоки рендеринга")
	iterationsPtr := flag.Int("iterations", def.Iterations, "Максимум итераций фрактала")
	maxSamplesPtr := flag.Int("max-samples", def.MaxSamples, "Предел числа кадров траектории")
	maxFramesPtr := flag.Int("max-frames", def.MaxFrames, "Предел числа записываемых кадров (0 - без ограничения)")
	smoothingPtr := flag.Float64("smoothing", def.Smoothing, "Коэффициент сглаживания траектории [0, 1)")
	snapPtr := flag.Bool("snap-skipped", false, "Слишком короткие ходы переносят камеру в свою цель вместо пропуска")
	hudPtr := flag.Bool("hud", false, "Выводить номер кадра и координаты поверх видео")
	qrPtr := flag.Bool("qr", false, "Штамповать QR-код с координатами в углу кадра")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	dryRunPtr := flag.Bool("dry-run", false, "Только построить траекторию и вывести сводку")
	generatePtr := flag.Bool("generate-plan", false, "Сгенерировать план полета автопилотом и выйти")
	planOutputPtr := flag.String("plan-output", "", "Куда сохранить сгенерированный план (по умолчанию input/plans/)")
	legsPtr := flag.Int("autopilot-legs", def.AutopilotLegs, "Число ходов автопилота")
	zoomPtr := flag.Float64("autopilot-zoom", def.AutopilotZoom, "Множитель масштаба на каждый ход автопилота")
	speedPtr := flag.Float64("autopilot-speed", def.AutopilotSpeed, "Скорость ходов автопилота")

	flag.Parse()

	for _, d := range []string{director.DefaultPlansDir, "output"} {
		if err := os.MkdirAll(d, 0755); err != nil {
			log.Printf("[!] Не удалось создать директорию %s: %v", d, err)
		}
	}

	cfg := &config.Config{
		PlanPath:        *planPtr,
		OutputVideo:     *outputPtr,
		Width:           *widthPtr,
		Height:          *heightPtr,
		FPS:             *fpsPtr,
		BitRate:         *bitratePtr,
		Workers:         *workersPtr,
		Iterations:      *iterationsPtr,
		Escape:          def.Escape,
		MaxSamples:      *maxSamplesPtr,
		MaxFrames:       *maxFramesPtr,
		Smoothing:       *smoothingPtr,
		SnapSkippedLegs: *snapPtr,
		ShowHUD:         *hudPtr,
		ShowQR:          *qrPtr,
		ShowStats:       *statsPtr,
		DryRun:          *dryRunPtr,
		GeneratePlan:    *generatePtr,
		PlanOutput:      *planOutputPtr,
		AutopilotLegs:   *legsPtr,
		AutopilotZoom:   *zoomPtr,
		AutopilotSpeed:  *speedPtr,
		BuildVersion:    buildVersion,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rend := renderer.NewMandelbrotRenderer(cfg.Width, cfg.Height, cfg.Workers)
	rend.Iterations = cfg.Iterations
	rend.Escape = cfg.Escape

	if cfg.GeneratePlan {
		if err := generatePlan(ctx, cfg); err != nil {
			log.Fatalf("[-] Ошибка генерации плана: %v", err)
		}
		return
	}

	scenario, err := loadScenario(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки плана: %v", err)
	}

	if cfg.OutputVideo == "" {
		name := "builtin"
		if cfg.PlanPath != "" {
			name = strings.TrimSuffix(filepath.Base(cfg.PlanPath), filepath.Ext(cfg.PlanPath))
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", strings.ReplaceAll(name, " ", "_"), timestamp))
	}

	cfg.VideoEncoder = system.GetBestH264Encoder()
	if cfg.VideoEncoder != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
	}

	var chain effects.Chain
	if cfg.ShowHUD {
		chain = append(chain, effects.NewHUDEffect())
	}
	if cfg.ShowQR {
		chain = append(chain, effects.NewQREffect())
	}

	sink := video.NewFFmpegSink(video.SinkParams{
		Width:      cfg.Width,
		Height:     cfg.Height,
		FPS:        cfg.FPS,
		BitRate:    cfg.BitRate,
		Encoder:    cfg.VideoEncoder,
		OutputPath: cfg.OutputVideo,
	})

	project := engine.NewFlightProject(cfg, scenario, rend, sink, chain)

	if cfg.DryRun {
		summary, err := project.Plan()
		if err != nil {
			log.Fatalf("[-] Ошибка проекта: %v", err)
		}
		fmt.Printf("[*] %s\n", summary)
		fmt.Printf("[*] Траектория построена за %s\n", summary.BakeTime)
		return
	}

	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

func loadScenario(cfg *config.Config) (*director.Scenario, error) {
	if cfg.PlanPath == "" {
		latest, err := director.FindLatestScenario(director.DefaultPlansDir)
		if err != nil {
			fmt.Println("[*] План не найден, используется встроенный маршрут")
			return director.DefaultScenario(), nil
		}
		cfg.PlanPath = latest
		fmt.Printf("[*] Выбран план: %s\n", cfg.PlanPath)
	}
	return director.ReadScenario(cfg.PlanPath)
}

func generatePlan(ctx context.Context, cfg *config.Config) error {
	fmt.Println("[*] Режим генерации плана...")

	// Превью в четверть разрешения: для анализа деталей этого достаточно
	preview := renderer.NewMandelbrotRenderer(max(cfg.Width/4, 64), max(cfg.Height/4, 64), cfg.Workers)
	preview.Iterations = cfg.Iterations
	preview.Escape = cfg.Escape

	det, err := analyzer.NewDetector("detail")
	if err != nil {
		return err
	}

	pilot := director.NewAutopilot(preview, det)
	pilot.Legs = cfg.AutopilotLegs
	pilot.Zoom = cfg.AutopilotZoom
	pilot.Speed = cfg.AutopilotSpeed
	pilot.FrameInterval = cfg.FrameInterval()
	pilot.Options.SnapSkippedLegs = cfg.SnapSkippedLegs
	if cfg.MaxSamples > 0 {
		pilot.Options.MaxSamples = cfg.MaxSamples
	}

	start := director.DefaultScenario().Start
	if cfg.PlanPath != "" {
		base, err := director.ReadScenario(cfg.PlanPath)
		if err != nil {
			return err
		}
		start = base.Start
	}

	scenario, err := pilot.Generate(ctx, start)
	if err != nil {
		return err
	}

	outputPath := cfg.PlanOutput
	if outputPath == "" {
		outputPath = director.GeneratePlanPath(director.DefaultPlansDir)
	}
	// Убеждаемся, что директория существует
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию для плана: %w", err)
	}

	if err := director.WriteScenario(scenario, outputPath); err != nil {
		return err
	}

	fmt.Printf("[+++] Успех! План сохранен: %s (%d ходов)\n", outputPath, len(scenario.Moves))
	return nil
}
