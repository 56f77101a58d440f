package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"maze-runner/internal/config"
	"maze-runner/internal/explore"
	"maze-runner/internal/lcd"
	"maze-runner/internal/maze"
	"maze-runner/internal/nav"
	"maze-runner/internal/robot"
	"maze-runner/internal/web"
)

const configEnv = "MAZE_RUNNER_CONFIG"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	defaultConfig := "./configs/maze-runner.yaml"
	if v := os.Getenv(configEnv); v != "" {
		defaultConfig = v
	}
	var configPath string
	flag.StringVar(&configPath, "config", defaultConfig, "Path to YAML config (default from $"+configEnv+")")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logs := web.NewLogBuffer(2000)
	if cfg.Display.Enable {
		// The terminal belongs to the LCD.
		log.SetOutput(logs)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, logs))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, filepath.Dir(configPath), logs); err != nil {
		log.Fatalf("maze-runner: %v", err)
	}
}

// run wires the configured parts together and explores until ctx is done or
// the hardware fails. baseDir resolves relative paths in cfg.
func run(ctx context.Context, cfg config.Config, baseDir string, logs *web.LogBuffer) error {
	hw, err := openBackend(cfg, baseDir)
	if err != nil {
		return err
	}
	defer hw.Close()

	parts := robot.Parts{Drive: hw.drive, Sensors: hw.sensors, LEDs: hw.leds}
	out, err := openOutputs(cfg, &parts)
	defer out.Close()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-out.quit:
			log.Printf("maze-runner: quit from display")
			cancel()
		case <-ctx.Done():
		}
	}()

	sink, err := openDiag(cfg.Diag)
	if err != nil {
		return err
	}
	defer sink.Close()

	status := web.NewStatus()
	status.SetBackend(cfg.Backend)

	observe := status.Set
	if hw.simBot != nil && cfg.Sim.AutoConfirm {
		observe = func(s explore.Snapshot) {
			status.Set(s)
			if s.State == explore.Finish {
				// Carry the robot back, then confirm.
				hw.simBot.Place(maze.Pos{X: *cfg.Maze.StartX, Y: *cfg.Maze.StartY}, cfg.Maze.Heading)
				hw.simBot.PressSwitch(cfg.Finish.ConfirmSwitch)
			}
		}
	}

	ctl, err := explore.New(exploreConfig(cfg), parts,
		explore.WithObserver(observe),
		explore.WithDiagnostics(sink),
	)
	if err != nil {
		return err
	}

	if cfg.Web.Listen != "" {
		go func() {
			if err := web.Serve(ctx, cfg.Web.Listen, status, logs); err != nil && ctx.Err() == nil {
				log.Printf("web: server stopped: %v", err)
			}
		}()
		log.Printf("web: listening on %s", cfg.Web.Listen)
	}

	log.Printf("maze-runner starting backend=%s maze=%dx%d start=(%d,%d) heading=%s nest=%s",
		cfg.Backend, cfg.Maze.SizeX, cfg.Maze.SizeY, *cfg.Maze.StartX, *cfg.Maze.StartY,
		cfg.Maze.Heading, cfg.Nest.Resolved)

	err = ctl.Run(ctx, cfg.Motion.Tick)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		log.Printf("maze-runner stopping")
		return nil
	}
	return err
}

func exploreConfig(cfg config.Config) explore.Config {
	return explore.Config{
		Width:         cfg.Maze.SizeX,
		Height:        cfg.Maze.SizeY,
		Start:         maze.Pos{X: *cfg.Maze.StartX, Y: *cfg.Maze.StartY},
		StartHeading:  cfg.Maze.Heading,
		Speed:         cfg.Motion.Speed,
		LineThreshold: cfg.Thresholds.Line,
		Settle:        cfg.Motion.Settle,
		Policy: nav.Config{
			WallThreshold:  cfg.Thresholds.Wall,
			LightThreshold: cfg.Thresholds.Light,
			Nest:           cfg.Nest.Resolved,
			TurnSettle:     cfg.Motion.TurnSettle,
		},
		Avoid: nav.Avoider{
			Threshold: cfg.Thresholds.Crash,
			NudgeMM:   cfg.Motion.NudgeMM,
			NudgeDeg:  cfg.Motion.NudgeDeg,
		},
		ConfirmSwitch: cfg.Finish.ConfirmSwitch,
		FinishNoteHz:  cfg.Finish.NoteHz,
		FinishNoteLen: time.Duration(cfg.Finish.NoteMS) * time.Millisecond,
		Map:           lcd.Renderer{Width: cfg.Display.Width, Height: cfg.Display.Height},
	}
}
