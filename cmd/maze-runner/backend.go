package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"maze-runner/internal/config"
	"maze-runner/internal/diag"
	"maze-runner/internal/maze"
	"maze-runner/internal/pibot"
	"maze-runner/internal/robot"
	"maze-runner/internal/sim"
	"maze-runner/internal/termdisplay"
	"maze-runner/internal/tone"
)

// backend is the drive and sensor side of the robot.
type backend struct {
	drive   robot.Drive
	sensors robot.Sensors
	leds    robot.LEDs
	closer  io.Closer
	// simBot is set for the simulator backend.
	simBot *sim.Robot
}

func (b *backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Hooks for tests.
var (
	openPiBot       = func(cfg pibot.Config) (*pibot.Bot, error) { return pibot.Open(cfg) }
	openTermDisplay = func(w, h int) (*termdisplay.Display, error) { return termdisplay.Open(w, h) }
	openTone        = func() (*tone.Buzzer, error) { return tone.Open() }
)

func openBackend(cfg config.Config, baseDir string) (*backend, error) {
	switch cfg.Backend {
	case config.BackendSim:
		return openSim(cfg, baseDir)
	case config.BackendPi:
		bot, err := openPiBot(piConfig(cfg.Pi))
		if err != nil {
			return nil, err
		}
		return &backend{drive: bot, sensors: bot, leds: bot, closer: bot}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func openSim(cfg config.Config, baseDir string) (*backend, error) {
	var (
		w   *sim.World
		err error
	)
	if cfg.Sim.World == "" {
		w, err = sim.OpenWorld(cfg.Maze.SizeX, cfg.Maze.SizeY)
	} else {
		path := cfg.Sim.World
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		var script sim.WorldScript
		script, err = sim.LoadWorldScript(path)
		if err != nil {
			return nil, fmt.Errorf("sim world %s: %w", path, err)
		}
		w, err = sim.NewWorld(script)
	}
	if err != nil {
		return nil, err
	}
	if w.Width() != cfg.Maze.SizeX || w.Height() != cfg.Maze.SizeY {
		return nil, fmt.Errorf("sim world is %dx%d but maze is %dx%d",
			w.Width(), w.Height(), cfg.Maze.SizeX, cfg.Maze.SizeY)
	}
	bot, err := sim.NewRobot(w, sim.Config{
		CellTicks:   cfg.Sim.CellTicks,
		WallReading: cfg.Sim.WallReading,
		OpenReading: cfg.Sim.OpenReading,
		DarkLight:   cfg.Sim.DarkLight,
		BrightLight: cfg.Sim.BrightLight,
		LineDark:    cfg.Sim.LineDark,
		LineBright:  cfg.Sim.LineBright,
		LineTicks:   cfg.Sim.LineTicks,
	}, maze.Pos{X: *cfg.Maze.StartX, Y: *cfg.Maze.StartY}, cfg.Maze.Heading)
	if err != nil {
		return nil, err
	}
	log.Printf("sim: %dx%d world ready", w.Width(), w.Height())
	return &backend{drive: bot, sensors: bot, simBot: bot}, nil
}

func piConfig(p config.PiConfig) pibot.Config {
	ch := func(c config.ADCChannel) pibot.Channel { return pibot.Channel{Addr: c.Addr, Input: c.Input} }
	out := pibot.Config{
		I2CBus:    p.I2CBus,
		Light:     ch(p.Light),
		LeftPWM:   p.LeftPWM,
		RightPWM:  p.RightPWM,
		PWMPeriod: p.PWMPeriod,
		LeftDir:   p.LeftDir,
		RightDir:  p.RightDir,
		Switches:  p.Switches,
		LEDs:      p.LEDs,
		MoveSpeed: p.MoveSpeed,
		MMPerSec:  p.MMPerSec,
		DegPerSec: p.DegPerSec,
	}
	for i := range out.IR {
		if i < len(p.IR) {
			out.IR[i] = ch(p.IR[i])
		}
	}
	for i := range out.Line {
		if i < len(p.Line) {
			out.Line[i] = ch(p.Line[i])
		}
	}
	return out
}

// outputs are the optional devices attached to the robot.
type outputs struct {
	closers []io.Closer
	// quit is closed when the user asks to stop from the terminal display;
	// nil without one.
	quit <-chan struct{}
}

func (o *outputs) Close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i].Close(); err != nil {
			log.Printf("maze-runner: close: %v", err)
		}
	}
}

// openOutputs attaches the enabled display and speaker to parts. The result
// must be closed even when err is set.
func openOutputs(cfg config.Config, parts *robot.Parts) (*outputs, error) {
	out := &outputs{}
	if cfg.Display.Enable {
		d, err := openTermDisplay(cfg.Display.Width, cfg.Display.Height)
		if err != nil {
			return out, err
		}
		out.closers = append(out.closers, d)
		out.quit = d.Done()
		parts.Display = d
		if parts.LEDs == nil {
			parts.LEDs = d
		}
	}
	if cfg.Audio.Enable {
		b, err := openTone()
		if err != nil {
			return out, err
		}
		out.closers = append(out.closers, b)
		parts.Buzzer = b
	}
	return out, nil
}

func openDiag(cfg config.DiagConfig) (diag.Sink, error) {
	if !cfg.Enable {
		return diag.Nop{}, nil
	}
	sinks := diag.Multi{diag.Log{}}
	if cfg.Serial.Path != "" {
		s, err := diag.NewSerial(cfg.Serial.Path, cfg.Serial.Baud)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.UDP.Dest != "" {
		u, err := diag.NewUDP(cfg.UDP.Dest)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, u)
	}
	return sinks, nil
}
