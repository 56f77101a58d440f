package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"maze-runner/internal/heading"
	"maze-runner/internal/nav"
)

const (
	BackendSim = "sim"
	BackendPi  = "pi"
)

type Config struct {
	Maze       MazeConfig       `yaml:"maze"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Motion     MotionConfig     `yaml:"motion"`
	Nest       NestConfig       `yaml:"nest"`
	Finish     FinishConfig     `yaml:"finish"`
	Backend    string           `yaml:"backend"`
	Sim        SimConfig        `yaml:"sim"`
	Pi         PiConfig         `yaml:"pi"`
	Display    DisplayConfig    `yaml:"display"`
	Audio      AudioConfig      `yaml:"audio"`
	Diag       DiagConfig       `yaml:"diag"`
	Web        WebConfig        `yaml:"web"`
}

type MazeConfig struct {
	SizeX int `yaml:"size_x"`
	SizeY int `yaml:"size_y"`
	// StartX and StartY are pointers so that an explicit 0 survives
	// defaulting.
	StartX       *int   `yaml:"start_x"`
	StartY       *int   `yaml:"start_y"`
	StartHeading string `yaml:"start_heading"`

	// Heading is StartHeading parsed by Load.
	Heading heading.Direction `yaml:"-"`
}

type ThresholdsConfig struct {
	Wall  int `yaml:"wall"`
	Crash int `yaml:"crash"`
	Light int `yaml:"light"`
	Line  int `yaml:"line"`
}

type MotionConfig struct {
	Speed      int           `yaml:"speed"`
	Tick       time.Duration `yaml:"tick"`
	Settle     time.Duration `yaml:"settle"`
	TurnSettle time.Duration `yaml:"turn_settle"`
	NudgeMM    int           `yaml:"nudge_mm"`
	NudgeDeg   int           `yaml:"nudge_deg"`
}

type NestConfig struct {
	Policy string `yaml:"policy"`

	Resolved nav.NestPolicy `yaml:"-"`
}

type FinishConfig struct {
	NoteHz        int `yaml:"note_hz"`
	NoteMS        int `yaml:"note_ms"`
	ConfirmSwitch int `yaml:"confirm_switch"`
}

type SimConfig struct {
	// World is a world script; empty means a maze with no interior walls.
	World       string `yaml:"world"`
	CellTicks   int    `yaml:"cell_ticks"`
	WallReading int    `yaml:"wall_reading"`
	OpenReading int    `yaml:"open_reading"`
	DarkLight   int    `yaml:"dark_light"`
	BrightLight int    `yaml:"bright_light"`
	LineDark    int    `yaml:"line_dark"`
	LineBright  int    `yaml:"line_bright"`
	// LineTicks is how many forward ticks the boundary tape stays visible.
	LineTicks int `yaml:"line_ticks"`
	// AutoConfirm presses finish.confirm_switch as soon as a run finishes,
	// so the simulation explores again without anyone at the keyboard.
	AutoConfirm bool `yaml:"auto_confirm"`
}

// ADCChannel names one ADS1115 input.
type ADCChannel struct {
	Addr  uint16 `yaml:"addr"`
	Input int    `yaml:"input"`
}

type PiConfig struct {
	I2CBus    string        `yaml:"i2c_bus"`
	IR        []ADCChannel  `yaml:"ir"`
	Light     ADCChannel    `yaml:"light"`
	Line      []ADCChannel  `yaml:"line"`
	LeftPWM   int           `yaml:"left_pwm"`
	RightPWM  int           `yaml:"right_pwm"`
	PWMPeriod time.Duration `yaml:"pwm_period"`
	LeftDir   int           `yaml:"left_dir"`
	RightDir  int           `yaml:"right_dir"`
	Switches  []int         `yaml:"switches"`
	LEDs      []int         `yaml:"leds"`
	MoveSpeed int           `yaml:"move_speed"`
	MMPerSec  float64       `yaml:"mm_per_sec"`
	DegPerSec float64       `yaml:"deg_per_sec"`
}

type DisplayConfig struct {
	Enable bool `yaml:"enable"`
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
}

type AudioConfig struct {
	Enable bool `yaml:"enable"`
}

type DiagConfig struct {
	Enable bool             `yaml:"enable"`
	Serial DiagSerialConfig `yaml:"serial"`
	UDP    DiagUDPConfig    `yaml:"udp"`
}

type DiagSerialConfig struct {
	// Path is a serial device such as /dev/rfcomm0; empty disables it.
	Path string `yaml:"path"`
	Baud int    `yaml:"baud"`
}

type DiagUDPConfig struct {
	Dest string `yaml:"dest"`
}

type WebConfig struct {
	// Listen is the status server address; empty disables it.
	Listen string `yaml:"listen"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func intPtr(v int) *int { return &v }

func (cfg *Config) applyDefaults() {
	if cfg.Maze.SizeX == 0 {
		cfg.Maze.SizeX = 4
	}
	if cfg.Maze.SizeY == 0 {
		cfg.Maze.SizeY = 4
	}
	if cfg.Maze.StartX == nil {
		cfg.Maze.StartX = intPtr(1)
	}
	if cfg.Maze.StartY == nil {
		cfg.Maze.StartY = intPtr(0)
	}
	if cfg.Maze.StartHeading == "" {
		cfg.Maze.StartHeading = "north"
	}

	if cfg.Thresholds.Wall <= 0 {
		cfg.Thresholds.Wall = 150
	}
	if cfg.Thresholds.Crash <= 0 {
		cfg.Thresholds.Crash = 600
	}
	if cfg.Thresholds.Light <= 0 {
		cfg.Thresholds.Light = 500
	}
	if cfg.Thresholds.Line <= 0 {
		cfg.Thresholds.Line = 200
	}

	if cfg.Motion.Speed == 0 {
		cfg.Motion.Speed = 20
	}
	if cfg.Motion.Tick <= 0 {
		cfg.Motion.Tick = 20 * time.Millisecond
	}
	if cfg.Motion.Settle == 0 {
		cfg.Motion.Settle = 100 * time.Millisecond
	}
	if cfg.Motion.TurnSettle == 0 {
		cfg.Motion.TurnSettle = 250 * time.Millisecond
	}
	if cfg.Motion.NudgeMM == 0 {
		cfg.Motion.NudgeMM = 50
	}
	if cfg.Motion.NudgeDeg == 0 {
		cfg.Motion.NudgeDeg = 30
	}

	if cfg.Nest.Policy == "" {
		cfg.Nest.Policy = nav.NestFirst.String()
	}
	if cfg.Finish.NoteHz == 0 {
		cfg.Finish.NoteHz = 1200
	}
	if cfg.Finish.NoteMS == 0 {
		cfg.Finish.NoteMS = 200
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendSim
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	// Simulator defaults (safe even if the Pi backend is selected).
	if cfg.Sim.CellTicks <= 0 {
		cfg.Sim.CellTicks = 5
	}
	if cfg.Sim.WallReading == 0 {
		cfg.Sim.WallReading = 400
	}
	if cfg.Sim.OpenReading == 0 {
		cfg.Sim.OpenReading = 20
	}
	if cfg.Sim.DarkLight == 0 {
		cfg.Sim.DarkLight = 100
	}
	if cfg.Sim.BrightLight == 0 {
		cfg.Sim.BrightLight = 900
	}
	if cfg.Sim.LineDark == 0 {
		cfg.Sim.LineDark = 50
	}
	if cfg.Sim.LineBright == 0 {
		cfg.Sim.LineBright = 900
	}
	if cfg.Sim.LineTicks <= 0 {
		cfg.Sim.LineTicks = 2
	}

	if cfg.Pi.I2CBus == "" {
		cfg.Pi.I2CBus = "/dev/i2c-1"
	}
	if cfg.Pi.PWMPeriod <= 0 {
		cfg.Pi.PWMPeriod = time.Millisecond
	}
	if cfg.Pi.MoveSpeed <= 0 {
		cfg.Pi.MoveSpeed = 40
	}

	if cfg.Display.Width <= 0 {
		cfg.Display.Width = 128
	}
	if cfg.Display.Height <= 0 {
		cfg.Display.Height = 32
	}
	if cfg.Diag.Serial.Baud <= 0 {
		cfg.Diag.Serial.Baud = 115200
	}
}

func (cfg *Config) validate() error {
	m := &cfg.Maze
	if m.SizeX < 0 {
		return fmt.Errorf("maze.size_x must be > 0")
	}
	if m.SizeY < 0 {
		return fmt.Errorf("maze.size_y must be > 0")
	}
	if *m.StartX < 0 || *m.StartX >= m.SizeX {
		return fmt.Errorf("maze.start_x must be in [0,%d)", m.SizeX)
	}
	if *m.StartY < 0 || *m.StartY >= m.SizeY {
		return fmt.Errorf("maze.start_y must be in [0,%d)", m.SizeY)
	}
	h, err := heading.Parse(m.StartHeading)
	if err != nil {
		return fmt.Errorf("maze.start_heading: %w", err)
	}
	m.Heading = h

	if cfg.Motion.Speed < 0 || cfg.Motion.Speed > 100 {
		return fmt.Errorf("motion.speed must be in [1,100]")
	}
	if cfg.Motion.Settle < 0 {
		return fmt.Errorf("motion.settle must be >= 0")
	}
	if cfg.Motion.TurnSettle < 0 {
		return fmt.Errorf("motion.turn_settle must be >= 0")
	}

	p, err := nav.ParseNestPolicy(cfg.Nest.Policy)
	if err != nil {
		return fmt.Errorf("nest.policy: %w", err)
	}
	cfg.Nest.Resolved = p

	if cfg.Finish.NoteHz < 0 {
		return fmt.Errorf("finish.note_hz must be >= 0")
	}
	if cfg.Finish.NoteMS < 0 {
		return fmt.Errorf("finish.note_ms must be >= 0")
	}
	if cfg.Finish.ConfirmSwitch < 0 {
		return fmt.Errorf("finish.confirm_switch must be >= 0")
	}

	switch cfg.Backend {
	case BackendSim:
		if cfg.Sim.WallReading <= cfg.Thresholds.Wall {
			return fmt.Errorf("sim.wall_reading must be > thresholds.wall (%d)", cfg.Thresholds.Wall)
		}
		if cfg.Sim.OpenReading > cfg.Thresholds.Wall {
			return fmt.Errorf("sim.open_reading must be <= thresholds.wall (%d)", cfg.Thresholds.Wall)
		}
		if cfg.Sim.DarkLight >= cfg.Thresholds.Light {
			return fmt.Errorf("sim.dark_light must be < thresholds.light (%d)", cfg.Thresholds.Light)
		}
		if cfg.Sim.BrightLight < cfg.Thresholds.Light {
			return fmt.Errorf("sim.bright_light must be >= thresholds.light (%d)", cfg.Thresholds.Light)
		}
		if cfg.Sim.LineDark >= cfg.Thresholds.Line {
			return fmt.Errorf("sim.line_dark must be < thresholds.line (%d)", cfg.Thresholds.Line)
		}
		if cfg.Sim.LineBright < cfg.Thresholds.Line {
			return fmt.Errorf("sim.line_bright must be >= thresholds.line (%d)", cfg.Thresholds.Line)
		}
		if cfg.Sim.CellTicks < 2 {
			return fmt.Errorf("sim.cell_ticks must be >= 2")
		}
	case BackendPi:
		if err := cfg.Pi.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("backend must be %q or %q", BackendSim, BackendPi)
	}

	if cfg.Diag.Serial.Path != "" && !cfg.Diag.Enable {
		return fmt.Errorf("diag.serial.path requires diag.enable")
	}
	if cfg.Diag.UDP.Dest != "" && !cfg.Diag.Enable {
		return fmt.Errorf("diag.udp.dest requires diag.enable")
	}
	return nil
}

func (p PiConfig) validate() error {
	if len(p.IR) != 8 {
		return fmt.Errorf("pi.ir must list 8 channels, got %d", len(p.IR))
	}
	if len(p.Line) != 2 {
		return fmt.Errorf("pi.line must list 2 channels, got %d", len(p.Line))
	}
	chans := append(append([]ADCChannel{p.Light}, p.IR...), p.Line...)
	for _, ch := range chans {
		if ch.Addr == 0 {
			return fmt.Errorf("pi: every adc channel needs an addr")
		}
		if ch.Input < 0 || ch.Input > 3 {
			return fmt.Errorf("pi: adc input %d out of range [0,3]", ch.Input)
		}
	}
	if p.LeftPWM == p.RightPWM {
		return fmt.Errorf("pi.left_pwm and pi.right_pwm must differ")
	}
	if p.MMPerSec <= 0 {
		return fmt.Errorf("pi.mm_per_sec is required")
	}
	if p.DegPerSec <= 0 {
		return fmt.Errorf("pi.deg_per_sec is required")
	}
	if p.MoveSpeed > 100 {
		return fmt.Errorf("pi.move_speed must be <= 100")
	}
	return nil
}
