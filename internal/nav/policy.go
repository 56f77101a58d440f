// Package nav decides what the robot records and where it turns.
//
// The turn policy is left-hand wall following: prefer left, then straight
// on, then right, and turn around in a dead end. A cell recognised as the
// nest is always a turnaround.
package nav

import (
	"fmt"
	"strings"
	"time"

	"maze-runner/internal/heading"
	"maze-runner/internal/maze"
	"maze-runner/internal/robot"
)

var sleep = time.Sleep

// NestPolicy selects what happens when a second dark cell is found.
type NestPolicy int

const (
	// NestFirst keeps the first dark cell of a run.
	NestFirst NestPolicy = iota
	// NestLatest moves the nest to every newly detected dark cell.
	NestLatest
)

func (n NestPolicy) String() string {
	if n == NestLatest {
		return "latest"
	}
	return "first"
}

func ParseNestPolicy(s string) (NestPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return NestFirst, nil
	case "latest":
		return NestLatest, nil
	}
	return NestFirst, fmt.Errorf("unknown nest policy %q", s)
}

type Config struct {
	// WallThreshold is the IR reading above which a wall is recorded.
	WallThreshold int
	// LightThreshold is the light reading below which a cell is dark.
	LightThreshold int
	Nest           NestPolicy
	// TurnSettle is waited before and after a half turn.
	TurnSettle time.Duration
}

// Context is the mutable state of one exploration run. It is owned by the
// controller and handed to the policy explicitly.
type Context struct {
	Pos     maze.Pos
	Heading heading.Direction
	// Visited counts distinct visited cells.
	Visited int
	Nest    maze.Pos
	HasNest bool
}

// AtNest reports whether the current cell is the recorded nest.
func (c *Context) AtNest() bool {
	return c.HasNest && c.Nest == c.Pos
}

type Turn int

const (
	TurnNone Turn = iota
	TurnLeft
	TurnRight
	TurnAround
)

func (t Turn) String() string {
	switch t {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	case TurnAround:
		return "around"
	default:
		return "none"
	}
}

// Reason names the branch of the policy that produced a decision.
type Reason int

const (
	ReasonNest Reason = iota
	ReasonLeftOpen
	ReasonFrontOpen
	ReasonRightOpen
	ReasonDeadEnd
)

func (r Reason) String() string {
	switch r {
	case ReasonNest:
		return "nest"
	case ReasonLeftOpen:
		return "left open"
	case ReasonFrontOpen:
		return "front open"
	case ReasonRightOpen:
		return "right open"
	default:
		return "dead end"
	}
}

type Decision struct {
	Turn   Turn
	Reason Reason
	// Heading is the absolute direction after the turn.
	Heading heading.Direction
}

type Policy struct {
	cfg Config
}

func New(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// ReadWalls reads the left, front, right and rear sensors and maps them onto
// absolute wall slots for heading h.
func (p *Policy) ReadWalls(s robot.Sensors, h heading.Direction) (maze.Walls, error) {
	var w maze.Walls
	for _, o := range heading.Offsets {
		v, err := s.ReadIR(robot.IRFor(o))
		if err != nil {
			return maze.Walls{}, fmt.Errorf("nav: read %s ir: %w", o, err)
		}
		w[heading.Absolute(h, o)] = v > p.cfg.WallThreshold
	}
	return w, nil
}

// ReadDark reports whether the ambient light is below the threshold.
func (p *Policy) ReadDark(s robot.Sensors) (dark bool, level int, err error) {
	level, err = s.ReadLight()
	if err != nil {
		return false, 0, fmt.Errorf("nav: read light: %w", err)
	}
	return level < p.cfg.LightThreshold, level, nil
}

// ObserveNest records the current cell as the nest when it is dark, subject
// to the nest policy. It reports whether the nest changed.
func (p *Policy) ObserveNest(c *Context, dark bool) bool {
	if !dark {
		return false
	}
	if c.HasNest && (p.cfg.Nest == NestFirst || c.Nest == c.Pos) {
		return false
	}
	c.Nest = c.Pos
	c.HasNest = true
	return true
}

// Decide applies the turn priorities to the known walls of the current cell.
func Decide(w maze.Walls, h heading.Direction, atNest bool) Decision {
	rear := heading.Absolute(h, heading.Rear)
	if atNest {
		return Decision{Turn: TurnAround, Reason: ReasonNest, Heading: rear}
	}
	if left := heading.Absolute(h, heading.Left); !w[left] {
		return Decision{Turn: TurnLeft, Reason: ReasonLeftOpen, Heading: left}
	}
	if !w[h] {
		return Decision{Turn: TurnNone, Reason: ReasonFrontOpen, Heading: h}
	}
	if right := heading.Absolute(h, heading.Right); !w[right] {
		return Decision{Turn: TurnRight, Reason: ReasonRightOpen, Heading: right}
	}
	return Decision{Turn: TurnAround, Reason: ReasonDeadEnd, Heading: rear}
}

// Execute issues the physical turn for d.
func (p *Policy) Execute(drv robot.Drive, s robot.Sensors, d Decision) error {
	switch d.Turn {
	case TurnLeft:
		return drv.Left(90)
	case TurnRight:
		return drv.Right(90)
	case TurnAround:
		return p.turnAround(drv, s)
	}
	return nil
}

// turnAround spins 180 degrees away from the closer side wall.
func (p *Policy) turnAround(drv robot.Drive, s robot.Sensors) error {
	sleep(p.cfg.TurnSettle)
	left, err := s.ReadIR(robot.IRLeft)
	if err != nil {
		return fmt.Errorf("nav: read left ir: %w", err)
	}
	right, err := s.ReadIR(robot.IRRight)
	if err != nil {
		return fmt.Errorf("nav: read right ir: %w", err)
	}
	if left > right {
		err = drv.Right(180)
	} else {
		err = drv.Left(180)
	}
	if err != nil {
		return err
	}
	sleep(p.cfg.TurnSettle)
	return nil
}
