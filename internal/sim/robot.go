package sim

import (
	"fmt"
	"sync"

	"maze-runner/internal/heading"
	"maze-runner/internal/maze"
	"maze-runner/internal/robot"
)

type Config struct {
	// CellTicks is the number of forward motor ticks needed to cross a cell.
	CellTicks   int
	WallReading int
	OpenReading int
	DarkLight   int
	BrightLight int
	// LineDark and LineBright are the floor sensor readings on and off a
	// cell boundary line.
	LineDark   int
	LineBright int
	// LineTicks is the number of forward ticks, the crossing tick included,
	// the boundary tape stays under the floor sensors. It is capped at
	// CellTicks-1 so every cell has at least one tick off the line.
	LineTicks int
}

func (c *Config) applyDefaults() {
	if c.CellTicks <= 0 {
		c.CellTicks = 5
	}
	if c.WallReading == 0 {
		c.WallReading = 400
	}
	if c.OpenReading == 0 {
		c.OpenReading = 20
	}
	if c.DarkLight == 0 {
		c.DarkLight = 100
	}
	if c.BrightLight == 0 {
		c.BrightLight = 900
	}
	if c.LineDark == 0 {
		c.LineDark = 50
	}
	if c.LineBright == 0 {
		c.LineBright = 900
	}
	if c.LineTicks <= 0 {
		c.LineTicks = 2
	}
	if c.LineTicks > c.CellTicks-1 {
		c.LineTicks = c.CellTicks - 1
	}
}

// Robot is a grid-level robot simulation. It implements robot.Drive and
// robot.Sensors. Quarter-turn rotations change the heading; smaller angles
// and straight nudges are absorbed without moving between cells.
type Robot struct {
	cfg   Config
	world *World

	mu       sync.Mutex
	pos      maze.Pos
	heading  heading.Direction
	ticks    int
	lineLeft int
	switches map[int]bool
	moves    int
	bumps    int
}

var (
	_ robot.Drive   = (*Robot)(nil)
	_ robot.Sensors = (*Robot)(nil)
)

func NewRobot(w *World, cfg Config, start maze.Pos, h heading.Direction) (*Robot, error) {
	if w == nil {
		return nil, fmt.Errorf("sim: world is nil")
	}
	if !w.Contains(start) {
		return nil, fmt.Errorf("sim: start %s outside the %dx%d world", start, w.width, w.height)
	}
	if !h.Valid() {
		return nil, fmt.Errorf("sim: invalid start heading %d", int(h))
	}
	if cfg.CellTicks == 1 {
		return nil, fmt.Errorf("sim: cell ticks must be >= 2 to leave the line behind")
	}
	cfg.applyDefaults()
	return &Robot{cfg: cfg, world: w, pos: start, heading: h, switches: map[int]bool{}}, nil
}

// Pose returns the robot's true cell and heading.
func (r *Robot) Pose() (maze.Pos, heading.Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos, r.heading
}

// Place teleports the robot, as when it is put back at the start by hand.
func (r *Robot) Place(p maze.Pos, h heading.Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos, r.heading = p, h
	r.ticks, r.lineLeft = 0, 0
}

// Moves is the number of cells crossed; Bumps the number of drives into a wall.
func (r *Robot) Moves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.moves
}

func (r *Robot) Bumps() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bumps
}

// PressSwitch latches switch n until the next ReadSwitch.
func (r *Robot) PressSwitch(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.switches[n] = true
}

func (r *Robot) SetMotors(left, right int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Stopping on the line leaves the tape under the sensors.
	if left == 0 && right == 0 {
		r.ticks = 0
		return nil
	}
	if left != right || left < 0 {
		return nil
	}
	if r.lineLeft > 0 {
		r.lineLeft--
	}
	r.ticks++
	if r.ticks < r.cfg.CellTicks {
		return nil
	}
	r.ticks = 0
	if r.world.Wall(r.pos, r.heading) {
		r.bumps++
		return nil
	}
	r.pos = r.pos.Step(r.heading)
	r.moves++
	r.lineLeft = r.cfg.LineTicks
	return nil
}

func (r *Robot) Forward(mm int) error  { return nil }
func (r *Robot) Backward(mm int) error { return nil }

func (r *Robot) Left(deg int) error {
	r.rotate(-deg)
	return nil
}

func (r *Robot) Right(deg int) error {
	r.rotate(deg)
	return nil
}

func (r *Robot) rotate(deg int) {
	if deg%90 != 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heading = heading.Absolute(r.heading, heading.Offset(deg/90))
}

func (r *Robot) ReadIR(s robot.IR) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var o heading.Offset
	switch s {
	case robot.IRLeft:
		o = heading.Left
	case robot.IRFront:
		o = heading.Front
	case robot.IRRight:
		o = heading.Right
	case robot.IRRear:
		o = heading.Rear
	default:
		if s < 0 || s >= robot.IRCount {
			return 0, fmt.Errorf("sim: no ir sensor %d", int(s))
		}
		return r.cfg.OpenReading, nil
	}
	if r.world.Wall(r.pos, heading.Absolute(r.heading, o)) {
		return r.cfg.WallReading, nil
	}
	return r.cfg.OpenReading, nil
}

func (r *Robot) ReadLine(ch robot.LineChannel) (int, error) {
	if ch != robot.LineLeft && ch != robot.LineRight {
		return 0, fmt.Errorf("sim: no line channel %d", int(ch))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lineLeft > 0 {
		return r.cfg.LineDark, nil
	}
	return r.cfg.LineBright, nil
}

func (r *Robot) ReadLight() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.world.Dark(r.pos) {
		return r.cfg.DarkLight, nil
	}
	return r.cfg.BrightLight, nil
}

func (r *Robot) ReadSwitch(n int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pressed := r.switches[n]
	delete(r.switches, n)
	return pressed, nil
}
