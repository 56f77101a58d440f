// Package explore runs the maze exploration state machine.
//
// A Controller owns the maze map and the exploration context. Each Tick runs
// the handler of the current state once; hardware access goes through the
// robot capability interface and decisions through package nav. A
// Controller is not safe for concurrent use: other goroutines observe it
// through the snapshots handed to an Observer.
package explore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"maze-runner/internal/heading"
	"maze-runner/internal/lcd"
	"maze-runner/internal/maze"
	"maze-runner/internal/nav"
	"maze-runner/internal/robot"
)

var sleep = time.Sleep

type State int

const (
	Start State = iota
	Detect
	Turn
	Drive
	Finish
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Detect:
		return "detect"
	case Turn:
		return "turn"
	case Drive:
		return "drive"
	case Finish:
		return "finish"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Config struct {
	Width  int
	Height int
	// Start and StartHeading are restored on every entry to Start.
	Start        maze.Pos
	StartHeading heading.Direction

	// Speed is the wheel speed commanded while driving between cells.
	Speed int
	// LineThreshold is the floor reading below which a boundary line is seen.
	LineThreshold int
	// Settle is waited before every state transition.
	Settle time.Duration

	Policy nav.Config
	// Avoid is applied every tick in Detect and Drive. A zero Threshold
	// disables it.
	Avoid nav.Avoider

	ConfirmSwitch int
	FinishNoteHz  int
	FinishNoteLen time.Duration

	Map lcd.Renderer
}

// Diagnostics receives free-form progress lines. diag.Sink implements it.
type Diagnostics interface {
	Printf(format string, args ...any)
}

type nopDiag struct{}

func (nopDiag) Printf(string, ...any) {}

type Option func(*Controller)

// WithObserver registers fn to receive a snapshot after every transition.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) { c.observer = fn }
}

func WithDiagnostics(d Diagnostics) Option {
	return func(c *Controller) {
		if d != nil {
			c.diag = d
		}
	}
}

type Controller struct {
	cfg    Config
	bot    robot.Robot
	policy *nav.Policy
	maze   *maze.Maze

	state     State
	ctx       nav.Context
	walls     maze.Walls
	runID     string
	announced bool
	// armed is set once Drive has read the floor off the line; a crossing
	// only counts after that.
	armed bool
	ticks uint64

	diag     Diagnostics
	observer func(Snapshot)
}

func New(cfg Config, bot robot.Robot, opts ...Option) (*Controller, error) {
	if bot == nil {
		return nil, fmt.Errorf("explore: robot is nil")
	}
	m, err := maze.New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}
	if !m.Contains(cfg.Start) {
		return nil, fmt.Errorf("explore: start %s outside the %dx%d maze", cfg.Start, cfg.Width, cfg.Height)
	}
	if !cfg.StartHeading.Valid() {
		return nil, fmt.Errorf("explore: invalid start heading %d", int(cfg.StartHeading))
	}
	if cfg.Map.CellSize(m) == 0 {
		return nil, fmt.Errorf("explore: %dx%d maze does not fit the map display", cfg.Width, cfg.Height)
	}
	c := &Controller{
		cfg:    cfg,
		bot:    bot,
		policy: nav.New(cfg.Policy),
		maze:   m,
		state:  Start,
		diag:   nopDiag{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Controller) State() State { return c.state }

// Run ticks the controller every period until ctx is done or a tick fails.
// Cancellation is only observed between ticks; a settling delay in progress
// always completes.
func (c *Controller) Run(ctx context.Context, period time.Duration) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		if err := c.Tick(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Tick runs obstacle correction (in Detect and Drive) and the current
// state's handler once.
func (c *Controller) Tick() error {
	c.ticks++
	if c.state == Detect || c.state == Drive {
		if err := c.correct(); err != nil {
			return fmt.Errorf("explore: %s: %w", c.state, err)
		}
	}
	var err error
	switch c.state {
	case Start:
		err = c.start()
	case Detect:
		err = c.detect()
	case Turn:
		err = c.turn()
	case Drive:
		err = c.drive()
	case Finish:
		err = c.finish()
	}
	if err != nil {
		return fmt.Errorf("explore: %s: %w", c.state, err)
	}
	return nil
}

func (c *Controller) transition(next State) {
	sleep(c.cfg.Settle)
	c.state = next
	switch next {
	case Finish:
		c.announced = false
	case Drive:
		c.armed = false
	}
	if c.observer != nil {
		c.observer(c.Snapshot())
	}
}

func (c *Controller) correct() error {
	if c.cfg.Avoid.Threshold <= 0 {
		return nil
	}
	corr, err := c.cfg.Avoid.Correct(c.bot, c.bot, c.bot)
	if err != nil {
		return err
	}
	if corr.Any() {
		c.diag.Printf("correction at %s: %+v", c.ctx.Pos, corr)
	}
	return nil
}

func (c *Controller) start() error {
	c.maze.Reset()
	c.ctx = nav.Context{Pos: c.cfg.Start, Heading: c.cfg.StartHeading}
	if c.maze.MarkVisited(c.ctx.Pos) {
		c.ctx.Visited = 1
	}
	c.walls = c.maze.Walls(c.ctx.Pos)
	c.runID = uuid.NewString()
	log.Printf("explore: run %s starting at %s facing %s", c.runID, c.ctx.Pos, c.ctx.Heading)
	c.diag.Printf("run %s start %s %s", c.runID, c.ctx.Pos, c.ctx.Heading)
	if err := c.render(); err != nil {
		return err
	}
	c.transition(Detect)
	return nil
}

func (c *Controller) detect() error {
	if c.ctx.Visited >= c.maze.Len() {
		c.transition(Finish)
		return nil
	}
	w, err := c.policy.ReadWalls(c.bot, c.ctx.Heading)
	if err != nil {
		return err
	}
	c.maze.RecordWalls(c.ctx.Pos, w)
	c.walls = c.maze.Walls(c.ctx.Pos)

	dark, level, err := c.policy.ReadDark(c.bot)
	if err != nil {
		return err
	}
	if dark {
		c.maze.MarkDark(c.ctx.Pos)
		if c.policy.ObserveNest(&c.ctx, dark) {
			c.diag.Printf("nest at %s (light %d)", c.ctx.Nest, level)
		}
	}
	c.diag.Printf("cell %s walls %s light %d", c.ctx.Pos, wallString(c.walls), level)
	c.transition(Turn)
	return nil
}

func (c *Controller) turn() error {
	d := nav.Decide(c.walls, c.ctx.Heading, c.ctx.AtNest())
	if err := c.policy.Execute(c.bot, c.bot, d); err != nil {
		return err
	}
	c.diag.Printf("turn %s (%s) now facing %s", d.Turn, d.Reason, d.Heading)
	c.ctx.Heading = d.Heading
	c.transition(Drive)
	return nil
}

func (c *Controller) drive() error {
	if err := c.bot.SetMotors(c.cfg.Speed, c.cfg.Speed); err != nil {
		return err
	}
	crossed := false
	for _, ch := range []robot.LineChannel{robot.LineLeft, robot.LineRight} {
		v, err := c.bot.ReadLine(ch)
		if err != nil {
			return err
		}
		if v < c.cfg.LineThreshold {
			crossed = true
		}
	}
	if !crossed {
		c.armed = true
		return nil
	}
	if !c.armed {
		// Still over the line the last crossing stopped on.
		return nil
	}
	if err := c.bot.SetMotors(0, 0); err != nil {
		return err
	}
	c.ctx.Pos = c.ctx.Pos.Step(c.ctx.Heading)
	if c.maze.MarkVisited(c.ctx.Pos) {
		c.ctx.Visited++
	}
	c.walls = c.maze.Walls(c.ctx.Pos)
	c.diag.Printf("entered %s visited %d/%d", c.ctx.Pos, c.ctx.Visited, c.maze.Len())
	if err := c.render(); err != nil {
		return err
	}
	c.transition(Detect)
	return nil
}

func (c *Controller) finish() error {
	if !c.announced {
		if err := c.bot.SetMotors(0, 0); err != nil {
			return err
		}
		if c.cfg.FinishNoteHz > 0 {
			if err := c.bot.PlayNote(c.cfg.FinishNoteHz, c.cfg.FinishNoteLen); err != nil {
				return err
			}
		}
		c.announced = true
		log.Printf("explore: run %s finished, visited %d/%d cells", c.runID, c.ctx.Visited, c.maze.Len())
		c.diag.Printf("finish %d/%d", c.ctx.Visited, c.maze.Len())
	}
	pressed, err := c.bot.ReadSwitch(c.cfg.ConfirmSwitch)
	if err != nil {
		return err
	}
	if pressed {
		c.transition(Start)
	}
	return nil
}

func (c *Controller) render() error {
	return c.cfg.Map.Render(c.bot, c.maze, c.ctx.Pos, c.ctx.Heading)
}

// wallString renders walls as "NE.W" style flags.
func wallString(w maze.Walls) string {
	b := []byte("....")
	for d, set := range w {
		if set {
			b[d] = "NESW"[d]
		}
	}
	return string(b)
}
