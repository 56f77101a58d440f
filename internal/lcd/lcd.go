// Package lcd draws the explored map on a monochrome pixel display.
package lcd

import (
	"fmt"

	"maze-runner/internal/heading"
	"maze-runner/internal/maze"
	"maze-runner/internal/robot"
)

const (
	DefaultWidth  = 128
	DefaultHeight = 32
)

// Renderer lays the maze out north row first, one square of CellSize pixels
// per cell, anchored at the top-left pixel.
type Renderer struct {
	Width  int
	Height int
}

func (r Renderer) size() (int, int) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// CellSize returns the pixel pitch used for m, or 0 when the maze does not
// fit on the display at 4 pixels per cell.
func (r Renderer) CellSize(m *maze.Maze) int {
	w, h := r.size()
	cs := (w - 1) / m.Width()
	if s := (h - 1) / m.Height(); s < cs {
		cs = s
	}
	if cs < 4 {
		return 0
	}
	return cs
}

// Render clears the display and draws every recorded wall, a dot in each
// visited cell, hatching in dark cells and the robot at pos.
func (r Renderer) Render(d robot.Display, m *maze.Maze, pos maze.Pos, h heading.Direction) error {
	cs := r.CellSize(m)
	if cs == 0 {
		w, ht := r.size()
		return fmt.Errorf("lcd: %dx%d maze does not fit a %dx%d display", m.Width(), m.Height(), w, ht)
	}
	if err := d.ClearDisplay(); err != nil {
		return err
	}
	p := plotter{d: d}
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			cell := maze.Pos{X: x, Y: y}
			x0, y0 := origin(m, cell, cs)
			c := m.Cell(cell)
			if c.Walls[heading.North] {
				p.hline(x0, x0+cs, y0)
			}
			if c.Walls[heading.South] {
				p.hline(x0, x0+cs, y0+cs)
			}
			if c.Walls[heading.West] {
				p.vline(x0, y0, y0+cs)
			}
			if c.Walls[heading.East] {
				p.vline(x0+cs, y0, y0+cs)
			}
			if c.Dark {
				for i := 1; i < cs; i++ {
					for j := 1; j < cs; j++ {
						if (i+j)%3 == 0 {
							p.plot(x0+i, y0+j)
						}
					}
				}
			}
			if c.Visited && cell != pos {
				p.plot(x0+cs/2, y0+cs/2)
			}
		}
	}

	x0, y0 := origin(m, pos, cs)
	cx, cy := x0+cs/2, y0+cs/2
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			p.plot(cx+i, cy+j)
		}
	}
	// One pixel ahead of the body shows the heading.
	switch h {
	case heading.North:
		p.plot(cx, cy-2)
	case heading.East:
		p.plot(cx+2, cy)
	case heading.South:
		p.plot(cx, cy+2)
	case heading.West:
		p.plot(cx-2, cy)
	}
	if p.err != nil {
		return p.err
	}
	if f, ok := d.(robot.Flusher); ok {
		return f.Flush()
	}
	return nil
}

func origin(m *maze.Maze, p maze.Pos, cs int) (int, int) {
	return p.X * cs, (m.Height() - 1 - p.Y) * cs
}

// plotter keeps the first plot error so drawing code stays linear.
type plotter struct {
	d   robot.Display
	err error
}

func (p *plotter) plot(x, y int) {
	if p.err == nil {
		p.err = p.d.Plot(x, y)
	}
}

func (p *plotter) hline(x0, x1, y int) {
	for x := x0; x <= x1; x++ {
		p.plot(x, y)
	}
}

func (p *plotter) vline(x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		p.plot(x, y)
	}
}
