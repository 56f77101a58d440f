// Package maze holds the robot's map of a fixed-size grid maze.
//
// Coordinates grow eastwards (X) and northwards (Y): (0,0) is the south-west
// corner. Walls are stored per cell face and are only ever learned by
// observation, except for the outer boundary which is set on Reset. A wall
// recorded on one face is not copied to the neighbouring cell.
package maze

import (
	"fmt"
	"strings"

	"maze-runner/internal/heading"
)

// Pos addresses a cell.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Step returns the neighbouring position in direction d. The result may lie
// outside the grid.
func (p Pos) Step(d heading.Direction) Pos {
	switch d {
	case heading.North:
		return Pos{p.X, p.Y + 1}
	case heading.East:
		return Pos{p.X + 1, p.Y}
	case heading.South:
		return Pos{p.X, p.Y - 1}
	case heading.West:
		return Pos{p.X - 1, p.Y}
	}
	return p
}

// Walls is indexed by heading.Direction.
type Walls [heading.Count]bool

type Cell struct {
	Walls   Walls `json:"walls"`
	Visited bool  `json:"visited"`
	Dark    bool  `json:"dark"`
}

// OutOfRangeError is the panic value for any access outside the grid. It
// signals a defect in the caller, never an environmental condition.
type OutOfRangeError struct {
	Pos           Pos
	Width, Height int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("maze: position %s outside %dx%d grid", e.Pos, e.Width, e.Height)
}

type Maze struct {
	width  int
	height int
	cells  []Cell
}

// New returns a reset maze of the given extent.
func New(width, height int) (*Maze, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("maze: invalid size %dx%d", width, height)
	}
	m := &Maze{width: width, height: height, cells: make([]Cell, width*height)}
	m.Reset()
	return m, nil
}

func (m *Maze) Width() int  { return m.width }
func (m *Maze) Height() int { return m.height }

// Len is the total number of cells.
func (m *Maze) Len() int { return len(m.cells) }

func (m *Maze) Contains(p Pos) bool {
	return p.X >= 0 && p.X < m.width && p.Y >= 0 && p.Y < m.height
}

func (m *Maze) index(p Pos) int {
	if !m.Contains(p) {
		panic(&OutOfRangeError{Pos: p, Width: m.width, Height: m.height})
	}
	return p.Y*m.width + p.X
}

// Reset clears all knowledge and re-applies the boundary walls.
func (m *Maze) Reset() {
	for i := range m.cells {
		m.cells[i] = Cell{}
	}
	for x := 0; x < m.width; x++ {
		m.cells[m.index(Pos{x, 0})].Walls[heading.South] = true
		m.cells[m.index(Pos{x, m.height - 1})].Walls[heading.North] = true
	}
	for y := 0; y < m.height; y++ {
		m.cells[m.index(Pos{0, y})].Walls[heading.West] = true
		m.cells[m.index(Pos{m.width - 1, y})].Walls[heading.East] = true
	}
}

// RecordWall overwrites one wall slot of the cell at p. Faces on the outer
// boundary stay set whatever is recorded.
func (m *Maze) RecordWall(p Pos, d heading.Direction, present bool) {
	if !d.Valid() {
		panic(fmt.Sprintf("maze: invalid direction %d", int(d)))
	}
	i := m.index(p)
	if !present && m.Boundary(p, d) {
		return
	}
	m.cells[i].Walls[d] = present
}

// RecordWalls records all four wall slots of the cell at p.
func (m *Maze) RecordWalls(p Pos, w Walls) {
	for d := heading.North; d <= heading.West; d++ {
		m.RecordWall(p, d, w[d])
	}
}

// Boundary reports whether face d of p lies on the outer edge of the grid.
func (m *Maze) Boundary(p Pos, d heading.Direction) bool {
	return !m.Contains(p.Step(d))
}

func (m *Maze) Wall(p Pos, d heading.Direction) bool {
	return m.cells[m.index(p)].Walls[d]
}

func (m *Maze) Walls(p Pos) Walls {
	return m.cells[m.index(p)].Walls
}

// MarkVisited reports true only the first time p is marked.
func (m *Maze) MarkVisited(p Pos) bool {
	c := &m.cells[m.index(p)]
	if c.Visited {
		return false
	}
	c.Visited = true
	return true
}

func (m *Maze) Visited(p Pos) bool {
	return m.cells[m.index(p)].Visited
}

// VisitedCount counts visited cells.
func (m *Maze) VisitedCount() int {
	n := 0
	for _, c := range m.cells {
		if c.Visited {
			n++
		}
	}
	return n
}

func (m *Maze) MarkDark(p Pos) {
	m.cells[m.index(p)].Dark = true
}

// Cell returns a copy of the cell at p.
func (m *Maze) Cell(p Pos) Cell {
	return m.cells[m.index(p)]
}

// Rows returns a copy of the grid, row 0 being the southern row.
func (m *Maze) Rows() [][]Cell {
	out := make([][]Cell, m.height)
	for y := range out {
		out[y] = append([]Cell(nil), m.cells[y*m.width:(y+1)*m.width]...)
	}
	return out
}

// String renders the known walls, northern row first. A separator is drawn
// when either adjoining face has a wall recorded. Visited cells show a dot,
// dark cells a '#'.
//
//	+---+---+
//	| . |   |
//	+   +---+
func (m *Maze) String() string {
	var b strings.Builder
	for y := m.height - 1; y >= 0; y-- {
		for x := 0; x < m.width; x++ {
			b.WriteByte('+')
			wall := m.Wall(Pos{x, y}, heading.North)
			if y+1 < m.height {
				wall = wall || m.Wall(Pos{x, y + 1}, heading.South)
			}
			if wall {
				b.WriteString("---")
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString("+\n")
		for x := 0; x < m.width; x++ {
			c := m.Cell(Pos{x, y})
			wall := c.Walls[heading.West]
			if x > 0 {
				wall = wall || m.Wall(Pos{x - 1, y}, heading.East)
			}
			if wall {
				b.WriteByte('|')
			} else {
				b.WriteByte(' ')
			}
			switch {
			case c.Dark:
				b.WriteString(" # ")
			case c.Visited:
				b.WriteString(" . ")
			default:
				b.WriteString("   ")
			}
		}
		if m.Wall(Pos{m.width - 1, y}, heading.East) {
			b.WriteString("|\n")
		} else {
			b.WriteString(" \n")
		}
	}
	for x := 0; x < m.width; x++ {
		b.WriteByte('+')
		if m.Wall(Pos{x, 0}, heading.South) {
			b.WriteString("---")
		} else {
			b.WriteString("   ")
		}
	}
	b.WriteString("+\n")
	return b.String()
}
