package explore

import (
	"maze-runner/internal/heading"
	"maze-runner/internal/maze"
)

// Snapshot is a copy of the controller's externally visible state. It shares
// nothing with the controller and may be handed to other goroutines.
type Snapshot struct {
	State   State             `json:"state"`
	RunID   string            `json:"run_id"`
	Ticks   uint64            `json:"ticks"`
	Pos     maze.Pos          `json:"pos"`
	Heading heading.Direction `json:"heading"`
	Visited int               `json:"visited"`
	Total   int               `json:"total"`
	Nest    *maze.Pos         `json:"nest,omitempty"`
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	// Cells is indexed [y][x].
	Cells [][]maze.Cell `json:"cells"`
	Map   string        `json:"-"`
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:   c.state,
		RunID:   c.runID,
		Ticks:   c.ticks,
		Pos:     c.ctx.Pos,
		Heading: c.ctx.Heading,
		Visited: c.ctx.Visited,
		Total:   c.maze.Len(),
		Width:   c.maze.Width(),
		Height:  c.maze.Height(),
		Cells:   c.maze.Rows(),
		Map:     c.maze.String(),
	}
	if c.ctx.HasNest {
		n := c.ctx.Nest
		s.Nest = &n
	}
	return s
}
