package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"maze-runner/internal/heading"
	"maze-runner/internal/maze"
)

// WorldScript is the YAML description of a physical maze.
//
// YAML schema (v1):
//
//	version: 1
//	size_x: 4
//	size_y: 4
//	walls:
//	  - {x: 1, y: 0, dir: east}
//	dark:
//	  - {x: 2, y: 3}
//
// Only interior walls need listing; the outer boundary is always walled. A
// wall applies to both cells it separates.
type WorldScript struct {
	Version int          `yaml:"version"`
	SizeX   int          `yaml:"size_x"`
	SizeY   int          `yaml:"size_y"`
	Walls   []WorldWall  `yaml:"walls"`
	Dark    []WorldPoint `yaml:"dark"`
}

type WorldWall struct {
	X   int               `yaml:"x"`
	Y   int               `yaml:"y"`
	Dir heading.Direction `yaml:"dir"`
}

type WorldPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// World is the ground truth the simulated robot moves through.
type World struct {
	width, height int
	walls         []maze.Walls
	dark          []bool
}

// LoadWorldScript reads and unmarshals a YAML world script from path.
func LoadWorldScript(path string) (WorldScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return WorldScript{}, err
	}
	return ParseWorldScriptYAML(b)
}

// ParseWorldScriptYAML parses a YAML world script.
func ParseWorldScriptYAML(b []byte) (WorldScript, error) {
	var s WorldScript
	if err := yaml.Unmarshal(b, &s); err != nil {
		return WorldScript{}, err
	}
	return s, nil
}

// NewWorld validates script and builds the world.
func NewWorld(script WorldScript) (*World, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported world version %d", script.Version)
	}
	w, err := OpenWorld(script.SizeX, script.SizeY)
	if err != nil {
		return nil, err
	}
	for i, wall := range script.Walls {
		p := maze.Pos{X: wall.X, Y: wall.Y}
		if !w.Contains(p) {
			return nil, fmt.Errorf("walls[%d] at %s is outside the %dx%d world", i, p, w.width, w.height)
		}
		if !wall.Dir.Valid() {
			return nil, fmt.Errorf("walls[%d].dir is invalid", i)
		}
		w.SetWall(p, wall.Dir, true)
	}
	for i, d := range script.Dark {
		p := maze.Pos{X: d.X, Y: d.Y}
		if !w.Contains(p) {
			return nil, fmt.Errorf("dark[%d] at %s is outside the %dx%d world", i, p, w.width, w.height)
		}
		w.dark[w.index(p)] = true
	}
	return w, nil
}

// OpenWorld returns a world with only the boundary walled.
func OpenWorld(width, height int) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("size_x and size_y must be > 0 (got %dx%d)", width, height)
	}
	return &World{
		width:  width,
		height: height,
		walls:  make([]maze.Walls, width*height),
		dark:   make([]bool, width*height),
	}, nil
}

// CorridorWorld walls off every passage except the steps along path, which
// must visit adjacent cells.
func CorridorWorld(width, height int, path []maze.Pos) (*World, error) {
	w, err := OpenWorld(width, height)
	if err != nil {
		return nil, err
	}
	for i := range w.walls {
		w.walls[i] = maze.Walls{true, true, true, true}
	}
	for i, p := range path {
		if !w.Contains(p) {
			return nil, fmt.Errorf("path[%d] at %s is outside the world", i, p)
		}
		if i == 0 {
			continue
		}
		d, ok := direction(path[i-1], p)
		if !ok {
			return nil, fmt.Errorf("path[%d] %s is not adjacent to %s", i, p, path[i-1])
		}
		w.SetWall(path[i-1], d, false)
	}
	return w, nil
}

func direction(from, to maze.Pos) (heading.Direction, bool) {
	for d := heading.North; d <= heading.West; d++ {
		if from.Step(d) == to {
			return d, true
		}
	}
	return 0, false
}

func (w *World) Width() int  { return w.width }
func (w *World) Height() int { return w.height }

func (w *World) Contains(p maze.Pos) bool {
	return p.X >= 0 && p.X < w.width && p.Y >= 0 && p.Y < w.height
}

func (w *World) index(p maze.Pos) int { return p.Y*w.width + p.X }

// SetWall sets or clears the wall on face d of p and the matching face of
// the neighbour.
func (w *World) SetWall(p maze.Pos, d heading.Direction, present bool) {
	if !w.Contains(p) {
		return
	}
	w.walls[w.index(p)][d] = present
	if n := p.Step(d); w.Contains(n) {
		w.walls[w.index(n)][d.Opposite()] = present
	}
}

// Wall reports whether face d of p is blocked. Outside the grid everything
// is wall.
func (w *World) Wall(p maze.Pos, d heading.Direction) bool {
	if !w.Contains(p) || !w.Contains(p.Step(d)) {
		return true
	}
	return w.walls[w.index(p)][d]
}

func (w *World) Dark(p maze.Pos) bool {
	return w.Contains(p) && w.dark[w.index(p)]
}

// SetDark marks p as dark.
func (w *World) SetDark(p maze.Pos, dark bool) {
	if w.Contains(p) {
		w.dark[w.index(p)] = dark
	}
}
