package maze

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"maze-runner/internal/heading"
)

func newMaze(t *testing.T, w, h int) *Maze {
	t.Helper()
	m, err := New(w, h)
	if err != nil {
		t.Fatalf("New(%d,%d): %v", w, h, err)
	}
	return m
}

func TestNew_RejectsEmpty(t *testing.T) {
	for _, sz := range [][2]int{{0, 4}, {4, 0}, {-1, 2}} {
		if _, err := New(sz[0], sz[1]); err == nil {
			t.Fatalf("New(%d,%d) expected error", sz[0], sz[1])
		}
	}
}

func TestReset_BoundaryWallsOnly(t *testing.T) {
	m := newMaze(t, 4, 4)
	m.RecordWall(Pos{1, 1}, heading.East, true)
	m.MarkVisited(Pos{2, 2})
	m.MarkDark(Pos{3, 3})
	m.Reset()

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			p := Pos{x, y}
			want := Cell{}
			want.Walls[heading.South] = y == 0
			want.Walls[heading.North] = y == 3
			want.Walls[heading.West] = x == 0
			want.Walls[heading.East] = x == 3
			if diff := cmp.Diff(want, m.Cell(p)); diff != "" {
				t.Fatalf("cell %s mismatch (-want +got):\n%s", p, diff)
			}
		}
	}
}

func TestReset_NonSquare(t *testing.T) {
	m := newMaze(t, 3, 2)
	if !m.Wall(Pos{2, 1}, heading.East) || !m.Wall(Pos{2, 1}, heading.North) {
		t.Fatalf("north-east corner walls missing: %+v", m.Walls(Pos{2, 1}))
	}
	if m.Wall(Pos{1, 0}, heading.North) || m.Wall(Pos{1, 1}, heading.South) {
		t.Fatalf("interior wall set between rows")
	}
	if m.Len() != 6 {
		t.Fatalf("len=%d want 6", m.Len())
	}
}

func TestMarkVisited_TrueOnce(t *testing.T) {
	m := newMaze(t, 4, 4)
	p := Pos{2, 1}
	if !m.MarkVisited(p) {
		t.Fatalf("first MarkVisited=false want true")
	}
	for i := 0; i < 3; i++ {
		if m.MarkVisited(p) {
			t.Fatalf("repeat MarkVisited=true want false")
		}
	}
	if !m.Visited(p) || m.VisitedCount() != 1 {
		t.Fatalf("visited=%v count=%d", m.Visited(p), m.VisitedCount())
	}
}

func TestRecordWall_Idempotent(t *testing.T) {
	m := newMaze(t, 4, 4)
	p := Pos{1, 2}
	for _, present := range []bool{true, true, true, false, false, true} {
		m.RecordWall(p, heading.West, present)
		if got := m.Wall(p, heading.West); got != present {
			t.Fatalf("wall=%v want %v", got, present)
		}
	}
}

func TestRecordWall_NotMirrored(t *testing.T) {
	m := newMaze(t, 4, 4)
	m.RecordWall(Pos{1, 1}, heading.East, true)
	if m.Wall(Pos{2, 1}, heading.West) {
		t.Fatalf("wall was mirrored onto neighbour")
	}
}

func TestOutOfRangePanics(t *testing.T) {
	m := newMaze(t, 4, 4)
	ops := map[string]func(){
		"RecordWall":  func() { m.RecordWall(Pos{4, 0}, heading.North, true) },
		"MarkVisited": func() { m.MarkVisited(Pos{0, -1}) },
		"Wall":        func() { m.Wall(Pos{-1, 3}, heading.East) },
		"Cell":        func() { m.Cell(Pos{0, 4}) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				var oor *OutOfRangeError
				if !ok || !errors.As(err, &oor) {
					t.Fatalf("recover=%v want *OutOfRangeError", r)
				}
			}()
			op()
		})
	}
}

func TestPosStep(t *testing.T) {
	p := Pos{1, 1}
	want := map[heading.Direction]Pos{
		heading.North: {1, 2},
		heading.East:  {2, 1},
		heading.South: {1, 0},
		heading.West:  {0, 1},
	}
	for d, w := range want {
		if got := p.Step(d); got != w {
			t.Fatalf("Step(%s)=%s want %s", d, got, w)
		}
	}
}

func TestString(t *testing.T) {
	m := newMaze(t, 2, 2)
	m.RecordWall(Pos{0, 0}, heading.East, true)
	m.MarkVisited(Pos{0, 0})
	m.MarkDark(Pos{1, 1})

	want := "" +
		"+---+---+\n" +
		"|     # |\n" +
		"+   +   +\n" +
		"| . |   |\n" +
		"+---+---+\n"
	if got := m.String(); got != want {
		t.Fatalf("String mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestRows_IsCopy(t *testing.T) {
	m := newMaze(t, 2, 2)
	rows := m.Rows()
	rows[0][0].Visited = true
	if m.Visited(Pos{0, 0}) {
		t.Fatalf("Rows leaked internal storage")
	}
}

func TestRecordWall_BoundaryStaysSet(t *testing.T) {
	m := newMaze(t, 4, 4)
	m.RecordWall(Pos{0, 2}, heading.West, false)
	if !m.Wall(Pos{0, 2}, heading.West) {
		t.Fatalf("boundary wall cleared")
	}
	m.RecordWalls(Pos{3, 3}, Walls{})
	if w := m.Walls(Pos{3, 3}); !w[heading.North] || !w[heading.East] || w[heading.South] || w[heading.West] {
		t.Fatalf("corner walls=%v want north+east only", w)
	}
}
