package sim

import (
	"testing"

	"maze-runner/internal/heading"
	"maze-runner/internal/maze"
	"maze-runner/internal/robot"
)

func newRobot(t *testing.T, w *World, start maze.Pos, h heading.Direction) *Robot {
	t.Helper()
	r, err := NewRobot(w, Config{CellTicks: 3}, start, h)
	if err != nil {
		t.Fatalf("NewRobot: %v", err)
	}
	return r
}

func openWorld(t *testing.T, x, y int) *World {
	t.Helper()
	w, err := OpenWorld(x, y)
	if err != nil {
		t.Fatalf("OpenWorld: %v", err)
	}
	return w
}

func TestNewRobot_Validation(t *testing.T) {
	w := openWorld(t, 2, 2)
	if _, err := NewRobot(nil, Config{}, maze.Pos{}, heading.North); err == nil {
		t.Fatalf("expected error for nil world")
	}
	if _, err := NewRobot(w, Config{}, maze.Pos{X: 2}, heading.North); err == nil {
		t.Fatalf("expected error for start outside world")
	}
	if _, err := NewRobot(w, Config{}, maze.Pos{}, heading.Direction(9)); err == nil {
		t.Fatalf("expected error for invalid heading")
	}
}

func TestRobot_DriveCrossesCellAfterTicks(t *testing.T) {
	r := newRobot(t, openWorld(t, 4, 4), maze.Pos{X: 1, Y: 0}, heading.North)

	for i := 0; i < 2; i++ {
		_ = r.SetMotors(20, 20)
		if v, _ := r.ReadLine(robot.LineLeft); v != 900 {
			t.Fatalf("tick %d: line=%d want bright", i, v)
		}
	}
	_ = r.SetMotors(20, 20)
	if v, _ := r.ReadLine(robot.LineRight); v != 50 {
		t.Fatalf("line=%d want dark after crossing", v)
	}
	if p, h := r.Pose(); p != (maze.Pos{X: 1, Y: 1}) || h != heading.North {
		t.Fatalf("pose=%s %s want (1,1) north", p, h)
	}

	if r.Moves() != 1 {
		t.Fatalf("moves=%d want 1", r.Moves())
	}
}

func TestRobot_LineStaysUnderSensorsAfterRestart(t *testing.T) {
	r := newRobot(t, openWorld(t, 4, 4), maze.Pos{X: 1, Y: 0}, heading.North)
	for i := 0; i < 3; i++ {
		_ = r.SetMotors(20, 20)
	}
	_ = r.SetMotors(0, 0)
	if v, _ := r.ReadLine(robot.LineLeft); v != 50 {
		t.Fatalf("line=%d want dark while stopped on it", v)
	}

	want := []int{50, 900, 50}
	for i, w := range want {
		_ = r.SetMotors(20, 20)
		if v, _ := r.ReadLine(robot.LineRight); v != w {
			t.Fatalf("tick %d after restart: line=%d want %d", i, v, w)
		}
	}
	if p, _ := r.Pose(); p != (maze.Pos{X: 1, Y: 2}) {
		t.Fatalf("pose=%s want (1,2)", p)
	}

	r.Place(maze.Pos{X: 1, Y: 0}, heading.North)
	if v, _ := r.ReadLine(robot.LineLeft); v != 900 {
		t.Fatalf("line=%d want bright after place", v)
	}
}

func TestRobot_LineTicksCappedBelowCellTicks(t *testing.T) {
	w := openWorld(t, 4, 4)
	r, err := NewRobot(w, Config{CellTicks: 2, LineTicks: 5}, maze.Pos{}, heading.East)
	if err != nil {
		t.Fatalf("NewRobot: %v", err)
	}
	var got []int
	for i := 0; i < 4; i++ {
		_ = r.SetMotors(20, 20)
		v, _ := r.ReadLine(robot.LineLeft)
		got = append(got, v)
	}
	want := []int{900, 50, 900, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line readings=%v want %v", got, want)
		}
	}
	if r.Moves() != 2 {
		t.Fatalf("moves=%d want 2", r.Moves())
	}

	if _, err := NewRobot(w, Config{CellTicks: 1}, maze.Pos{}, heading.East); err == nil {
		t.Fatalf("expected error for a one tick cell")
	}
}

func TestRobot_BumpsIntoWall(t *testing.T) {
	r := newRobot(t, openWorld(t, 2, 2), maze.Pos{X: 0, Y: 1}, heading.North)
	for i := 0; i < 6; i++ {
		_ = r.SetMotors(20, 20)
	}
	if p, _ := r.Pose(); p != (maze.Pos{X: 0, Y: 1}) {
		t.Fatalf("pose=%s want unchanged", p)
	}
	if r.Bumps() != 2 {
		t.Fatalf("bumps=%d want 2", r.Bumps())
	}
	if v, _ := r.ReadLine(robot.LineLeft); v != 900 {
		t.Fatalf("line=%d want bright when blocked", v)
	}
}

func TestRobot_RotationsAndNudges(t *testing.T) {
	r := newRobot(t, openWorld(t, 2, 2), maze.Pos{}, heading.North)
	steps := []struct {
		turn func(int) error
		deg  int
		want heading.Direction
	}{
		{r.Left, 90, heading.West},
		{r.Right, 180, heading.East},
		{r.Right, 30, heading.East},
		{r.Left, 180, heading.West},
		{r.Right, 270, heading.South},
	}
	for i, s := range steps {
		_ = s.turn(s.deg)
		if _, h := r.Pose(); h != s.want {
			t.Fatalf("step %d: heading=%s want %s", i, h, s.want)
		}
	}
}

func TestRobot_IRFollowsHeading(t *testing.T) {
	// (0,0) in an open 2x2: walls to the south and west only.
	r := newRobot(t, openWorld(t, 2, 2), maze.Pos{}, heading.East)
	want := map[robot.IR]int{
		robot.IRLeft:      20,  // north
		robot.IRFront:     20,  // east
		robot.IRRight:     400, // south
		robot.IRRear:      400, // west
		robot.IRFrontLeft: 20,
		robot.IRRearRight: 20,
	}
	for s, v := range want {
		got, err := r.ReadIR(s)
		if err != nil {
			t.Fatalf("ReadIR(%s): %v", s, err)
		}
		if got != v {
			t.Fatalf("ReadIR(%s)=%d want %d", s, got, v)
		}
	}
	if _, err := r.ReadIR(robot.IR(8)); err == nil {
		t.Fatalf("expected error for unknown sensor")
	}
}

func TestRobot_LightAndSwitch(t *testing.T) {
	w := openWorld(t, 2, 2)
	w.SetDark(maze.Pos{X: 1, Y: 1}, true)
	r := newRobot(t, w, maze.Pos{}, heading.North)
	if v, _ := r.ReadLight(); v != 900 {
		t.Fatalf("light=%d want bright", v)
	}
	r.Place(maze.Pos{X: 1, Y: 1}, heading.South)
	if v, _ := r.ReadLight(); v != 100 {
		t.Fatalf("light=%d want dark", v)
	}

	if on, _ := r.ReadSwitch(0); on {
		t.Fatalf("switch pressed before PressSwitch")
	}
	r.PressSwitch(0)
	if on, _ := r.ReadSwitch(0); !on {
		t.Fatalf("switch not pressed")
	}
	if on, _ := r.ReadSwitch(0); on {
		t.Fatalf("switch press should be consumed by a read")
	}
}
