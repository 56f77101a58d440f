package heading

import (
	"fmt"
	"strings"
)

// Direction is an absolute compass direction. The numeric values index cell
// wall slots.
type Direction int

const (
	North Direction = 0
	East  Direction = 1
	South Direction = 2
	West  Direction = 3
)

// Count is the number of absolute directions.
const Count = 4

// Offset is a direction relative to the robot's current heading.
type Offset int

const (
	Left  Offset = -1
	Front Offset = 0
	Right Offset = 1
	Rear  Offset = 2
)

// Offsets lists the relative directions in sensor order.
var Offsets = [Count]Offset{Left, Front, Right, Rear}

// Absolute converts a relative offset into an absolute direction given the
// current heading. The double modulo keeps the result in 0..3 for negative
// intermediate values.
func Absolute(h Direction, o Offset) Direction {
	return Direction(((int(h)+int(o))%Count + Count) % Count)
}

// Valid reports whether d is one of the four compass directions.
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

func (d Direction) Opposite() Direction {
	return Absolute(d, Rear)
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

func (o Offset) String() string {
	switch o {
	case Left:
		return "left"
	case Front:
		return "front"
	case Right:
		return "right"
	case Rear:
		return "rear"
	default:
		return fmt.Sprintf("offset(%d)", int(o))
	}
}

// Parse accepts full names or single letters, case-insensitive.
func Parse(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MarshalText lets directions appear by name in YAML and JSON.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
