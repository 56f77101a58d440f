// Package robot defines the hardware capabilities the explorer drives.
//
// Every call is synchronous. Backends (simulator, Raspberry Pi, terminal
// display, speaker) each implement a subset and are combined with Parts.
package robot

import (
	"fmt"
	"time"

	"maze-runner/internal/heading"
)

// IR is a distance sensor position, numbered clockwise from the left side.
// Readings grow as an obstacle gets closer.
type IR int

const (
	IRLeft IR = iota
	IRFrontLeft
	IRFront
	IRFrontRight
	IRRight
	IRRearRight
	IRRear
	IRRearLeft
)

// IRCount is the number of distance sensors.
const IRCount = 8

func (s IR) String() string {
	switch s {
	case IRLeft:
		return "left"
	case IRFrontLeft:
		return "front-left"
	case IRFront:
		return "front"
	case IRFrontRight:
		return "front-right"
	case IRRight:
		return "right"
	case IRRearRight:
		return "rear-right"
	case IRRear:
		return "rear"
	case IRRearLeft:
		return "rear-left"
	default:
		return fmt.Sprintf("ir(%d)", int(s))
	}
}

// IRFor returns the straight-on sensor facing a relative direction.
func IRFor(o heading.Offset) IR {
	switch o {
	case heading.Left:
		return IRLeft
	case heading.Right:
		return IRRight
	case heading.Rear:
		return IRRear
	default:
		return IRFront
	}
}

// LineChannel selects a floor line sensor.
type LineChannel int

const (
	LineLeft LineChannel = iota
	LineRight
)

type Drive interface {
	// SetMotors sets raw wheel speeds; zero stops.
	SetMotors(left, right int) error
	Forward(mm int) error
	Backward(mm int) error
	// Left and Right rotate on the spot by deg degrees.
	Left(deg int) error
	Right(deg int) error
}

type Sensors interface {
	ReadIR(s IR) (int, error)
	ReadLine(ch LineChannel) (int, error)
	ReadLight() (int, error)
	ReadSwitch(n int) (bool, error)
}

type Display interface {
	ClearDisplay() error
	Plot(x, y int) error
}

// Flusher is implemented by displays that buffer plotted pixels.
type Flusher interface {
	Flush() error
}

type Buzzer interface {
	PlayNote(hz int, d time.Duration) error
}

type LEDs interface {
	SetLED(n int, on bool) error
}

// Robot is the full capability set used by the exploration controller.
type Robot interface {
	Drive
	Sensors
	Display
	Buzzer
	LEDs
}
