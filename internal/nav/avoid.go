package nav

import (
	"fmt"

	"maze-runner/internal/robot"
)

// Avoider nudges the robot away from anything closer than Threshold. It
// keeps no state and never changes the map or the controller state.
type Avoider struct {
	Threshold int
	NudgeMM   int
	NudgeDeg  int
}

// Correction records which nudges one pass issued.
type Correction struct {
	Backed      bool
	TurnedRight bool
	TurnedLeft  bool
}

func (c Correction) Any() bool {
	return c.Backed || c.TurnedRight || c.TurnedLeft
}

// Correct reads every distance sensor once, lights the LED of each sensor
// over the threshold (when leds is non-nil), then nudges.
func (a Avoider) Correct(drv robot.Drive, s robot.Sensors, leds robot.LEDs) (Correction, error) {
	var near [robot.IRCount]bool
	for i := 0; i < robot.IRCount; i++ {
		v, err := s.ReadIR(robot.IR(i))
		if err != nil {
			return Correction{}, fmt.Errorf("nav: read %s ir: %w", robot.IR(i), err)
		}
		near[i] = v > a.Threshold
		if leds != nil {
			if err := leds.SetLED(i, near[i]); err != nil {
				return Correction{}, err
			}
		}
	}

	var c Correction
	if near[robot.IRFront] {
		if err := drv.Backward(a.NudgeMM); err != nil {
			return c, err
		}
		c.Backed = true
	}
	if near[robot.IRLeft] || near[robot.IRFrontLeft] {
		if err := drv.Right(a.NudgeDeg); err != nil {
			return c, err
		}
		c.TurnedRight = true
	}
	if near[robot.IRRight] || near[robot.IRFrontRight] {
		if err := drv.Left(a.NudgeDeg); err != nil {
			return c, err
		}
		c.TurnedLeft = true
	}
	return c, nil
}
