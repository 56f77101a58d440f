package pibot

import (
	"errors"
	"fmt"
	"time"
)

// motors drives two DC motors through an H-bridge: PWM sets the speed, a
// direction line per side selects reverse.
type motors struct {
	leftPWM, rightPWM pwmDriver
	leftDir, rightDir outputLine

	mmPerSec  float64
	degPerSec float64
	moveSpeed int
}

// SetMotors takes speeds in -100..100; the sign selects the direction.
func (m *motors) SetMotors(left, right int) error {
	if err := setSide(m.leftPWM, m.leftDir, left); err != nil {
		return fmt.Errorf("pibot: left motor: %w", err)
	}
	if err := setSide(m.rightPWM, m.rightDir, right); err != nil {
		return fmt.Errorf("pibot: right motor: %w", err)
	}
	return nil
}

func setSide(pwm pwmDriver, dir outputLine, speed int) error {
	reverse := 0
	if speed < 0 {
		reverse = 1
		speed = -speed
	}
	if speed > 100 {
		speed = 100
	}
	if err := dir.SetValue(reverse); err != nil {
		return err
	}
	return pwm.SetDutyPercent(float64(speed))
}

func (m *motors) Forward(mm int) error {
	return m.timed(m.moveSpeed, m.moveSpeed, float64(mm)/m.mmPerSec)
}

func (m *motors) Backward(mm int) error {
	return m.timed(-m.moveSpeed, -m.moveSpeed, float64(mm)/m.mmPerSec)
}

func (m *motors) Left(deg int) error {
	return m.timed(-m.moveSpeed, m.moveSpeed, float64(deg)/m.degPerSec)
}

func (m *motors) Right(deg int) error {
	return m.timed(m.moveSpeed, -m.moveSpeed, float64(deg)/m.degPerSec)
}

// timed runs the motors for secs seconds and stops them again, even when the
// start command fails half way.
func (m *motors) timed(left, right int, secs float64) error {
	if secs <= 0 {
		return nil
	}
	if err := m.SetMotors(left, right); err != nil {
		return errors.Join(err, m.SetMotors(0, 0))
	}
	sleep(time.Duration(secs * float64(time.Second)))
	return m.SetMotors(0, 0)
}

func (m *motors) Close() error {
	var errs []error
	for _, c := range []interface{ Close() error }{m.leftPWM, m.rightPWM, m.leftDir, m.rightDir} {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
