package robot

import (
	"errors"
	"time"
)

// ErrNoDrive is returned by Parts when no drive backend is configured.
var ErrNoDrive = errors.New("robot: no drive configured")

// ErrNoSensors is returned by Parts when no sensor backend is configured.
var ErrNoSensors = errors.New("robot: no sensors configured")

// Parts combines independent backends into a Robot. Missing output parts are
// silent; missing drive or sensors fail every call.
type Parts struct {
	Drive   Drive
	Sensors Sensors
	Display Display
	Buzzer  Buzzer
	LEDs    LEDs
}

var _ Robot = Parts{}

func (p Parts) SetMotors(left, right int) error {
	if p.Drive == nil {
		return ErrNoDrive
	}
	return p.Drive.SetMotors(left, right)
}

func (p Parts) Forward(mm int) error {
	if p.Drive == nil {
		return ErrNoDrive
	}
	return p.Drive.Forward(mm)
}

func (p Parts) Backward(mm int) error {
	if p.Drive == nil {
		return ErrNoDrive
	}
	return p.Drive.Backward(mm)
}

func (p Parts) Left(deg int) error {
	if p.Drive == nil {
		return ErrNoDrive
	}
	return p.Drive.Left(deg)
}

func (p Parts) Right(deg int) error {
	if p.Drive == nil {
		return ErrNoDrive
	}
	return p.Drive.Right(deg)
}

func (p Parts) ReadIR(s IR) (int, error) {
	if p.Sensors == nil {
		return 0, ErrNoSensors
	}
	return p.Sensors.ReadIR(s)
}

func (p Parts) ReadLine(ch LineChannel) (int, error) {
	if p.Sensors == nil {
		return 0, ErrNoSensors
	}
	return p.Sensors.ReadLine(ch)
}

func (p Parts) ReadLight() (int, error) {
	if p.Sensors == nil {
		return 0, ErrNoSensors
	}
	return p.Sensors.ReadLight()
}

func (p Parts) ReadSwitch(n int) (bool, error) {
	if p.Sensors == nil {
		return false, ErrNoSensors
	}
	return p.Sensors.ReadSwitch(n)
}

func (p Parts) ClearDisplay() error {
	if p.Display == nil {
		return nil
	}
	return p.Display.ClearDisplay()
}

func (p Parts) Plot(x, y int) error {
	if p.Display == nil {
		return nil
	}
	return p.Display.Plot(x, y)
}

// Flush forwards to the display when it buffers output.
func (p Parts) Flush() error {
	if f, ok := p.Display.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (p Parts) PlayNote(hz int, d time.Duration) error {
	if p.Buzzer == nil {
		return nil
	}
	return p.Buzzer.PlayNote(hz, d)
}

func (p Parts) SetLED(n int, on bool) error {
	if p.LEDs == nil {
		return nil
	}
	return p.LEDs.SetLED(n, on)
}
