// Package pibot is the Raspberry Pi hardware backend: sysfs PWM motors with
// gpio direction lines, ADS1115 analog sensors on i2c, and gpio switches and
// LEDs. Drivers only exist for linux/arm; elsewhere Open fails.
package pibot

import (
	"errors"
	"fmt"
	"time"

	"maze-runner/internal/robot"
)

// Channel addresses one ADS1115 input.
type Channel struct {
	Addr  uint16
	Input int
}

type Config struct {
	// I2CBus is the bus device, e.g. /dev/i2c-1.
	I2CBus string
	IR     [robot.IRCount]Channel
	Light  Channel
	Line   [2]Channel

	// LeftPWM and RightPWM are sysfs PWM channel numbers.
	LeftPWM   int
	RightPWM  int
	PWMPeriod time.Duration
	// LeftDir and RightDir are BCM pins; high selects reverse.
	LeftDir  int
	RightDir int

	// Switches and LEDs are BCM pins indexed by switch and LED number.
	Switches []int
	LEDs     []int

	// MoveSpeed is the wheel speed for timed moves and turns, calibrated
	// against MMPerSec and DegPerSec.
	MoveSpeed int
	MMPerSec  float64
	DegPerSec float64
}

// Bot implements robot.Drive, robot.Sensors and robot.LEDs.
type Bot struct {
	*motors

	bus      i2cBus
	adcs     map[uint16]ads1115
	cfg      Config
	switches []inputLine
	leds     []outputLine
}

var (
	_ robot.Drive   = (*Bot)(nil)
	_ robot.Sensors = (*Bot)(nil)
	_ robot.LEDs    = (*Bot)(nil)
)

// Open claims every pin and bus the config names. On failure everything
// opened so far is released again.
func Open(cfg Config) (*Bot, error) {
	if cfg.MMPerSec <= 0 || cfg.DegPerSec <= 0 {
		return nil, fmt.Errorf("pibot: mm_per_sec and deg_per_sec must be > 0")
	}
	b := &Bot{
		motors: &motors{mmPerSec: cfg.MMPerSec, degPerSec: cfg.DegPerSec, moveSpeed: cfg.MoveSpeed},
		adcs:   map[uint16]ads1115{},
		cfg:    cfg,
	}
	fail := func(err error) (*Bot, error) {
		_ = b.Close()
		return nil, err
	}

	var err error
	if b.leftPWM, err = openPWMFn(cfg.LeftPWM, cfg.PWMPeriod); err != nil {
		return fail(err)
	}
	if b.rightPWM, err = openPWMFn(cfg.RightPWM, cfg.PWMPeriod); err != nil {
		return fail(err)
	}
	if b.leftDir, err = openOutputFn(cfg.LeftDir); err != nil {
		return fail(err)
	}
	if b.rightDir, err = openOutputFn(cfg.RightDir); err != nil {
		return fail(err)
	}

	if b.bus, err = openI2CFn(cfg.I2CBus); err != nil {
		return fail(err)
	}
	chans := append([]Channel{cfg.Light, cfg.Line[0], cfg.Line[1]}, cfg.IR[:]...)
	for _, ch := range chans {
		if _, ok := b.adcs[ch.Addr]; !ok {
			b.adcs[ch.Addr] = ads1115{dev: b.bus.Dev(ch.Addr)}
		}
	}

	for _, pin := range cfg.Switches {
		in, err := openInputFn(pin)
		if err != nil {
			return fail(err)
		}
		b.switches = append(b.switches, in)
	}
	for _, pin := range cfg.LEDs {
		out, err := openOutputFn(pin)
		if err != nil {
			return fail(err)
		}
		b.leds = append(b.leds, out)
	}
	return b, nil
}

func (b *Bot) read(ch Channel) (int, error) {
	return b.adcs[ch.Addr].read(ch.Input)
}

func (b *Bot) ReadIR(s robot.IR) (int, error) {
	if s < 0 || s >= robot.IRCount {
		return 0, fmt.Errorf("pibot: no ir sensor %d", int(s))
	}
	return b.read(b.cfg.IR[s])
}

func (b *Bot) ReadLine(ch robot.LineChannel) (int, error) {
	if ch != robot.LineLeft && ch != robot.LineRight {
		return 0, fmt.Errorf("pibot: no line channel %d", int(ch))
	}
	return b.read(b.cfg.Line[ch])
}

func (b *Bot) ReadLight() (int, error) {
	return b.read(b.cfg.Light)
}

func (b *Bot) ReadSwitch(n int) (bool, error) {
	if n < 0 || n >= len(b.switches) {
		return false, fmt.Errorf("pibot: no switch %d", n)
	}
	v, err := b.switches[n].Value()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// SetLED ignores LEDs that are not wired.
func (b *Bot) SetLED(n int, on bool) error {
	if n < 0 || n >= len(b.leds) {
		return nil
	}
	v := 0
	if on {
		v = 1
	}
	return b.leds[n].SetValue(v)
}

// Close stops the motors and releases every line and the bus.
func (b *Bot) Close() error {
	var errs []error
	if b.leftPWM != nil && b.rightPWM != nil && b.leftDir != nil && b.rightDir != nil {
		errs = append(errs, b.SetMotors(0, 0))
	}
	errs = append(errs, b.motors.Close())
	for _, l := range b.switches {
		errs = append(errs, l.Close())
	}
	for _, l := range b.leds {
		errs = append(errs, l.Close())
	}
	if b.bus != nil {
		errs = append(errs, b.bus.Close())
	}
	return errors.Join(errs...)
}
