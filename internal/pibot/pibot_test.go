package pibot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
	"time"

	"maze-runner/internal/robot"
)

type fakePWM struct {
	name   string
	log    *[]string
	closed bool
}

func (p *fakePWM) SetDutyPercent(d float64) error {
	*p.log = append(*p.log, fmt.Sprintf("%s duty %.0f", p.name, d))
	return nil
}

func (p *fakePWM) Close() error {
	p.closed = true
	return nil
}

type fakeLine struct {
	name   string
	log    *[]string
	value  int
	closed bool
}

func (l *fakeLine) SetValue(v int) error {
	l.value = v
	if l.log != nil {
		*l.log = append(*l.log, fmt.Sprintf("%s=%d", l.name, v))
	}
	return nil
}

func (l *fakeLine) Value() (int, error) { return l.value, nil }

func (l *fakeLine) Close() error {
	l.closed = true
	return nil
}

// fakeADS emulates the ADS1115 register protocol: a config write selects the
// channel, the status poll reports done, the conversion register returns
// the stored raw value for that channel.
type fakeADS struct {
	raw     [4]int16
	channel int
	writes  int
}

func (a *fakeADS) Write(p []byte) error {
	if len(p) != 3 || p[0] != adsRegConfig {
		return fmt.Errorf("unexpected write % x", p)
	}
	cfg := binary.BigEndian.Uint16(p[1:])
	a.channel = int(cfg>>12&0x7) - adsMuxSingle0
	a.writes++
	return nil
}

func (a *fakeADS) ReadReg(reg byte, dst []byte) error {
	switch reg {
	case adsRegConfig:
		binary.BigEndian.PutUint16(dst, adsStart)
	case adsRegConversion:
		binary.BigEndian.PutUint16(dst, uint16(a.raw[a.channel]))
	default:
		return fmt.Errorf("unexpected register %d", reg)
	}
	return nil
}

type fakeBus struct {
	devs   map[uint16]*fakeADS
	closed bool
}

func (b *fakeBus) Dev(addr uint16) regDev {
	if b.devs[addr] == nil {
		b.devs[addr] = &fakeADS{}
	}
	return b.devs[addr]
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

type rig struct {
	log   []string
	lines map[int]*fakeLine
	pwms  []*fakePWM
	bus   *fakeBus
	slept []time.Duration
}

func installFakes(t *testing.T) *rig {
	t.Helper()
	r := &rig{lines: map[int]*fakeLine{}, bus: &fakeBus{devs: map[uint16]*fakeADS{}}}
	oldPWM, oldOut, oldIn, oldI2C, oldSleep := openPWMFn, openOutputFn, openInputFn, openI2CFn, sleep
	openPWMFn = func(ch int, _ time.Duration) (pwmDriver, error) {
		p := &fakePWM{name: fmt.Sprintf("pwm%d", ch), log: &r.log}
		r.pwms = append(r.pwms, p)
		return p, nil
	}
	openOutputFn = func(pin int) (outputLine, error) {
		l := &fakeLine{name: fmt.Sprintf("gpio%d", pin), log: &r.log}
		r.lines[pin] = l
		return l, nil
	}
	openInputFn = func(pin int) (inputLine, error) {
		l := &fakeLine{name: fmt.Sprintf("gpio%d", pin)}
		r.lines[pin] = l
		return l, nil
	}
	openI2CFn = func(string) (i2cBus, error) { return r.bus, nil }
	sleep = func(d time.Duration) { r.slept = append(r.slept, d) }
	t.Cleanup(func() {
		openPWMFn, openOutputFn, openInputFn, openI2CFn, sleep = oldPWM, oldOut, oldIn, oldI2C, oldSleep
	})
	return r
}

func testConfig() Config {
	cfg := Config{
		I2CBus:    "/dev/i2c-1",
		Light:     Channel{Addr: 0x49, Input: 0},
		Line:      [2]Channel{{Addr: 0x49, Input: 1}, {Addr: 0x49, Input: 2}},
		LeftPWM:   0,
		RightPWM:  1,
		PWMPeriod: 50 * time.Microsecond,
		LeftDir:   5,
		RightDir:  6,
		Switches:  []int{17, 27},
		LEDs:      []int{22, 23},
		MoveSpeed: 40,
		MMPerSec:  100,
		DegPerSec: 180,
	}
	for i := range cfg.IR {
		cfg.IR[i] = Channel{Addr: 0x48 + uint16(i/4)*2, Input: i % 4}
	}
	return cfg
}

func TestBot_SetMotorsDirectionAndDuty(t *testing.T) {
	r := installFakes(t)
	b, err := Open(testConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.log = nil
	if err := b.SetMotors(30, -150); err != nil {
		t.Fatalf("SetMotors: %v", err)
	}
	want := "[gpio5=0 pwm0 duty 30 gpio6=1 pwm1 duty 100]"
	if got := fmt.Sprint(r.log); got != want {
		t.Fatalf("log=%s want %s", got, want)
	}
}

func TestBot_TimedMoves(t *testing.T) {
	r := installFakes(t)
	b, err := Open(testConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b.Forward(50); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := b.Right(90); err != nil {
		t.Fatalf("Right: %v", err)
	}
	if err := b.Left(0); err != nil {
		t.Fatalf("Left: %v", err)
	}
	want := []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}
	if fmt.Sprint(r.slept) != fmt.Sprint(want) {
		t.Fatalf("slept=%v want %v", r.slept, want)
	}
	// The right turn spins the left wheel forward and the right one back,
	// then stops both.
	tail := r.log[len(r.log)-8:]
	wantTail := "[gpio5=0 pwm0 duty 40 gpio6=1 pwm1 duty 40 gpio5=0 pwm0 duty 0 gpio6=0 pwm1 duty 0]"
	if fmt.Sprint(tail) != wantTail {
		t.Fatalf("tail=%v want %s", tail, wantTail)
	}
}

func TestBot_AnalogSensors(t *testing.T) {
	r := installFakes(t)
	b, err := Open(testConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.bus.devs[0x4A].raw[1] = 0x7FFF // IR 5 (rear-right): full scale
	r.bus.devs[0x49].raw[0] = 3200   // light
	r.bus.devs[0x49].raw[2] = -40    // right line, clipped to 0

	if v, err := b.ReadIR(robot.IRRearRight); err != nil || v != 1023 {
		t.Fatalf("ReadIR=%d err=%v want 1023", v, err)
	}
	if v, err := b.ReadLight(); err != nil || v != 100 {
		t.Fatalf("ReadLight=%d err=%v want 100", v, err)
	}
	if v, err := b.ReadLine(robot.LineRight); err != nil || v != 0 {
		t.Fatalf("ReadLine=%d err=%v want 0", v, err)
	}
	if _, err := b.ReadIR(robot.IR(9)); err == nil {
		t.Fatalf("expected error for unknown ir sensor")
	}
	if _, err := b.ReadLine(robot.LineChannel(3)); err == nil {
		t.Fatalf("expected error for unknown line channel")
	}
}

func TestBot_SwitchesAndLEDs(t *testing.T) {
	r := installFakes(t)
	b, err := Open(testConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.lines[27].value = 1
	if on, _ := b.ReadSwitch(0); on {
		t.Fatalf("switch 0 pressed")
	}
	if on, _ := b.ReadSwitch(1); !on {
		t.Fatalf("switch 1 not pressed")
	}
	if _, err := b.ReadSwitch(2); err == nil {
		t.Fatalf("expected error for unwired switch")
	}

	if err := b.SetLED(1, true); err != nil || r.lines[23].value != 1 {
		t.Fatalf("SetLED(1) err=%v value=%d", err, r.lines[23].value)
	}
	if err := b.SetLED(7, true); err != nil {
		t.Fatalf("SetLED on unwired led: %v", err)
	}
}

func TestOpen_ReleasesOnFailure(t *testing.T) {
	r := installFakes(t)
	boom := errors.New("gpio busy")
	openInputFn = func(int) (inputLine, error) { return nil, boom }

	if _, err := Open(testConfig()); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
	for _, p := range r.pwms {
		if !p.closed {
			t.Fatalf("%s not closed", p.name)
		}
	}
	if !r.lines[5].closed || !r.lines[6].closed || !r.bus.closed {
		t.Fatalf("direction lines or bus not released")
	}
}

func TestOpen_RequiresCalibration(t *testing.T) {
	installFakes(t)
	cfg := testConfig()
	cfg.DegPerSec = 0
	if _, err := Open(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestADS1115_TimesOut(t *testing.T) {
	installFakes(t)
	a := ads1115{dev: stuckADS{}}
	if _, err := a.read(0); err == nil {
		t.Fatalf("expected timeout")
	}
	if _, err := a.read(4); err == nil {
		t.Fatalf("expected range error")
	}
}

type stuckADS struct{}

func (stuckADS) Write([]byte) error { return nil }
func (stuckADS) ReadReg(_ byte, dst []byte) error {
	dst[0], dst[1] = 0, 0
	return nil
}
