package pibot

import "time"

// pwmDriver is one hardware PWM channel. Duty is in percent (0..100).
//
// Close should be best-effort and leave the output off.
type pwmDriver interface {
	SetDutyPercent(p float64) error
	Close() error
}

type outputLine interface {
	SetValue(v int) error
	Close() error
}

// inputLine reads 1 when the input is active (pressed or detected).
type inputLine interface {
	Value() (int, error)
	Close() error
}

// regDev is a device on the i2c bus with 8-bit register addresses.
type regDev interface {
	ReadReg(reg byte, dst []byte) error
	Write(p []byte) error
}

type i2cBus interface {
	Dev(addr uint16) regDev
	Close() error
}

var (
	openPWMFn    = openPWM
	openOutputFn = openOutput
	openInputFn  = openInput
	openI2CFn    = openI2C
	sleep        = time.Sleep
)
