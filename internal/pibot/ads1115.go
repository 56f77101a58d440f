package pibot

import (
	"encoding/binary"
	"fmt"
	"time"
)

// ADS1115 registers and config bits.
const (
	adsRegConversion = 0x00
	adsRegConfig     = 0x01

	adsStart      = 1 << 15 // OS: begin a single conversion / conversion done
	adsMuxSingle0 = 0x4     // AINx vs GND, x added on top
	adsPGA4V      = 0x1 << 9
	adsSingleShot = 1 << 8
	adsRate128    = 0x4 << 5
	adsCompOff    = 0x3
)

// adsConversionPolls bounds the wait for one conversion (about 8ms at 128
// samples per second).
const adsConversionPolls = 20

// ads1115 reads single-ended channels of one ADS1115 and scales them to
// 0..1023, the range the thresholds are expressed in.
type ads1115 struct {
	dev regDev
}

func (a ads1115) read(channel int) (int, error) {
	if channel < 0 || channel > 3 {
		return 0, fmt.Errorf("pibot: ads1115 channel %d out of range", channel)
	}
	cfg := uint16(adsStart | (adsMuxSingle0+channel)<<12 | adsPGA4V | adsSingleShot | adsRate128 | adsCompOff)
	if err := a.dev.Write([]byte{adsRegConfig, byte(cfg >> 8), byte(cfg)}); err != nil {
		return 0, fmt.Errorf("pibot: ads1115 start: %w", err)
	}
	var buf [2]byte
	done := false
	for i := 0; i < adsConversionPolls; i++ {
		sleep(time.Millisecond)
		if err := a.dev.ReadReg(adsRegConfig, buf[:]); err != nil {
			return 0, fmt.Errorf("pibot: ads1115 status: %w", err)
		}
		if binary.BigEndian.Uint16(buf[:])&adsStart != 0 {
			done = true
			break
		}
	}
	if !done {
		return 0, fmt.Errorf("pibot: ads1115 conversion on channel %d timed out", channel)
	}
	if err := a.dev.ReadReg(adsRegConversion, buf[:]); err != nil {
		return 0, fmt.Errorf("pibot: ads1115 read: %w", err)
	}
	raw := int16(binary.BigEndian.Uint16(buf[:]))
	if raw < 0 {
		raw = 0
	}
	return int(raw) >> 5, nil
}
