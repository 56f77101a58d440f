//go:build linux

package pibot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// I2C_RDWR lets a register read go out as one combined write+read with a
// repeated start, which the ADS1115 requires.
const (
	i2cMrd  = 0x0001
	i2cRdwr = 0x0707
)

type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type i2cRdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// linuxBus is an opened /dev/i2c-N. Transfers are not safe for concurrent
// use; the controller loop is the only caller.
type linuxBus struct {
	f *os.File
}

func openI2C(path string) (i2cBus, error) {
	f, err := os.OpenFile(filepath.Clean(path), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("pibot: open %s: %w", path, err)
	}
	return &linuxBus{f: f}, nil
}

func (b *linuxBus) Close() error {
	if b == nil || b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}

func (b *linuxBus) Dev(addr uint16) regDev {
	return &linuxDev{bus: b, addr: addr}
}

type linuxDev struct {
	bus  *linuxBus
	addr uint16
}

func (d *linuxDev) Write(p []byte) error {
	return d.tx(p, nil)
}

func (d *linuxDev) ReadReg(reg byte, dst []byte) error {
	return d.tx([]byte{reg}, dst)
}

func (d *linuxDev) tx(w, r []byte) error {
	if d == nil || d.bus == nil || d.bus.f == nil {
		return errors.New("pibot: i2c bus closed")
	}
	if d.addr == 0 || d.addr > 0x7F {
		return fmt.Errorf("pibot: invalid i2c addr 0x%X", d.addr)
	}
	msgs := make([]i2cMsg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, i2cMsg{addr: d.addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) > 0 {
		msgs = append(msgs, i2cMsg{addr: d.addr, flags: i2cMrd, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	if len(msgs) == 0 {
		return nil
	}
	data := i2cRdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.bus.f.Fd(), uintptr(i2cRdwr), uintptr(unsafe.Pointer(&data)))
	if errno != 0 {
		return errno
	}
	return nil
}
