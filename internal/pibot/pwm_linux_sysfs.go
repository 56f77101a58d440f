//go:build linux && (arm || arm64)

package pibot

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

var pwmSysfsBase = "/sys/class/pwm"

const (
	exportWait  = 500 * time.Millisecond
	sysfsRetry  = 2 * time.Second
	sysfsPollMS = 25
)

// motorPWM is one motor's speed channel under /sys/class/pwm. The Pi needs
// dtoverlay=pwm-2chan; channel 0 is GPIO18 and channel 1 GPIO19.
type motorPWM struct {
	dir     string
	period  uint64
	running bool
}

func openPWM(channel int, period time.Duration) (pwmDriver, error) {
	switch {
	case channel < 0:
		return nil, fmt.Errorf("pibot: invalid pwm channel %d", channel)
	case period <= 0:
		return nil, fmt.Errorf("pibot: invalid pwm period %s", period)
	}
	chip, err := findPWMChip(channel)
	if err != nil {
		return nil, err
	}
	m := &motorPWM{dir: filepath.Join(chip, "pwm"+strconv.Itoa(channel)), period: uint64(period.Nanoseconds())}
	if err := export(chip, channel, m.dir); err != nil {
		return nil, err
	}
	// The kernel rejects a period change on an enabled channel.
	_ = m.set("enable", 0)
	if err := m.set("duty_cycle", 0); err != nil {
		return nil, err
	}
	if err := m.set("period", m.period); err != nil {
		return nil, err
	}
	return m, nil
}

// findPWMChip returns the first pwmchip with more than channel channels.
func findPWMChip(channel int) (string, error) {
	entries, err := os.ReadDir(pwmSysfsBase)
	if err != nil {
		return "", fmt.Errorf("pibot: read %s: %w", pwmSysfsBase, err)
	}
	for _, e := range entries {
		// Entries are symlinks, so e.IsDir() is false.
		if !strings.HasPrefix(e.Name(), "pwmchip") {
			continue
		}
		chip := filepath.Join(pwmSysfsBase, e.Name())
		b, err := os.ReadFile(filepath.Join(chip, "npwm"))
		if err != nil {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(string(b))); err == nil && n > channel {
			return chip, nil
		}
	}
	return "", fmt.Errorf("pibot: no pwmchip has channel %d; enable the pwm-2chan overlay", channel)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// export makes chip/pwmN appear, tolerating a concurrent export.
func export(chip string, channel int, dir string) error {
	if exists(dir) {
		return nil
	}
	if err := writeSysfs(filepath.Join(chip, "export"), strconv.Itoa(channel)); err != nil && !exists(dir) {
		return fmt.Errorf("pibot: export pwm%d: %w", channel, err)
	}
	for end := time.Now().Add(exportWait); !exists(dir); {
		if time.Now().After(end) {
			return fmt.Errorf("pibot: pwm%d missing after export", channel)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *motorPWM) set(attr string, v uint64) error {
	return writeSysfs(filepath.Join(m.dir, attr), strconv.FormatUint(v, 10))
}

func (m *motorPWM) SetDutyPercent(p float64) error {
	p = math.Min(math.Max(p, 0), 100)
	if err := m.set("duty_cycle", uint64(math.Round(float64(m.period)*p/100))); err != nil {
		return err
	}
	if m.running {
		return nil
	}
	if err := m.set("enable", 1); err != nil {
		return err
	}
	m.running = true
	return nil
}

// Close stops the motor and disables the channel.
func (m *motorPWM) Close() error {
	m.running = false
	return errors.Join(m.set("duty_cycle", 0), m.set("enable", 0))
}

// writeSysfs opens without O_TRUNC, which sysfs attributes reject, and
// retries while udev is still fixing permissions on a fresh export.
func writeSysfs(path, value string) error {
	end := time.Now().Add(sysfsRetry)
	for {
		err := writeOnce(path, value)
		if err == nil {
			return nil
		}
		retry := errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.ENOENT)
		if !retry || time.Now().After(end) {
			return err
		}
		time.Sleep(sysfsPollMS * time.Millisecond)
	}
}

func writeOnce(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(value)
	return errors.Join(werr, f.Close())
}
