//go:build !linux

package pibot

import "fmt"

func openI2C(path string) (i2cBus, error) {
	return nil, fmt.Errorf("pibot: i2c unsupported on this OS (need linux)")
}
