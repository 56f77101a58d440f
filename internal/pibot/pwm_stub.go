//go:build !linux || (!arm && !arm64)

package pibot

import (
	"fmt"
	"time"
)

func openPWM(channel int, period time.Duration) (pwmDriver, error) {
	return nil, fmt.Errorf("pibot: pwm unsupported on this platform")
}
