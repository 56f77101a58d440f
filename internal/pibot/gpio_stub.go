//go:build !linux || (!arm && !arm64)

package pibot

import "fmt"

func openOutput(pin int) (outputLine, error) {
	return nil, fmt.Errorf("pibot: gpio unsupported on this platform")
}

func openInput(pin int) (inputLine, error) {
	return nil, fmt.Errorf("pibot: gpio unsupported on this platform")
}
