//go:build linux && (arm || arm64)

package pibot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "maze-runner"

// requestLine finds BCM pin on any gpiochip and requests it with opts. Pi 5
// kernels may expose the header on a chip other than gpiochip0.
func requestLine(pin int, opts ...gpiocdev.LineReqOption) (*gpiocdev.Chip, *gpiocdev.Line, error) {
	if pin < 0 {
		return nil, nil, fmt.Errorf("pibot: invalid gpio pin %d", pin)
	}
	lineName := fmt.Sprintf("GPIO%d", pin)

	chips := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if name := e.Name(); strings.HasPrefix(name, "gpiochip") {
			chips = append(chips, filepath.Join("/dev", name))
		}
	}
	opts = append(opts, gpiocdev.WithConsumer(consumer))
	for _, path := range chips {
		chip, err := gpiocdev.NewChip(path)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, opts...)
		if err != nil {
			_ = chip.Close()
			continue
		}
		return chip, line, nil
	}
	return nil, nil, fmt.Errorf("pibot: gpio line %q not found (or busy)", lineName)
}

func openOutput(pin int) (outputLine, error) {
	chip, line, err := requestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &gpiodLine{chip: chip, line: line, output: true}, nil
}

// openInput requests an active-low input with the pull-up enabled, the
// wiring of a button or line sensor that pulls the pin to ground.
func openInput(pin int) (inputLine, error) {
	chip, line, err := requestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow)
	if err != nil {
		return nil, err
	}
	return &gpiodLine{chip: chip, line: line}, nil
}

type gpiodLine struct {
	chip   *gpiocdev.Chip
	line   *gpiocdev.Line
	output bool
}

func (g *gpiodLine) SetValue(v int) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("pibot: gpio line closed")
	}
	return g.line.SetValue(v)
}

func (g *gpiodLine) Value() (int, error) {
	if g == nil || g.line == nil {
		return 0, fmt.Errorf("pibot: gpio line closed")
	}
	return g.line.Value()
}

func (g *gpiodLine) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	if g.output {
		_ = g.line.SetValue(0)
	}
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
