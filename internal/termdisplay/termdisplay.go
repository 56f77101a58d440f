// Package termdisplay shows the robot's LCD and LED strip in a terminal.
//
// Every LCD pixel is one terminal cell. Plot and ClearDisplay only touch an
// in-memory framebuffer; Flush copies it to the screen, so the explorer can
// redraw the whole map without flicker.
package termdisplay

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"maze-runner/internal/robot"
)

const (
	pixelOn  = '█'
	ledOn    = '●'
	ledOff   = '○'
	ledCount = robot.IRCount
)

var (
	frameStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	ledStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

type Display struct {
	screen tcell.Screen
	width  int
	height int

	mu   sync.Mutex
	fb   []bool
	leds [ledCount]bool

	quit     chan struct{}
	quitOnce sync.Once
}

var (
	_ robot.Display = (*Display)(nil)
	_ robot.Flusher = (*Display)(nil)
	_ robot.LEDs    = (*Display)(nil)
)

// New initialises screen and draws an empty frame. The screen must be at
// least width+2 columns by height+4 rows.
func New(screen tcell.Screen, width, height int) (*Display, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("termdisplay: invalid size %dx%d", width, height)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("termdisplay: init screen: %w", err)
	}
	screen.HideCursor()
	d := &Display{
		screen: screen,
		width:  width,
		height: height,
		fb:     make([]bool, width*height),
		quit:   make(chan struct{}),
	}
	d.drawBorder()
	go d.pollKeys()
	return d, d.Flush()
}

// Done is closed when the user presses q, Esc or Ctrl-C. The screen owns the
// terminal in raw mode, so Ctrl-C never reaches the process as a signal.
func (d *Display) Done() <-chan struct{} {
	return d.quit
}

func (d *Display) pollKeys() {
	for {
		switch ev := d.screen.PollEvent().(type) {
		case nil:
			// Fini was called.
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				d.quitOnce.Do(func() { close(d.quit) })
			}
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}
}

// Open uses the process's terminal.
func Open(width, height int) (*Display, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("termdisplay: %w", err)
	}
	return New(s, width, height)
}

func (d *Display) ClearDisplay() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.fb)
	return nil
}

// Plot sets one pixel. Pixels outside the LCD are clipped like on the
// hardware.
func (d *Display) Plot(x, y int) error {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fb[y*d.width+x] = true
	return nil
}

func (d *Display) SetLED(n int, on bool) error {
	if n < 0 || n >= ledCount {
		return nil
	}
	d.mu.Lock()
	d.leds[n] = on
	d.mu.Unlock()
	return d.Flush()
}

func (d *Display) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			r := ' '
			if d.fb[y*d.width+x] {
				r = pixelOn
			}
			d.screen.SetContent(x+1, y+1, r, nil, frameStyle)
		}
	}
	row := d.height + 2
	for i, on := range d.leds {
		r := ledOff
		if on {
			r = ledOn
		}
		d.screen.SetContent(1+2*i, row, r, nil, ledStyle)
	}
	d.screen.Show()
	return nil
}

func (d *Display) drawBorder() {
	right, bottom := d.width+1, d.height+1
	for x := 1; x < right; x++ {
		d.screen.SetContent(x, 0, tcell.RuneHLine, nil, frameStyle)
		d.screen.SetContent(x, bottom, tcell.RuneHLine, nil, frameStyle)
	}
	for y := 1; y < bottom; y++ {
		d.screen.SetContent(0, y, tcell.RuneVLine, nil, frameStyle)
		d.screen.SetContent(right, y, tcell.RuneVLine, nil, frameStyle)
	}
	d.screen.SetContent(0, 0, tcell.RuneULCorner, nil, frameStyle)
	d.screen.SetContent(right, 0, tcell.RuneURCorner, nil, frameStyle)
	d.screen.SetContent(0, bottom, tcell.RuneLLCorner, nil, frameStyle)
	d.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, frameStyle)
}

// Close restores the terminal.
func (d *Display) Close() error {
	d.screen.Fini()
	return nil
}
