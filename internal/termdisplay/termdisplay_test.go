package termdisplay

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func newSimDisplay(t *testing.T, w, h int) (*Display, tcell.SimulationScreen) {
	t.Helper()
	// The simulation screen starts at 80x25, enough for small frames.
	s := tcell.NewSimulationScreen("UTF-8")
	d, err := New(s, w, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, s
}

func runeAt(s tcell.Screen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestDisplay_PlotFlushClear(t *testing.T) {
	d, s := newSimDisplay(t, 16, 8)

	if err := d.Plot(3, 2); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if err := d.Plot(40, 2); err != nil {
		t.Fatalf("Plot out of range should be clipped: %v", err)
	}
	if got := runeAt(s, 4, 3); got == pixelOn {
		t.Fatalf("pixel visible before Flush")
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := runeAt(s, 4, 3); got != pixelOn {
		t.Fatalf("pixel (3,2)=%q want %q", got, pixelOn)
	}
	if got := runeAt(s, 0, 0); got != tcell.RuneULCorner {
		t.Fatalf("corner=%q want %q", got, tcell.RuneULCorner)
	}

	_ = d.ClearDisplay()
	_ = d.Flush()
	if got := runeAt(s, 4, 3); got == pixelOn {
		t.Fatalf("pixel still set after ClearDisplay")
	}
}

func TestDisplay_LEDStrip(t *testing.T) {
	d, s := newSimDisplay(t, 16, 8)
	if err := d.SetLED(2, true); err != nil {
		t.Fatalf("SetLED: %v", err)
	}
	if err := d.SetLED(12, true); err != nil {
		t.Fatalf("SetLED out of range: %v", err)
	}
	row := 8 + 2
	if got := runeAt(s, 5, row); got != ledOn {
		t.Fatalf("led 2=%q want %q", got, ledOn)
	}
	if got := runeAt(s, 1, row); got != ledOff {
		t.Fatalf("led 0=%q want %q", got, ledOff)
	}
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(tcell.NewSimulationScreen("UTF-8"), 0, 8); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDisplay_QuitKey(t *testing.T) {
	d, s := newSimDisplay(t, 16, 8)
	s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	select {
	case <-d.Done():
		t.Fatalf("quit on an unrelated key")
	case <-time.After(20 * time.Millisecond):
	}

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	s.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatalf("Done not closed after q")
	}
}
