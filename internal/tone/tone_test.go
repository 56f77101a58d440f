package tone

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// drain plays s the way the speaker would, on its own goroutine, and reports
// how many samples it produced.
func drain(s beep.Streamer, n chan<- int) {
	buf := make([][2]float64, 512)
	total := 0
	for {
		k, ok := s.Stream(buf)
		total += k
		if !ok {
			break
		}
	}
	n <- total
}

func TestPlayNote_BlocksForTheWholeNote(t *testing.T) {
	samples := make(chan int, 1)
	b := &Buzzer{rate: 8000, play: func(s beep.Streamer) { go drain(s, samples) }}

	if err := b.PlayNote(1200, 200*time.Millisecond); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
	select {
	case got := <-samples:
		if got != 1600 {
			t.Fatalf("samples=%d want 1600", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("streamer not drained")
	}
}

func TestPlayNote_SilentNoteSkipsSpeaker(t *testing.T) {
	b := &Buzzer{rate: 8000, play: func(beep.Streamer) { t.Fatalf("play called") }}
	if err := b.PlayNote(0, time.Second); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
	if err := b.PlayNote(440, 0); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
}

func TestSquare_Levels(t *testing.T) {
	s := &square{rate: 8000, hz: 1000}
	buf := make([][2]float64, 8)
	if n, ok := s.Stream(buf); n != 8 || !ok {
		t.Fatalf("n=%d ok=%v", n, ok)
	}
	// One period is 8 samples: sin(0) is 0 (high), samples 5..7 are low.
	for i, v := range buf {
		want := 0.25
		if i >= 5 {
			want = -0.25
		}
		if v[0] != want || v[1] != want {
			t.Fatalf("sample %d=%v want %v", i, v, want)
		}
	}
}
