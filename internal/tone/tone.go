// Package tone plays buzzer notes on the host's speaker.
package tone

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"maze-runner/internal/robot"
)

const sampleRate = beep.SampleRate(44100)

// Buzzer plays square waves, like the piezo on the robot. PlayNote blocks
// until the note has been played.
type Buzzer struct {
	rate beep.SampleRate
	play func(beep.Streamer)
}

var _ robot.Buzzer = (*Buzzer)(nil)

// Open initialises the speaker.
func Open() (*Buzzer, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("tone: speaker init: %w", err)
	}
	return &Buzzer{rate: sampleRate, play: func(s beep.Streamer) { speaker.Play(s) }}, nil
}

func (b *Buzzer) PlayNote(hz int, d time.Duration) error {
	if hz <= 0 || d <= 0 {
		return nil
	}
	done := make(chan struct{})
	b.play(beep.Seq(
		beep.Take(b.rate.N(d), &square{rate: b.rate, hz: float64(hz)}),
		beep.Callback(func() { close(done) }),
	))
	<-done
	return nil
}

func (b *Buzzer) Close() error {
	speaker.Close()
	return nil
}

// square is an endless square wave at a quarter of full scale.
type square struct {
	rate beep.SampleRate
	hz   float64
	pos  int
}

func (s *square) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(s.pos) / float64(s.rate)
		v := 0.25
		if math.Sin(2*math.Pi*s.hz*t) < 0 {
			v = -0.25
		}
		samples[i][0], samples[i][1] = v, v
		s.pos++
	}
	return len(samples), true
}

func (s *square) Err() error { return nil }
