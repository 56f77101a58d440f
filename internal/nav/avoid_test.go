package nav

import (
	"fmt"
	"testing"

	"maze-runner/internal/robot"
)

func TestAvoider_NothingClose(t *testing.T) {
	a := Avoider{Threshold: 600, NudgeMM: 50, NudgeDeg: 30}
	bot := &fakeBot{}
	for i := range bot.ir {
		bot.ir[i] = 600
	}
	c, err := a.Correct(bot, bot, bot)
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if c.Any() || len(bot.cmds) != 0 {
		t.Fatalf("correction=%+v commands=%v want none", c, bot.cmds)
	}
	for i := 0; i < robot.IRCount; i++ {
		if on, ok := bot.leds[i]; !ok || on {
			t.Fatalf("led %d on=%v set=%v want off", i, on, ok)
		}
	}
}

func TestAvoider_Nudges(t *testing.T) {
	cases := []struct {
		name string
		near []robot.IR
		want []string
	}{
		{"Front", []robot.IR{robot.IRFront}, []string{"backward 50"}},
		{"Left", []robot.IR{robot.IRLeft}, []string{"right 30"}},
		{"FrontLeft", []robot.IR{robot.IRFrontLeft}, []string{"right 30"}},
		{"Right", []robot.IR{robot.IRRight}, []string{"left 30"}},
		{"FrontRight", []robot.IR{robot.IRFrontRight}, []string{"left 30"}},
		{"RearIgnored", []robot.IR{robot.IRRear, robot.IRRearLeft}, nil},
		{"Squeezed", []robot.IR{robot.IRFront, robot.IRLeft, robot.IRRight}, []string{"backward 50", "right 30", "left 30"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Avoider{Threshold: 600, NudgeMM: 50, NudgeDeg: 30}
			bot := &fakeBot{}
			for _, s := range tc.near {
				bot.ir[s] = 900
			}
			if _, err := a.Correct(bot, bot, bot); err != nil {
				t.Fatalf("Correct: %v", err)
			}
			if fmt.Sprint(bot.cmds) != fmt.Sprint(tc.want) {
				t.Fatalf("commands=%v want %v", bot.cmds, tc.want)
			}
			for _, s := range tc.near {
				if !bot.leds[int(s)] {
					t.Fatalf("led %d not lit for %s", s, s)
				}
			}
		})
	}
}

func TestAvoider_NilLEDs(t *testing.T) {
	a := Avoider{Threshold: 600, NudgeMM: 50, NudgeDeg: 30}
	bot := &fakeBot{}
	bot.ir[robot.IRFront] = 700
	c, err := a.Correct(bot, bot, nil)
	if err != nil || !c.Backed {
		t.Fatalf("correction=%+v err=%v", c, err)
	}
}
