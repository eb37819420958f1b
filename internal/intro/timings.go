package intro

import "time"

type Timings struct {
	LoadDelay      time.Duration
	UIFade         time.Duration
	Frame          time.Duration
	FrameEmit      time.Duration
	RevealFadeOut  time.Duration
	RevealStagger  time.Duration
	RevealChar     time.Duration
	Settle         time.Duration
	FinaleSpacing  time.Duration
	FlowerFade     time.Duration
	FireflyEvery   time.Duration
	FireflyTTL     time.Duration
	MiniBurstEvery time.Duration
	TitleStagger   time.Duration
	TitleSettle    time.Duration
	OverlayFade    time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		LoadDelay:      2 * time.Second,
		UIFade:         time.Second,
		Frame:          time.Second / 60,
		FrameEmit:      100 * time.Millisecond,
		RevealFadeOut:  200 * time.Millisecond,
		RevealStagger:  30 * time.Millisecond,
		RevealChar:     50 * time.Millisecond,
		Settle:         time.Second,
		FinaleSpacing:  300 * time.Millisecond,
		FlowerFade:     time.Second,
		FireflyEvery:   800 * time.Millisecond,
		FireflyTTL:     8 * time.Second,
		MiniBurstEvery: 1500 * time.Millisecond,
		TitleStagger:   150 * time.Millisecond,
		TitleSettle:    5 * time.Second,
		OverlayFade:    2 * time.Second,
	}
}

// Script is the fixed narrative of the intro.
type Script struct {
	Lines        []string `yaml:"lines" json:"lines"`
	FlowerTitle  string   `yaml:"flower_title" json:"flower_title"`
	ProceedLabel string   `yaml:"proceed_label" json:"proceed_label"`
}
