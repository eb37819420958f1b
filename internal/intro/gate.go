package intro

import (
	"log"
	"sync"
	"time"

	"hny-greeting-service/internal/particles"
	"hny-greeting-service/internal/schedule"
)

// RequiredClicks is the number of qualifying interactions that opens the gift.
const RequiredClicks = 5

const finaleBursts = 5

type InteractResult struct {
	Clicks int    `json:"clicks"`
	Line   string `json:"line,omitempty"`
	Burst  int    `json:"burst"`
	Done   bool   `json:"done"`
}

// Gate counts qualifying clicks during the fireworks scene and advances the
// narrative one line per click.
type Gate struct {
	mu           sync.Mutex
	machine      *Machine
	surface      Surface
	sched        schedule.Scheduler
	sim          *particles.Simulator
	rnd          *lockedRand
	script       Script
	timings      Timings
	viewport     Viewport
	clicks       int
	revealSeq    int
	proceedReady bool
	// skip replaces the affordance when the page has nowhere to show it.
	skip func() State
}

// Interact handles a click at (x, y). It reports false when the click does
// not qualify.
func (g *Gate) Interact(x, y float64) (InteractResult, bool) {
	if !g.machine.Is(Fireworks) {
		return InteractResult{Clicks: g.Clicks()}, false
	}

	g.mu.Lock()
	if g.clicks >= RequiredClicks {
		res := InteractResult{Clicks: g.clicks, Done: true}
		g.mu.Unlock()
		return res, false
	}
	g.clicks++
	clicks := g.clicks
	res := InteractResult{Clicks: clicks, Done: clicks == RequiredClicks}

	burst := g.sim.Burst(x, y, particles.BurstSize, particles.Palette)
	res.Burst = len(burst)
	g.surface.Emit(EventBurst, Burst{X: x, Y: y, Particles: burst})

	if idx := clicks - 1; idx < len(g.script.Lines) && g.script.Lines[idx] != "" {
		g.revealSeq++
		res.Line = g.script.Lines[idx]
		g.surface.Emit(EventReveal, Reveal{
			Seq:       g.revealSeq,
			Line:      idx,
			Glyphs:    Glyphs(res.Line),
			FadeOutMS: g.timings.RevealFadeOut.Milliseconds(),
			StaggerMS: g.timings.RevealStagger.Milliseconds(),
			CharMS:    g.timings.RevealChar.Milliseconds(),
		})
	}
	g.mu.Unlock()

	if res.Done {
		g.launchFinale()
		g.sched.AfterFunc(g.timings.Settle, g.showProceed)
	}
	debugLogf("intro click=%d line=%t", clicks, res.Line != "")
	return res, true
}

func (g *Gate) Clicks() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clicks
}

// ProceedReady reports whether the gift affordance has been created.
func (g *Gate) ProceedReady() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.proceedReady
}

func (g *Gate) launchFinale() {
	for i := 0; i < finaleBursts; i++ {
		g.sched.AfterFunc(time.Duration(i)*g.timings.FinaleSpacing, func() {
			if !g.machine.Is(Fireworks) {
				return
			}
			x := g.rnd.Float64() * g.viewport.Width
			y := g.rnd.Float64() * g.viewport.Height * 0.8
			burst := g.sim.Burst(x, y, particles.BurstSize, particles.Palette)
			g.surface.Emit(EventBurst, Burst{X: x, Y: y, Particles: burst})
		})
	}
}

func (g *Gate) showProceed() {
	if !g.machine.Is(Fireworks) {
		return
	}
	g.mu.Lock()
	if g.proceedReady {
		g.mu.Unlock()
		return
	}
	g.proceedReady = true
	g.mu.Unlock()

	if !g.surface.Has(ElementGameUI) {
		log.Printf("intro: game ui absent, skipping proceed affordance")
		if g.skip != nil {
			g.skip()
		}
		return
	}
	g.surface.Emit(EventProceed, Proceed{Label: g.script.ProceedLabel})
}
