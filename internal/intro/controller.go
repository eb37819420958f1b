package intro

import (
	"context"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"hny-greeting-service/internal/particles"
	"hny-greeting-service/internal/schedule"
)

const (
	sparkleCount   = 50
	miniBurstRing  = 12
	defaultWidth   = 1280
	defaultHeight  = 720
	defaultProceed = "Open Gift"
)

var miniBurstColors = []string{"#ff0044", "#ffdd00", "#00ffcc", "#ff00ff"}

func debugLogf(format string, args ...any) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("GO_LOG")))
	if v != "debug" && v != "1" && v != "true" {
		return
	}
	log.Printf(format, args...)
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

type Options struct {
	Surface   Surface
	Scheduler schedule.Scheduler
	Script    Script
	Timings   Timings
	Viewport  Viewport
	Rand      *rand.Rand
	// OnMain runs once, after the intro overlay is gone.
	OnMain func()
}

// Controller sequences the intro scenes over a Machine.
type Controller struct {
	machine *Machine
	gate    *Gate
	surface Surface
	sched   schedule.Scheduler
	sim     *particles.Simulator
	rnd     *lockedRand
	script  Script
	timings Timings
	onMain  func()

	mu          sync.Mutex
	started     bool
	sceneCancel context.CancelFunc
}

func NewController(opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.Real{}
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = Viewport{Width: defaultWidth, Height: defaultHeight}
	}
	if opts.Script.ProceedLabel == "" {
		opts.Script.ProceedLabel = defaultProceed
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rnd := &lockedRand{r: opts.Rand}
	sim := particles.NewSimulator(rand.New(rand.NewSource(opts.Rand.Int63())))
	m := NewMachine()

	c := &Controller{
		machine: m,
		surface: opts.Surface,
		sched:   opts.Scheduler,
		sim:     sim,
		rnd:     rnd,
		script:  opts.Script,
		timings: opts.Timings,
		onMain:  opts.OnMain,
	}
	c.gate = &Gate{
		machine:  m,
		surface:  opts.Surface,
		sched:    opts.Scheduler,
		sim:      sim,
		rnd:      rnd,
		script:   opts.Script,
		timings:  opts.Timings,
		viewport: opts.Viewport,
		skip:     c.EnterFlower,
	}
	return c
}

func (c *Controller) State() State                    { return c.machine.State() }
func (c *Controller) Gate() *Gate                     { return c.gate }
func (c *Controller) Simulator() *particles.Simulator { return c.sim }

// Start schedules the end of the simulated asset load. Only the first call
// has an effect.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()
	c.sched.AfterFunc(c.timings.LoadDelay, func() { c.EnterFireworks() })
}

func (c *Controller) EnterFireworks() State {
	state, ok := c.machine.Advance(Fireworks)
	if !ok {
		return state
	}
	c.surface.Emit(EventScene, SceneChange{Scene: "loader", Visible: false, State: state, FadeMS: c.timings.UIFade.Milliseconds()})
	c.surface.Emit(EventScene, SceneChange{Scene: "game", Visible: true, State: state, FadeMS: c.timings.UIFade.Milliseconds()})
	c.surface.Emit(EventResize, c.gate.viewport)

	ctx := c.newScene()
	stride := 1
	if c.timings.Frame > 0 && c.timings.FrameEmit > c.timings.Frame {
		stride = int(c.timings.FrameEmit / c.timings.Frame)
	}
	ticks, shown := 0, 0
	c.sched.Every(ctx, c.timings.Frame, func() {
		if !c.machine.Is(Fireworks) {
			return
		}
		live := c.sim.Tick()
		ticks++
		switch {
		case live == 0 && shown == 0:
			return
		case live > 0 && ticks%stride != 0:
			return
		}
		shown = live
		c.surface.Emit(EventFrame, Frame{Live: live, Particles: c.sim.Snapshot()})
	})
	debugLogf("intro state=%s", state)
	return state
}

// Proceed activates the gift affordance. It is rejected until the gate has
// shown it.
func (c *Controller) Proceed() (State, bool) {
	if !c.gate.ProceedReady() {
		return c.machine.State(), false
	}
	before := c.machine.State()
	after := c.EnterFlower()
	return after, after != before
}

func (c *Controller) EnterFlower() State {
	state, ok := c.machine.Advance(Flower)
	if !ok {
		return state
	}
	c.cancelScene()
	c.sim.Clear()
	c.surface.Emit(EventScene, SceneChange{Scene: "game", Visible: false, State: state, FadeMS: c.timings.FlowerFade.Milliseconds()})
	c.sched.AfterFunc(c.timings.FlowerFade, c.revealFlower)
	debugLogf("intro state=%s", state)
	return state
}

func (c *Controller) revealFlower() {
	if !c.machine.Is(Flower) {
		return
	}
	if !c.surface.Has(ElementFlowerScene) {
		c.EnterMain()
		return
	}
	c.surface.Emit(EventScene, SceneChange{Scene: "flower", Visible: true, State: Flower})
	c.surface.Emit(EventSparkles, c.sparkles())

	ctx := c.newScene()
	c.sched.Every(ctx, c.timings.FireflyEvery, c.spawnFirefly)
	c.sched.Every(ctx, c.timings.MiniBurstEvery, c.spawnMiniBurst)

	if !c.surface.Has(ElementFlowerTitle) {
		c.EnterMain()
		return
	}
	c.typeTitle(Glyphs(c.script.FlowerTitle), 0, "")
}

func (c *Controller) sparkles() []Sparkle {
	out := make([]Sparkle, 0, sparkleCount)
	for i := 0; i < sparkleCount; i++ {
		color := "white"
		if c.rnd.Float64() > 0.8 {
			color = "#ffdf00"
		}
		out = append(out, Sparkle{
			LeftPct: c.rnd.Float64() * 100,
			TopPct:  c.rnd.Float64() * 80,
			DelayS:  c.rnd.Float64() * 3,
			Color:   color,
		})
	}
	return out
}

func (c *Controller) spawnFirefly() {
	if !c.machine.Is(Flower) {
		return
	}
	c.surface.Emit(EventFirefly, Firefly{
		LeftPct:   c.rnd.Float64() * 100,
		TopPct:    c.rnd.Float64()*40 + 60,
		DurationS: c.rnd.Float64()*3 + 4,
		TTLMS:     c.timings.FireflyTTL.Milliseconds(),
	})
}

func (c *Controller) spawnMiniBurst() {
	if !c.machine.Is(Flower) {
		return
	}
	b := MiniBurst{
		XPct:   c.rnd.Float64() * 100,
		YPct:   c.rnd.Float64() * 50,
		Color:  miniBurstColors[int(c.rnd.Float64()*float64(len(miniBurstColors)))%len(miniBurstColors)],
		Sparks: make([]Spark, 0, miniBurstRing),
	}
	for i := 0; i < miniBurstRing; i++ {
		angle := math.Pi * 2 * float64(i) / miniBurstRing
		dist := c.rnd.Float64()*50 + 30
		b.Sparks = append(b.Sparks, Spark{DX: math.Cos(angle) * dist, DY: math.Sin(angle) * dist})
	}
	c.surface.Emit(EventMiniBurst, b)
}

func (c *Controller) typeTitle(glyphs []string, i int, text string) {
	if !c.machine.Is(Flower) {
		return
	}
	if i >= len(glyphs) {
		c.sched.AfterFunc(c.timings.TitleSettle, func() { c.EnterMain() })
		return
	}
	text += glyphs[i]
	c.surface.Emit(EventTitleGlyph, TitleGlyph{Index: i, Glyph: glyphs[i], Text: text})
	c.sched.AfterFunc(c.timings.TitleStagger, func() { c.typeTitle(glyphs, i+1, text) })
}

// EnterMain removes the intro overlay and hands over to the main timeline.
func (c *Controller) EnterMain() State {
	state, ok := c.machine.Advance(Main)
	if !ok {
		return state
	}
	c.cancelScene()
	c.sim.Clear()
	c.surface.Emit(EventScene, SceneChange{Scene: "overlay", Visible: false, State: state, FadeMS: c.timings.OverlayFade.Milliseconds()})
	c.sched.AfterFunc(c.timings.OverlayFade, func() {
		c.surface.Emit(EventOverlayRemoved, SceneChange{Scene: "overlay", Visible: false, State: Main})
		if c.onMain != nil {
			c.onMain()
		}
	})
	debugLogf("intro state=%s", state)
	return state
}

// Shutdown stops any repeating scene task.
func (c *Controller) Shutdown() {
	c.cancelScene()
}

func (c *Controller) newScene() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sceneCancel != nil {
		c.sceneCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.sceneCancel = cancel
	return ctx
}

func (c *Controller) cancelScene() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sceneCancel != nil {
		c.sceneCancel()
		c.sceneCancel = nil
	}
}
