package intro

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hny-greeting-service/internal/schedule"
)

type recordingSurface struct {
	mu      sync.Mutex
	events  []string
	payload []any
	absent  map[Element]bool
}

func (s *recordingSurface) Emit(event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.payload = append(s.payload, payload)
}

func (s *recordingSurface) Has(el Element) bool {
	return !s.absent[el]
}

func (s *recordingSurface) count(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e == event {
			n++
		}
	}
	return n
}

func (s *recordingSurface) last(event string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i] == event {
			return s.payload[i]
		}
	}
	return nil
}

var testScript = Script{
	Lines:       []string{"one", "two", "three", "four", "five"},
	FlowerTitle: "HNY",
}

func newTestController(t *testing.T, surface *recordingSurface, script Script) (*Controller, *schedule.Manual, *int) {
	t.Helper()
	sched := schedule.NewManual()
	mains := 0
	c := NewController(Options{
		Surface:   surface,
		Scheduler: sched,
		Script:    script,
		Rand:      rand.New(rand.NewSource(42)),
		OnMain:    func() { mains++ },
	})
	return c, sched, &mains
}

func startFireworks(t *testing.T, c *Controller, sched *schedule.Manual) {
	t.Helper()
	c.Start()
	sched.Advance(DefaultTimings().LoadDelay)
	require.Equal(t, Fireworks, c.State())
}

func TestMachineOnlyMovesForward(t *testing.T) {
	m := NewMachine()

	_, ok := m.Advance(Flower)
	assert.False(t, ok)
	_, ok = m.Advance(Main)
	assert.False(t, ok)

	s, ok := m.Advance(Fireworks)
	require.True(t, ok)
	assert.Equal(t, Fireworks, s)

	s, ok = m.Advance(Fireworks)
	assert.False(t, ok)
	assert.Equal(t, Fireworks, s)

	_, ok = m.Advance(Flower)
	require.True(t, ok)
	_, ok = m.Advance(Main)
	require.True(t, ok)

	for _, to := range []State{Loading, Fireworks, Flower, Main} {
		s, ok = m.Advance(to)
		assert.False(t, ok)
		assert.Equal(t, Main, s)
	}
}

func TestMachineMainReachableFromFireworks(t *testing.T) {
	m := NewMachine()
	m.Advance(Fireworks)
	s, ok := m.Advance(Main)
	assert.True(t, ok)
	assert.Equal(t, Main, s)
}

func TestStartEntersFireworksAfterLoadDelay(t *testing.T) {
	surface := &recordingSurface{}
	c, sched, _ := newTestController(t, surface, testScript)

	c.Start()
	c.Start()
	sched.Advance(DefaultTimings().LoadDelay - time.Millisecond)
	assert.Equal(t, Loading, c.State())

	sched.Advance(time.Millisecond)
	assert.Equal(t, Fireworks, c.State())
	assert.Equal(t, 1, surface.count(EventResize))
}

func TestInteractRejectedOutsideFireworks(t *testing.T) {
	surface := &recordingSurface{}
	c, _, _ := newTestController(t, surface, testScript)

	res, ok := c.Gate().Interact(10, 10)
	assert.False(t, ok)
	assert.Equal(t, 0, res.Clicks)
	assert.Equal(t, 0, surface.count(EventBurst))
}

func TestInteractCountsToFiveThenRejects(t *testing.T) {
	surface := &recordingSurface{}
	c, sched, _ := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)

	for i := 0; i < RequiredClicks; i++ {
		before := c.Gate().Clicks()
		res, ok := c.Gate().Interact(50, 60)
		require.True(t, ok)
		assert.Equal(t, before+1, res.Clicks)
		assert.Equal(t, testScript.Lines[i], res.Line)
		assert.Equal(t, 50, res.Burst)
	}

	res, ok := c.Gate().Interact(1, 1)
	assert.False(t, ok)
	assert.Equal(t, RequiredClicks, res.Clicks)
	assert.Equal(t, RequiredClicks, surface.count(EventReveal))

	reveal := surface.last(EventReveal).(Reveal)
	assert.Equal(t, RequiredClicks, reveal.Seq)
	assert.Equal(t, []string{"f", "i", "v", "e"}, reveal.Glyphs)
}

func TestShortScriptStillBursts(t *testing.T) {
	surface := &recordingSurface{}
	c, sched, _ := newTestController(t, surface, Script{Lines: []string{"only"}})
	startFireworks(t, c, sched)

	c.Gate().Interact(0, 0)
	res, ok := c.Gate().Interact(0, 0)
	require.True(t, ok)
	assert.Empty(t, res.Line)
	assert.Equal(t, 1, surface.count(EventReveal))
	assert.Equal(t, 2, surface.count(EventBurst))
}

func TestProceedAppearsOnceAfterSettle(t *testing.T) {
	surface := &recordingSurface{}
	c, sched, _ := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)

	for i := 0; i < RequiredClicks; i++ {
		c.Gate().Interact(0, 0)
	}
	_, ok := c.Proceed()
	assert.False(t, ok, "proceed must wait for the affordance")

	sched.Advance(DefaultTimings().Settle)
	assert.True(t, c.Gate().ProceedReady())
	assert.Equal(t, 1, surface.count(EventProceed))

	sched.Advance(DefaultTimings().FinaleSpacing * finaleBursts)
	assert.Equal(t, RequiredClicks+finaleBursts, surface.count(EventBurst))
	assert.Equal(t, 1, surface.count(EventProceed))

	state, ok := c.Proceed()
	require.True(t, ok)
	assert.Equal(t, Flower, state)

	state, ok = c.Proceed()
	assert.False(t, ok)
	assert.Equal(t, Flower, state)
}

func TestFullSequenceReachesMainOnce(t *testing.T) {
	surface := &recordingSurface{}
	c, sched, mains := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)
	for i := 0; i < RequiredClicks; i++ {
		c.Gate().Interact(0, 0)
	}
	sched.Advance(DefaultTimings().Settle)
	c.Proceed()

	tm := DefaultTimings()
	sched.Advance(tm.FlowerFade)
	assert.Equal(t, 1, surface.count(EventSparkles))
	sparkles := surface.last(EventSparkles).([]Sparkle)
	assert.Len(t, sparkles, sparkleCount)

	sched.Advance(3 * tm.TitleStagger)
	assert.Equal(t, 3, surface.count(EventTitleGlyph))
	assert.Equal(t, "HNY", surface.last(EventTitleGlyph).(TitleGlyph).Text)
	assert.Equal(t, Flower, c.State())

	sched.Advance(tm.TitleSettle)
	assert.Equal(t, Main, c.State())
	fireflies := surface.count(EventFirefly)
	bursts := surface.count(EventMiniBurst)
	assert.Positive(t, fireflies)
	assert.Positive(t, bursts)

	sched.Advance(tm.OverlayFade)
	assert.Equal(t, 1, *mains)
	assert.Equal(t, 1, surface.count(EventOverlayRemoved))

	assert.Equal(t, Main, c.EnterMain())
	assert.Equal(t, Main, c.EnterFlower())
	sched.Advance(10 * time.Second)
	assert.Equal(t, 1, *mains)
	assert.Equal(t, fireflies, surface.count(EventFirefly))
	assert.Equal(t, bursts, surface.count(EventMiniBurst))
	assert.Zero(t, sched.Pending())
}

func TestMissingFlowerSceneSkipsToMain(t *testing.T) {
	surface := &recordingSurface{absent: map[Element]bool{ElementFlowerScene: true}}
	c, sched, mains := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)

	c.EnterFlower()
	sched.Advance(DefaultTimings().FlowerFade)
	assert.Equal(t, Main, c.State())
	assert.Zero(t, surface.count(EventSparkles))

	sched.Advance(DefaultTimings().OverlayFade)
	assert.Equal(t, 1, *mains)
}

func TestMissingTitleSkipsToMain(t *testing.T) {
	surface := &recordingSurface{absent: map[Element]bool{ElementFlowerTitle: true}}
	c, sched, _ := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)

	c.EnterFlower()
	sched.Advance(DefaultTimings().FlowerFade)
	assert.Equal(t, Main, c.State())
	assert.Zero(t, surface.count(EventTitleGlyph))
}

func TestMissingGameUISkipsAffordance(t *testing.T) {
	surface := &recordingSurface{absent: map[Element]bool{ElementGameUI: true}}
	c, sched, _ := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)
	for i := 0; i < RequiredClicks; i++ {
		c.Gate().Interact(0, 0)
	}
	sched.Advance(DefaultTimings().Settle)

	assert.Zero(t, surface.count(EventProceed))
	assert.Equal(t, Flower, c.State())
}

func TestParticlesTickOnlyDuringFireworks(t *testing.T) {
	surface := &recordingSurface{}
	c, sched, _ := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)

	c.Gate().Interact(0, 0)
	require.Equal(t, 50, c.Simulator().Len())
	sched.Advance(DefaultTimings().Frame * 60)
	assert.Zero(t, c.Simulator().Len())

	c.EnterMain()
	c.Gate().Interact(0, 0)
	assert.Zero(t, c.Simulator().Len())
}

func TestParticleFramesReachTheSurface(t *testing.T) {
	surface := &recordingSurface{}
	c, sched, _ := newTestController(t, surface, testScript)
	startFireworks(t, c, sched)

	sched.Advance(DefaultTimings().Frame * 30)
	assert.Zero(t, surface.count(EventFrame), "an empty field sends no frames")

	c.Gate().Interact(0, 0)
	burst, ok := surface.last(EventBurst).(Burst)
	require.True(t, ok)

	sched.Advance(DefaultTimings().FrameEmit)
	require.Equal(t, 1, surface.count(EventFrame))
	frame, ok := surface.last(EventFrame).(Frame)
	require.True(t, ok)
	assert.Equal(t, 50, frame.Live)
	require.Len(t, frame.Particles, 50)
	assert.Less(t, frame.Particles[0].Life, burst.Particles[0].Life)
	assert.NotEqual(t, burst.Particles[0].X, frame.Particles[0].X)

	sched.Advance(DefaultTimings().Frame * 60)
	frame, ok = surface.last(EventFrame).(Frame)
	require.True(t, ok)
	assert.Zero(t, frame.Live)
	assert.Empty(t, frame.Particles)

	sent := surface.count(EventFrame)
	sched.Advance(time.Second)
	assert.Equal(t, sent, surface.count(EventFrame))
}

func TestGlyphsKeepCombiningMarks(t *testing.T) {
	assert.Equal(t, []string{"ดี"}, Glyphs("ดี"))
	assert.Equal(t, []string{"a", "b"}, Glyphs("ab"))
	assert.Empty(t, Glyphs(""))
}
