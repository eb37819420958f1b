package particles

import (
	"math"
	"math/rand"
	"sync"
)

const (
	BurstSize = 50

	startLife = 100.0
	lifeDecay = 2.0
	gravity   = 0.05
	friction  = 0.95
)

// Palette is the pink/rose/gold set used by intro bursts.
var Palette = []string{"#ff9aa2", "#ffb7b2", "#ff6f91", "#ff9671", "#ffc75f", "#f9f871", "#e84393", "#fd79a8"}

type Particle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
	Life  float64 `json:"life"`
	Alpha float64 `json:"alpha"`
}

// Update advances p by one frame.
func (p *Particle) Update() {
	p.X += p.VX
	p.Y += p.VY
	p.VY += gravity
	p.VX *= friction
	p.VY *= friction
	p.Life -= lifeDecay
	p.Alpha = math.Max(p.Life/startLife, 0)
}

func (p Particle) Dead() bool { return p.Life <= 0 }

// Simulator owns every live particle of one intro surface.
type Simulator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	particles []Particle
}

func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Simulator{rng: rng}
}

// Burst spawns n particles at (x, y) with random angle, speed and size,
// colored from palette, and returns a copy of the new particles.
func (s *Simulator) Burst(x, y float64, n int, palette []string) []Particle {
	if len(palette) == 0 {
		palette = Palette
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Particle, 0, n)
	for i := 0; i < n; i++ {
		angle := s.rng.Float64() * math.Pi * 2
		speed := s.rng.Float64()*5 + 2
		p := Particle{
			X:     x,
			Y:     y,
			VX:    math.Cos(angle) * speed,
			VY:    math.Sin(angle) * speed,
			Color: palette[s.rng.Intn(len(palette))],
			Size:  s.rng.Float64()*3 + 2,
			Life:  startLife,
			Alpha: 1,
		}
		out = append(out, p)
	}
	s.particles = append(s.particles, out...)
	return out
}

// Tick updates every particle once and drops the dead ones. It returns the
// number still alive.
func (s *Simulator) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.particles[:0]
	for i := range s.particles {
		p := s.particles[i]
		p.Update()
		if p.Dead() {
			continue
		}
		live = append(live, p)
	}
	for i := len(live); i < len(s.particles); i++ {
		s.particles[i] = Particle{}
	}
	s.particles = live
	return len(live)
}

func (s *Simulator) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.particles)
}

func (s *Simulator) Snapshot() []Particle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Particle(nil), s.particles...)
}

func (s *Simulator) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.particles = nil
}
