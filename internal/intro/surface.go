package intro

import (
	"github.com/rivo/uniseg"

	"hny-greeting-service/internal/particles"
)

// Element names an optional piece of the client page.
type Element string

const (
	ElementGameUI      Element = "game_ui"
	ElementFlowerScene Element = "flower_scene"
	ElementFlowerTitle Element = "flower_title"
)

// Surface is the rendering side the intro drives. Emit must not call back
// into the intro.
type Surface interface {
	Emit(event string, payload any)
	Has(el Element) bool
}

const (
	EventScene          = "scene"
	EventResize         = "resize"
	EventBurst          = "burst"
	EventReveal         = "reveal"
	EventProceed        = "proceed"
	EventSparkles       = "sparkles"
	EventFirefly        = "firefly"
	EventMiniBurst      = "mini_burst"
	EventTitleGlyph     = "title_glyph"
	EventOverlayRemoved = "overlay_removed"
	EventFrame          = "frame"
)

type SceneChange struct {
	Scene   string `json:"scene"`
	Visible bool   `json:"visible"`
	State   State  `json:"state"`
	FadeMS  int64  `json:"fade_ms"`
}

type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Burst struct {
	X         float64              `json:"x"`
	Y         float64              `json:"y"`
	Particles []particles.Particle `json:"particles"`
}

// Frame is a throttled view of the live particle field. A frame with
// Live == 0 is sent once when the field empties.
type Frame struct {
	Live      int                  `json:"live"`
	Particles []particles.Particle `json:"particles"`
}

type Reveal struct {
	Seq       int      `json:"seq"`
	Line      int      `json:"line"`
	Glyphs    []string `json:"glyphs"`
	FadeOutMS int64    `json:"fade_out_ms"`
	StaggerMS int64    `json:"stagger_ms"`
	CharMS    int64    `json:"char_ms"`
}

type Proceed struct {
	Label string `json:"label"`
}

type Sparkle struct {
	LeftPct float64 `json:"left_pct"`
	TopPct  float64 `json:"top_pct"`
	DelayS  float64 `json:"delay_s"`
	Color   string  `json:"color"`
}

type Firefly struct {
	LeftPct   float64 `json:"left_pct"`
	TopPct    float64 `json:"top_pct"`
	DurationS float64 `json:"duration_s"`
	TTLMS     int64   `json:"ttl_ms"`
}

type Spark struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type MiniBurst struct {
	XPct   float64 `json:"x_pct"`
	YPct   float64 `json:"y_pct"`
	Color  string  `json:"color"`
	Sparks []Spark `json:"sparks"`
}

type TitleGlyph struct {
	Index int    `json:"index"`
	Glyph string `json:"glyph"`
	Text  string `json:"text"`
}

// Glyphs splits s into user-perceived characters so combining marks stay
// attached to their base letter during reveals.
func Glyphs(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
