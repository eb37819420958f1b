package chat

import (
	"errors"
	"sync"
	"time"

	"hny-greeting-service/internal/models"
	"hny-greeting-service/internal/schedule"
)

// DefaultChoiceDelay is the pause between a choice and the next site line.
const DefaultChoiceDelay = 500 * time.Millisecond

var (
	ErrNoChoicePending = errors.New("chat: no choice pending")
	ErrUnknownOption   = errors.New("chat: unknown option")
)

type ControlKind string

const (
	ControlContinue ControlKind = "continue"
	ControlOption   ControlKind = "option"
	ControlEnd      ControlKind = "end"
)

type Entry struct {
	Text   string        `json:"text"`
	Sender models.Sender `json:"sender"`
}

type Control struct {
	Kind   ControlKind `json:"kind"`
	Label  string      `json:"label,omitempty"`
	Option int         `json:"option"`
}

type View struct {
	Visible  bool      `json:"visible"`
	History  []Entry   `json:"history"`
	Controls []Control `json:"controls"`
	Cursor   int       `json:"cursor"`
	Finished bool      `json:"finished"`
}

// Step is what playing the script at a cursor produces.
type Step struct {
	Done    bool
	Entry   Entry
	Options []string
	// Cursor is the cursor after the step renders.
	Cursor int
}

// Next computes the step at cursor without touching any view state.
func Next(script []models.ChatStep, cursor int) Step {
	if cursor >= len(script) {
		return Step{Done: true, Cursor: cursor}
	}
	s := script[cursor]
	st := Step{Entry: Entry{Text: s.Text, Sender: s.Sender}, Cursor: cursor}
	if len(s.Options) > 0 {
		st.Options = s.Options
		return st
	}
	st.Cursor = cursor + 1
	return st
}

type Labels struct {
	Continue string
	End      string
}

var DefaultLabels = Labels{Continue: "Click to Continue", End: "End Conversation"}

// Player replays a chat script one step at a time.
type Player struct {
	sched    schedule.Scheduler
	delay    time.Duration
	labels   Labels
	onChange func(View)

	mu       sync.Mutex
	script   []models.ChatStep
	cursor   int
	history  []Entry
	controls []Control
	visible  bool
	awaiting bool
	finished bool
	gen      int
}

func NewPlayer(sched schedule.Scheduler, delay time.Duration, onChange func(View)) *Player {
	if sched == nil {
		sched = schedule.Real{}
	}
	if delay <= 0 {
		delay = DefaultChoiceDelay
	}
	return &Player{sched: sched, delay: delay, labels: DefaultLabels, onChange: onChange}
}

func (p *Player) SetLabels(l Labels) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labels = l
}

// Open starts steps from the top and plays the first one.
func (p *Player) Open(steps []models.ChatStep) {
	p.mu.Lock()
	p.gen++
	p.script = steps
	p.cursor = 0
	p.history = nil
	p.awaiting = false
	p.finished = false
	p.visible = true
	p.controls = []Control{{Kind: ControlContinue, Label: p.labels.Continue}}
	p.advanceLocked()
	v := p.viewLocked()
	p.mu.Unlock()
	p.notify(v)
}

// Advance plays the step under the cursor. It does nothing while a choice is
// pending, and only swaps in the end control once the script is exhausted.
func (p *Player) Advance() {
	p.mu.Lock()
	if p.awaiting {
		p.mu.Unlock()
		return
	}
	p.advanceLocked()
	v := p.viewLocked()
	p.mu.Unlock()
	p.notify(v)
}

func (p *Player) advanceLocked() {
	st := Next(p.script, p.cursor)
	if st.Done {
		p.finished = true
		p.controls = []Control{{Kind: ControlEnd, Label: p.labels.End}}
		return
	}
	p.history = append(p.history, st.Entry)
	p.cursor = st.Cursor
	if len(st.Options) > 0 {
		p.awaiting = true
		p.controls = make([]Control, 0, len(st.Options))
		for i, opt := range st.Options {
			p.controls = append(p.controls, Control{Kind: ControlOption, Label: opt, Option: i})
		}
		return
	}
	p.controls = []Control{{Kind: ControlContinue, Label: p.labels.Continue}}
}

// Choose selects option k of the pending step. The following step plays after
// the choice delay.
func (p *Player) Choose(k int) error {
	p.mu.Lock()
	if !p.awaiting {
		p.mu.Unlock()
		return ErrNoChoicePending
	}
	opts := p.script[p.cursor].Options
	if k < 0 || k >= len(opts) {
		p.mu.Unlock()
		return ErrUnknownOption
	}
	p.history = append(p.history, Entry{Text: opts[k], Sender: models.SenderUser})
	p.cursor++
	p.awaiting = false
	p.controls = nil
	gen := p.gen
	v := p.viewLocked()
	p.mu.Unlock()
	p.notify(v)

	p.sched.AfterFunc(p.delay, func() {
		p.mu.Lock()
		if p.gen != gen {
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
		p.Advance()
	})
	return nil
}

// Close hides the player. The cursor is left where it is.
func (p *Player) Close() {
	p.mu.Lock()
	p.visible = false
	v := p.viewLocked()
	p.mu.Unlock()
	p.notify(v)
}

func (p *Player) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *Player) viewLocked() View {
	return View{
		Visible:  p.visible,
		History:  append([]Entry(nil), p.history...),
		Controls: append([]Control(nil), p.controls...),
		Cursor:   p.cursor,
		Finished: p.finished,
	}
}

func (p *Player) notify(v View) {
	if p.onChange != nil {
		p.onChange(v)
	}
}
