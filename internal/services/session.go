package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"hny-greeting-service/internal/chat"
	"hny-greeting-service/internal/content"
	"hny-greeting-service/internal/intro"
	"hny-greeting-service/internal/models"
	"hny-greeting-service/internal/schedule"
	"hny-greeting-service/internal/timer"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrIntroRunning    = errors.New("intro still running")
	ErrDayLocked       = errors.New("day not unlocked")
	ErrNotChat         = errors.New("item has no chat")
	ErrInvalidAudio    = errors.New("audio request needs src or toggle")
	ErrSkipUnavailable = errors.New("skip unavailable")
)

const (
	EventChat     = "chat"
	EventTimer    = "timer"
	EventAudio    = "audio"
	EventTimeline = "timeline"

	EventTimerSwitched = "timer_switched"
)

type AudioState struct {
	Src     string `json:"src"`
	Playing bool   `json:"playing"`
}

type TimelineReady struct {
	Applied        []int  `json:"applied"`
	Rejected       []int  `json:"rejected,omitempty"`
	SpecialMessage string `json:"special_message,omitempty"`
}

type Snapshot struct {
	ID             string        `json:"id"`
	State          intro.State   `json:"state"`
	Clicks         int           `json:"clicks"`
	ProceedReady   bool          `json:"proceed_ready"`
	Particles      int           `json:"particles"`
	Main           bool          `json:"main"`
	Chat           chat.View     `json:"chat"`
	Audio          AudioState    `json:"audio"`
	Timer          timer.Reading `json:"timer"`
	SpecialMessage string        `json:"special_message,omitempty"`
	Seq            uint64        `json:"seq"`
}

// Session is one visitor's run through the intro and the timeline.
type Session struct {
	ID        string
	VisitorID string
	CreatedAt time.Time

	hub      *Hub
	intro    *intro.Controller
	timeline *content.Timeline
	chat     *chat.Player
	timer    *timer.Display
	labels   content.Labels
	sched    schedule.Scheduler
	interval time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	audio    AudioState
	lastSeen time.Time
	main     bool
	closed   bool
}

func (s *Session) Hub() *Hub                   { return s.hub }
func (s *Session) Labels() content.Labels      { return s.labels }
func (s *Session) Timeline() *content.Timeline { return s.timeline }
func (s *Session) IntroState() intro.State     { return s.intro.State() }
func (s *Session) Intro() *intro.Controller    { return s.intro }

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	audio := s.audio
	main := s.main
	s.mu.Unlock()

	return Snapshot{
		ID:             s.ID,
		State:          s.intro.State(),
		Clicks:         s.intro.Gate().Clicks(),
		ProceedReady:   s.intro.Gate().ProceedReady(),
		Particles:      s.intro.Simulator().Len(),
		Main:           main,
		Chat:           s.chat.View(),
		Audio:          audio,
		Timer:          s.timer.Reading(),
		SpecialMessage: s.timeline.SpecialMessage(),
		Seq:            s.hub.Seq(),
	}
}

// Interact forwards a click to the gate. The first qualifying click also
// starts the background music.
func (s *Session) Interact(x, y float64) (intro.InteractResult, bool) {
	res, ok := s.intro.Gate().Interact(x, y)
	if ok && res.Clicks == 1 {
		s.mu.Lock()
		started := !s.audio.Playing
		s.audio.Playing = true
		audio := s.audio
		s.mu.Unlock()
		if started {
			s.hub.Emit(EventAudio, audio)
		}
	}
	return res, ok
}

func (s *Session) Proceed() (intro.State, bool) {
	return s.intro.Proceed()
}

// Skip goes straight to the main page on pages without a flower scene. The
// gate still has to be cleared first.
func (s *Session) Skip() (intro.State, error) {
	if s.hub.Has(intro.ElementFlowerScene) || !s.intro.Gate().ProceedReady() {
		return s.intro.State(), ErrSkipUnavailable
	}
	return s.intro.EnterMain(), nil
}

func (s *Session) mainStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.main
}

// RenderTimeline writes the cards not yet shown to this session.
func (s *Session) RenderTimeline(ctx context.Context, w io.Writer) (content.RenderResult, error) {
	if !s.mainStarted() {
		return content.RenderResult{}, ErrIntroRunning
	}
	return s.timeline.Render(ctx, w, s.labels)
}

func (s *Session) TimerReading() timer.Reading {
	return s.timer.Reading()
}

// SwitchTimer flips the display to the target epoch. Only the first call
// changes anything and announces itself with EventTimerSwitched; the regular
// ticks carry on afterwards.
func (s *Session) SwitchTimer() (timer.Reading, bool) {
	switched := s.timer.Switch()
	r := s.timer.Reading()
	if switched {
		s.hub.Emit(EventTimerSwitched, r)
	}
	return r, switched
}

func (s *Session) OpenChat(day int) (chat.View, error) {
	if !s.mainStarted() {
		return chat.View{}, ErrIntroRunning
	}
	item, ok := s.timeline.Item(day)
	if !ok {
		return chat.View{}, ErrDayLocked
	}
	if !item.IsChat() || len(item.ChatData) == 0 {
		return chat.View{}, ErrNotChat
	}
	s.chat.Open(item.ChatData)
	return s.chat.View(), nil
}

func (s *Session) AdvanceChat() chat.View {
	s.chat.Advance()
	return s.chat.View()
}

func (s *Session) ChooseChat(option int) (chat.View, error) {
	if err := s.chat.Choose(option); err != nil {
		return s.chat.View(), err
	}
	return s.chat.View(), nil
}

func (s *Session) CloseChat() chat.View {
	s.chat.Close()
	return s.chat.View()
}

// SetAudio redirects the shared player to a new source and plays it, or
// toggles play/pause. The last request wins.
func (s *Session) SetAudio(req models.AudioRequest) (AudioState, error) {
	src := strings.TrimSpace(req.Src)
	if !req.Toggle && src == "" {
		return AudioState{}, ErrInvalidAudio
	}
	s.mu.Lock()
	if req.Toggle {
		s.audio.Playing = !s.audio.Playing
	} else {
		s.audio.Src = src
		s.audio.Playing = true
	}
	audio := s.audio
	s.mu.Unlock()

	s.hub.Emit(EventAudio, audio)
	return audio, nil
}

func (s *Session) Audio() AudioState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}

// startMain runs once the intro overlay is gone: the overlay is merged and
// the timer starts ticking.
func (s *Session) startMain() {
	s.mu.Lock()
	if s.main || s.closed {
		s.mu.Unlock()
		return
	}
	s.main = true
	s.mu.Unlock()

	report := s.timeline.Load(s.ctx)
	s.hub.Emit(EventTimeline, TimelineReady{
		Applied:        report.Applied,
		Rejected:       report.Rejected,
		SpecialMessage: s.timeline.SpecialMessage(),
	})
	s.timer.Run(s.ctx, s.sched, s.interval, func(r timer.Reading) {
		s.hub.Emit(EventTimer, r)
	})
	debugLogf("session %s: main started", s.ID)
}

func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.intro.Shutdown()
	s.chat.Close()
	s.hub.Close()
}
