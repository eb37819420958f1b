package services

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"hny-greeting-service/internal/chat"
	"hny-greeting-service/internal/content"
	"hny-greeting-service/internal/intro"
	"hny-greeting-service/internal/models"
	"hny-greeting-service/internal/schedule"
	"hny-greeting-service/internal/timer"
)

type SessionConfig struct {
	Items         []models.ContentItem
	Script        intro.Script
	Overlay       content.OverlaySource
	Scheduler     schedule.Scheduler
	Timings       intro.Timings
	Location      *time.Location
	CampaignEpoch time.Time
	TargetEpoch   time.Time
	TimerInterval time.Duration
	ChoiceDelay   time.Duration
	TTL           time.Duration
	BGMSrc        string
	Now           func() time.Time
	// Seed fixes the particle randomness; zero seeds from the clock.
	Seed int64
}

// SessionService owns the live sessions and expires idle ones.
type SessionService struct {
	cfg SessionConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionService(cfg SessionConfig) *SessionService {
	if cfg.Scheduler == nil {
		cfg.Scheduler = schedule.Real{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.TimerInterval <= 0 {
		cfg.TimerInterval = 250 * time.Millisecond
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	return &SessionService{cfg: cfg, sessions: make(map[string]*Session)}
}

// Create builds a session and starts its intro.
func (s *SessionService) Create(visitorID string, req models.CreateSessionRequest, acceptLanguage string) *Session {
	cfg := s.cfg
	now := cfg.Now()
	ctx, cancel := context.WithCancel(context.Background())

	seed := cfg.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}

	hub := NewHub(req.Elements)
	labels := content.LabelsFor(acceptLanguage)
	sess := &Session{
		ID:        uuid.NewString(),
		VisitorID: visitorID,
		CreatedAt: now,
		hub:       hub,
		labels:    labels,
		sched:     cfg.Scheduler,
		interval:  cfg.TimerInterval,
		now:       cfg.Now,
		ctx:       ctx,
		cancel:    cancel,
		audio:     AudioState{Src: cfg.BGMSrc},
		lastSeen:  now,
	}
	sess.timeline = content.NewTimeline(content.TimelineConfig{
		Items:    cfg.Items,
		Source:   cfg.Overlay,
		Now:      cfg.Now,
		Location: cfg.Location,
	})
	sess.timer = timer.NewDisplay(cfg.CampaignEpoch, cfg.TargetEpoch, cfg.Now)
	sess.chat = chat.NewPlayer(cfg.Scheduler, cfg.ChoiceDelay, func(v chat.View) {
		hub.Emit(EventChat, v)
	})
	sess.chat.SetLabels(labels.Chat)
	sess.intro = intro.NewController(intro.Options{
		Surface:   hub,
		Scheduler: cfg.Scheduler,
		Script:    cfg.Script,
		Timings:   cfg.Timings,
		Viewport:  intro.Viewport{Width: req.Width, Height: req.Height},
		Rand:      rand.New(rand.NewSource(seed)),
		OnMain:    sess.startMain,
	})

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	sess.intro.Start()
	debugLogf("session %s: created visitor=%s lang=%s live=%d", sess.ID, visitorID, labels.Tag, n)
	return sess
}

func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Touch()
	return sess, nil
}

func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reap closes sessions idle for longer than the TTL and reports how many.
func (s *SessionService) Reap() int {
	cutoff := s.cfg.Now().Add(-s.cfg.TTL)

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	if len(stale) > 0 {
		log.Printf("sessions: reaped %d idle", len(stale))
	}
	return len(stale)
}

// RunReaper reaps on every interval until ctx is done.
func (s *SessionService) RunReaper(ctx context.Context, interval time.Duration) {
	s.cfg.Scheduler.Every(ctx, interval, func() { s.Reap() })
}

func (s *SessionService) Shutdown() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, sess := range all {
		sess.Close()
	}
}
