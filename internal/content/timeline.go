package content

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"hny-greeting-service/internal/models"
)

// OverlaySource supplies the remote per-day patches.
type OverlaySource interface {
	Fetch(ctx context.Context) (models.OverlayFeed, error)
}

type TimelineConfig struct {
	Items    []models.ContentItem
	Source   OverlaySource
	Now      func() time.Time
	Location *time.Location
}

// Timeline is one visitor's view of the content: a private copy of the local
// items, patched once from the overlay, rendered at most once per item.
type Timeline struct {
	source OverlaySource
	now    func() time.Time
	loc    *time.Location

	mu       sync.Mutex
	items    []models.ContentItem
	loaded   bool
	special  string
	report   MergeReport
	rendered map[int]bool
}

type RenderResult struct {
	Cards  int   `json:"cards"`
	Days   []int `json:"days"`
	Embeds bool  `json:"embeds"`
}

func NewTimeline(cfg TimelineConfig) *Timeline {
	items := make([]models.ContentItem, len(cfg.Items))
	for i, it := range cfg.Items {
		items[i] = it.Clone()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Timeline{
		source:   cfg.Source,
		now:      cfg.Now,
		loc:      cfg.Location,
		items:    items,
		rendered: make(map[int]bool),
	}
}

// Load fetches and merges the overlay once. Any failure leaves the local
// items untouched.
func (t *Timeline) Load(ctx context.Context) MergeReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked(ctx)
}

func (t *Timeline) loadLocked(ctx context.Context) MergeReport {
	if t.loaded {
		return t.report
	}
	t.loaded = true
	if t.source == nil {
		return t.report
	}

	feed, err := t.source.Fetch(ctx)
	if err != nil {
		log.Printf("timeline: overlay unavailable, using local content: %v", err)
		return t.report
	}
	t.special = feed.SpecialMessage
	t.report = Merge(t.items, feed.DailyContent)
	if len(t.report.Rejected) > 0 {
		log.Printf("timeline: rejected overlay days %v (have %d items)", t.report.Rejected, len(t.items))
	}
	return t.report
}

// Render writes a card for every unlocked item not rendered before.
func (t *Timeline) Render(ctx context.Context, w io.Writer, l Labels) (RenderResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	res := RenderResult{Days: []int{}}
	today := t.today()
	for i, item := range t.items {
		if today.Before(item.Date) || t.rendered[i] {
			continue
		}
		if err := Card(item, i+1, l).Render(ctx, w); err != nil {
			return res, err
		}
		t.rendered[i] = true
		res.Cards++
		res.Days = append(res.Days, i+1)
		if hasEmbed(item) {
			res.Embeds = true
		}
	}
	return res, nil
}

// Item returns the item at 1-based day, if that day is unlocked.
func (t *Timeline) Item(day int) (models.ContentItem, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if day < 1 || day > len(t.items) {
		return models.ContentItem{}, false
	}
	it := t.items[day-1]
	if t.today().Before(it.Date) {
		return models.ContentItem{}, false
	}
	return it.Clone(), true
}

func (t *Timeline) SpecialMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.special
}

func (t *Timeline) today() models.Day {
	return models.DayOf(t.now().In(t.loc))
}
