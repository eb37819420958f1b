package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hny-greeting-service/internal/schedule"
)

type Mode int

const (
	// Elapsed counts up from the campaign epoch.
	Elapsed Mode = iota
	// Target counts down to the target epoch, then up from it.
	Target
)

func (m Mode) String() string {
	if m == Target {
		return "target"
	}
	return "elapsed"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

type Reading struct {
	Mode      Mode   `json:"mode"`
	Label     string `json:"label"`
	Countdown bool   `json:"countdown"`
	Days      int64  `json:"days"`
	Hours     string `json:"hours"`
	Minutes   string `json:"minutes"`
	Seconds   string `json:"seconds"`
}

// Decompose splits |d| into whole days and zero-padded clock parts.
func Decompose(d time.Duration) Reading {
	if d < 0 {
		d = -d
	}
	ms := d.Milliseconds()
	const (
		second = 1000
		minute = 60 * second
		hour   = 60 * minute
		day    = 24 * hour
	)
	return Reading{
		Days:    ms / day,
		Hours:   fmt.Sprintf("%02d", (ms/hour)%24),
		Minutes: fmt.Sprintf("%02d", (ms/minute)%60),
		Seconds: fmt.Sprintf("%02d", (ms/second)%60),
	}
}

// Compute decomposes the distance between from and to, in either order.
func Compute(from, to time.Time) Reading {
	return Decompose(to.Sub(from))
}

// Display renders elapsed or remaining time against one of two epochs. The
// mode switches from Elapsed to Target at most once.
type Display struct {
	campaign time.Time
	target   time.Time
	now      func() time.Time

	mu   sync.Mutex
	mode Mode
}

func NewDisplay(campaign, target time.Time, now func() time.Time) *Display {
	if now == nil {
		now = time.Now
	}
	return &Display{campaign: campaign, target: target, now: now}
}

func (d *Display) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Switch moves to Target mode. Only the first call reports true.
func (d *Display) Switch() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mode == Target {
		return false
	}
	d.mode = Target
	return true
}

func (d *Display) Reading() Reading {
	return d.At(d.now())
}

func (d *Display) At(now time.Time) Reading {
	mode := d.Mode()
	if mode == Elapsed {
		r := Decompose(now.Sub(d.campaign))
		r.Mode = mode
		r.Label = fmt.Sprintf("Time passed since %d", d.campaign.Year())
		return r
	}
	if now.Before(d.target) {
		r := Decompose(d.target.Sub(now))
		r.Mode = mode
		r.Countdown = true
		r.Label = fmt.Sprintf("Countdown to %d", d.target.Year())
		return r
	}
	r := Decompose(now.Sub(d.target))
	r.Mode = mode
	r.Label = fmt.Sprintf("Time passed in %d", d.target.Year())
	return r
}

// Run pushes a fresh reading to sink every interval until ctx is done.
func (d *Display) Run(ctx context.Context, sched schedule.Scheduler, interval time.Duration, sink func(Reading)) {
	sink(d.Reading())
	sched.Every(ctx, interval, func() { sink(d.Reading()) })
}
