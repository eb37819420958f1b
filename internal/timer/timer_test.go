package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hny-greeting-service/internal/schedule"
)

var (
	campaign = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	target   = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

func TestElapsedReading(t *testing.T) {
	d := NewDisplay(campaign, target, nil)
	r := d.At(time.Date(2025, 1, 2, 1, 2, 3, 0, time.UTC))

	assert.Equal(t, int64(1), r.Days)
	assert.Equal(t, "01", r.Hours)
	assert.Equal(t, "02", r.Minutes)
	assert.Equal(t, "03", r.Seconds)
	assert.Equal(t, Elapsed, r.Mode)
	assert.False(t, r.Countdown)
}

func TestTargetCountsDownThenUp(t *testing.T) {
	d := NewDisplay(campaign, target, nil)
	require.True(t, d.Switch())

	r := d.At(time.Date(2025, 12, 31, 23, 59, 50, 0, time.UTC))
	assert.True(t, r.Countdown)
	assert.Equal(t, "10", r.Seconds)
	assert.Equal(t, "Countdown to 2026", r.Label)

	r = d.At(time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC))
	assert.False(t, r.Countdown)
	assert.Equal(t, int64(2), r.Days)
	assert.Equal(t, "12", r.Hours)
	assert.Equal(t, "Time passed in 2026", r.Label)
}

func TestSwitchIsOneWay(t *testing.T) {
	d := NewDisplay(campaign, target, nil)
	assert.True(t, d.Switch())
	assert.False(t, d.Switch())
	assert.False(t, d.Switch())
	assert.Equal(t, Target, d.Mode())
}

func TestRunStopsWithContext(t *testing.T) {
	sched := schedule.NewManual()
	now := campaign
	d := NewDisplay(campaign, target, func() time.Time { return now })

	var got []Reading
	ctx, cancel := context.WithCancel(context.Background())
	d.Run(ctx, sched, time.Second, func(r Reading) { got = append(got, r) })
	require.Len(t, got, 1)

	now = now.Add(3 * time.Second)
	sched.Advance(3 * time.Second)
	require.Len(t, got, 4)
	assert.Equal(t, "03", got[3].Seconds)

	cancel()
	sched.Advance(5 * time.Second)
	assert.Len(t, got, 4)
}

func TestComputeIsSymmetric(t *testing.T) {
	a := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)
	fwd := Compute(a, b)
	back := Compute(b, a)
	assert.Equal(t, fwd, back)
	assert.Equal(t, "01", fwd.Hours)
	assert.Equal(t, "05", fwd.Seconds)
}
