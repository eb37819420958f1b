package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hny-greeting-service/internal/models"
	"hny-greeting-service/internal/schedule"
)

var script = []models.ChatStep{
	{Text: "Hello!", Sender: models.SenderSite},
	{Text: "I have a secret to tell you...", Sender: models.SenderSite},
	{Text: "Do you want to know?", Sender: models.SenderSite, Options: []string{"Yes! Tell me!", "Maybe later"}},
	{Text: "The secret is...", Sender: models.SenderSite},
}

func TestNextIsPure(t *testing.T) {
	st := Next(script, 0)
	assert.False(t, st.Done)
	assert.Equal(t, 1, st.Cursor)
	assert.Equal(t, "Hello!", st.Entry.Text)

	st = Next(script, 2)
	assert.Equal(t, 2, st.Cursor, "option steps leave the cursor for the choice")
	assert.Len(t, st.Options, 2)

	st = Next(script, len(script))
	assert.True(t, st.Done)
}

func TestTwoStepScriptRunsToTerminal(t *testing.T) {
	two := []models.ChatStep{
		{Text: "first", Sender: models.SenderSite},
		{Text: "second", Sender: models.SenderSite},
	}
	views := 0
	p := NewPlayer(schedule.NewManual(), 0, func(View) { views++ })

	p.Open(two)
	v := p.View()
	require.Len(t, v.History, 1)
	assert.Equal(t, "first", v.History[0].Text)
	assert.Equal(t, 1, v.Cursor)
	assert.Equal(t, ControlContinue, v.Controls[0].Kind)

	p.Advance()
	v = p.View()
	require.Len(t, v.History, 2)
	assert.Equal(t, "second", v.History[1].Text)
	assert.Equal(t, 2, v.Cursor)

	p.Advance()
	p.Advance()
	v = p.View()
	assert.Len(t, v.History, 2)
	assert.True(t, v.Finished)
	require.Len(t, v.Controls, 1)
	assert.Equal(t, ControlEnd, v.Controls[0].Kind)
	assert.Equal(t, 4, views)
}

func TestOptionsWaitForChoice(t *testing.T) {
	sched := schedule.NewManual()
	p := NewPlayer(sched, DefaultChoiceDelay, nil)
	p.Open(script)
	p.Advance()
	p.Advance()

	v := p.View()
	require.Len(t, v.Controls, 2)
	assert.Equal(t, ControlOption, v.Controls[0].Kind)
	assert.Equal(t, 2, v.Cursor)

	p.Advance()
	sched.Advance(DefaultChoiceDelay * 4)
	assert.Len(t, p.View().History, 3, "advance must not skip a pending choice")

	assert.ErrorIs(t, p.Choose(5), ErrUnknownOption)
	require.NoError(t, p.Choose(0))
	v = p.View()
	require.Len(t, v.History, 4)
	assert.Equal(t, models.SenderUser, v.History[3].Sender)
	assert.Equal(t, "Yes! Tell me!", v.History[3].Text)
	assert.Equal(t, 3, v.Cursor)
	assert.ErrorIs(t, p.Choose(0), ErrNoChoicePending)

	sched.Advance(DefaultChoiceDelay - 1)
	assert.Len(t, p.View().History, 4)
	sched.Advance(1)
	v = p.View()
	require.Len(t, v.History, 5)
	assert.Equal(t, "The secret is...", v.History[4].Text)
}

func TestReopenDropsStaleChoiceTimer(t *testing.T) {
	sched := schedule.NewManual()
	p := NewPlayer(sched, DefaultChoiceDelay, nil)
	p.Open(script[2:])
	require.NoError(t, p.Choose(1))

	p.Open(script)
	sched.Advance(DefaultChoiceDelay)
	v := p.View()
	assert.Len(t, v.History, 1)
	assert.Equal(t, 1, v.Cursor)
}

func TestCloseKeepsCursor(t *testing.T) {
	p := NewPlayer(schedule.NewManual(), 0, nil)
	p.Open(script)
	p.Close()

	v := p.View()
	assert.False(t, v.Visible)
	assert.Equal(t, 1, v.Cursor)

	p.Open(script)
	v = p.View()
	assert.True(t, v.Visible)
	assert.Equal(t, 1, v.Cursor)
	assert.Len(t, v.History, 1)
}
