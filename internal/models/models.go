package models

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar day with no time-of-day component.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// DayOf strips the time of day from t, in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

func (d Day) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Day) UnmarshalText(b []byte) error {
	v, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

type Sender string

const (
	SenderSite Sender = "site"
	SenderUser Sender = "user"
)

type ChatStep struct {
	Text    string   `json:"text" yaml:"text"`
	Sender  Sender   `json:"sender" yaml:"sender"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

const ActionChat = "chat"

type ContentItem struct {
	Date         Day        `json:"date"`
	Title        string     `json:"title"`
	Links        []string   `json:"links"`
	Message      string     `json:"message"`
	Music        string     `json:"music,omitempty"`
	CustomAction string     `json:"custom_action,omitempty"`
	ChatData     []ChatStep `json:"chat_data,omitempty"`
}

func (c ContentItem) IsChat() bool { return c.CustomAction == ActionChat }

// Clone returns a copy that shares no slices with c.
func (c ContentItem) Clone() ContentItem {
	out := c
	out.Links = append([]string(nil), c.Links...)
	if c.ChatData != nil {
		out.ChatData = make([]ChatStep, len(c.ChatData))
		for i, s := range c.ChatData {
			s.Options = append([]string(nil), s.Options...)
			out.ChatData[i] = s
		}
	}
	return out
}

// RemoteOverlayItem patches the local item at position Day-1.
type RemoteOverlayItem struct {
	Day      int      `json:"day"`
	Title    *string  `json:"title,omitempty"`
	Messages []string `json:"messages,omitempty"`
	Message  *string  `json:"message,omitempty"`
	IGLink   *string  `json:"ig_link,omitempty"`
	Music    *string  `json:"music,omitempty"`
}

type OverlayFeed struct {
	DailyContent   []RemoteOverlayItem `json:"dailyContent"`
	SpecialMessage string              `json:"specialMessage,omitempty"`
}

type Submission struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Message struct {
	ID        string    `json:"id"`
	VisitorID string    `json:"visitor_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateSessionRequest struct {
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Elements map[string]bool `json:"elements,omitempty"`
}

type InteractRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ChatOpenRequest struct {
	Day int `json:"day"`
}

type ChatChooseRequest struct {
	Option int `json:"option"`
}

type AudioRequest struct {
	Src    string `json:"src"`
	Toggle bool   `json:"toggle"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

type MessagesResponse struct {
	Data []Message `json:"data"`
}
