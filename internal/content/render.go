package content

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"hny-greeting-service/internal/models"
)

type LinkKind int

const (
	LinkGeneric LinkKind = iota
	LinkMarkup
	LinkEmbed
)

// embedHosts are the social hosts whose permalinks become embed placeholders.
var embedHosts = []string{"instagram.com"}

func ClassifyLink(link string) LinkKind {
	if strings.HasPrefix(strings.TrimSpace(link), "<") {
		return LinkMarkup
	}
	for _, h := range embedHosts {
		if strings.Contains(link, h) {
			return LinkEmbed
		}
	}
	return LinkGeneric
}

func FormatDate(d models.Day) string {
	return d.Time(nil).Format("January 2, 2006")
}

// Card renders one unlocked timeline item. day is the item's 1-based position.
func Card(item models.ContentItem, day int, l Labels) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="timeline-item reveal-on-scroll" data-day="%d">`, day)
		fmt.Fprintf(&b, `<div class="post-date">%s</div>`, templ.EscapeString(FormatDate(item.Date)))
		fmt.Fprintf(&b, `<h3 class="post-title">%s</h3>`, templ.EscapeString(item.Title))

		if item.IsChat() {
			fmt.Fprintf(&b, `<button class="action-btn chat-btn" data-action="chat" data-day="%d">%s <i class="ph-fill ph-chats-circle"></i></button>`,
				day, templ.EscapeString(l.StartChat))
		} else {
			fmt.Fprintf(&b, `<div class="post-msg">%s</div>`, item.Message)
			b.WriteString(`<div class="post-media">`)
			for _, link := range item.Links {
				writeMedia(&b, link, l)
			}
			b.WriteString(`</div>`)
		}

		if item.Music != "" {
			fmt.Fprintf(&b, `<button class="action-btn music-btn" data-action="music" data-music="%s">%s <i class="ph-fill ph-play-circle"></i></button>`,
				templ.EscapeString(item.Music), templ.EscapeString(l.PlaySong))
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// MediaBlock renders the media wrapper for a single link.
func MediaBlock(link string, l Labels) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeMedia(&b, link, l)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeMedia(b *strings.Builder, link string, l Labels) {
	switch ClassifyLink(link) {
	case LinkMarkup:
		fmt.Fprintf(b, `<div class="ig-embed-container">%s</div>`, link)
	case LinkEmbed:
		fmt.Fprintf(b, `<div class="ig-embed-container"><blockquote class="instagram-media ig-fallback-styled" data-instgrm-captioned data-instgrm-permalink="%s" data-instgrm-version="14"></blockquote></div>`,
			templ.EscapeString(strings.TrimSpace(link)))
	default:
		href := string(templ.URL(strings.TrimSpace(link)))
		fmt.Fprintf(b, `<div class="generic-link"><a href="%s" target="_blank" rel="noopener">%s <i class="ph-bold ph-arrow-square-out"></i></a></div>`,
			templ.EscapeString(href), templ.EscapeString(l.ViewLink))
	}
}

func hasEmbed(item models.ContentItem) bool {
	if item.IsChat() {
		return false
	}
	for _, link := range item.Links {
		if ClassifyLink(link) != LinkGeneric {
			return true
		}
	}
	return false
}
