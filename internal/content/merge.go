package content

import (
	"strings"

	"hny-greeting-service/internal/models"
)

type MergeReport struct {
	Applied  []int `json:"applied"`
	Rejected []int `json:"rejected"`
}

// Merge patches items in place from the overlay, keyed by 1-based day.
// Overlays whose day falls outside items are reported as rejected.
func Merge(items []models.ContentItem, overlay []models.RemoteOverlayItem) MergeReport {
	var rep MergeReport
	for _, o := range overlay {
		if o.Day < 1 || o.Day > len(items) {
			rep.Rejected = append(rep.Rejected, o.Day)
			continue
		}
		apply(&items[o.Day-1], o)
		rep.Applied = append(rep.Applied, o.Day)
	}
	return rep
}

func apply(it *models.ContentItem, o models.RemoteOverlayItem) {
	if o.Title != nil {
		it.Title = *o.Title
	}
	switch {
	case len(o.Messages) > 0:
		it.Message = JoinParagraphs(o.Messages)
	case o.Message != nil:
		it.Message = *o.Message
	}
	if o.IGLink != nil {
		it.Links = []string{*o.IGLink}
	}
	if o.Music != nil {
		it.Music = *o.Music
	}
}

// JoinParagraphs wraps each message in its own paragraph, in order.
func JoinParagraphs(msgs []string) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(`<p class="msg-paragraph">`)
		b.WriteString(m)
		b.WriteString(`</p>`)
	}
	return b.String()
}
