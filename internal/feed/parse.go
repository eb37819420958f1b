package feed

import (
	"errors"

	"github.com/tidwall/gjson"

	"hny-greeting-service/internal/models"
)

var ErrMalformed = errors.New("feed: malformed body")

// ParseOverlay accepts either a bare array of overlay items or an object
// carrying them under dailyContent.
func ParseOverlay(body []byte) (models.OverlayFeed, error) {
	if !gjson.ValidBytes(body) {
		return models.OverlayFeed{}, ErrMalformed
	}
	root := gjson.ParseBytes(body)

	var feed models.OverlayFeed
	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.IsObject():
		list = root.Get("dailyContent")
		feed.SpecialMessage = root.Get("specialMessage").String()
	default:
		return models.OverlayFeed{}, ErrMalformed
	}
	if !list.IsArray() {
		return feed, nil
	}

	list.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		feed.DailyContent = append(feed.DailyContent, parseItem(v))
		return true
	})
	return feed, nil
}

func parseItem(v gjson.Result) models.RemoteOverlayItem {
	item := models.RemoteOverlayItem{Day: int(v.Get("day").Int())}
	item.Title = optString(v.Get("title"))
	item.Message = optString(v.Get("message"))
	item.IGLink = optString(v.Get("ig_link"))
	item.Music = optString(v.Get("music"))
	if msgs := v.Get("messages"); msgs.IsArray() {
		for _, m := range msgs.Array() {
			item.Messages = append(item.Messages, m.String())
		}
	}
	return item
}

// optString treats missing, null and empty values alike.
func optString(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	if s == "" {
		return nil
	}
	return &s
}
