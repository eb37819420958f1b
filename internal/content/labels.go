package content

import (
	"golang.org/x/text/language"

	"hny-greeting-service/internal/chat"
)

type Labels struct {
	Tag       language.Tag
	PlaySong  string
	StartChat string
	ViewLink  string
	Chat      chat.Labels
}

var supportedTags = []language.Tag{language.English, language.Thai}

var labelSets = []Labels{
	{
		Tag:       language.English,
		PlaySong:  "Play Song for this Day",
		StartChat: "Click to Start Chat",
		ViewLink:  "View Link",
		Chat:      chat.DefaultLabels,
	},
	{
		Tag:       language.Thai,
		PlaySong:  "เปิดเพลงของวันนี้",
		StartChat: "กดเพื่อเริ่มแชท",
		ViewLink:  "ดูลิงก์",
		Chat:      chat.Labels{Continue: "กดเพื่อไปต่อ", End: "จบการสนทนา"},
	},
}

var matcher = language.NewMatcher(supportedTags)

// LabelsFor picks the label set best matching an Accept-Language header.
func LabelsFor(acceptLanguage string) Labels {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return labelSets[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(labelSets) {
		return labelSets[0]
	}
	return labelSets[idx]
}
