package content

import (
	_ "embed"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"hny-greeting-service/internal/intro"
	"hny-greeting-service/internal/models"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// Catalog is the local content the site ships with.
type Catalog struct {
	Intro intro.Script
	Items []models.ContentItem
}

type catalogFile struct {
	Intro intro.Script  `yaml:"intro"`
	Items []catalogItem `yaml:"items"`
}

type catalogItem struct {
	Date         string            `yaml:"date"`
	Title        string            `yaml:"title"`
	Links        []string          `yaml:"links"`
	Message      string            `yaml:"message"`
	Music        string            `yaml:"music"`
	CustomAction string            `yaml:"custom_action"`
	ChatData     []models.ChatStep `yaml:"chat_data"`
}

func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

func LoadCatalogFile(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(b)
}

func ParseCatalog(b []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	cat := Catalog{Intro: f.Intro, Items: make([]models.ContentItem, 0, len(f.Items))}
	for i, it := range f.Items {
		day, err := models.ParseDay(it.Date)
		if err != nil {
			return Catalog{}, fmt.Errorf("catalog item %d: %w", i+1, err)
		}
		if it.CustomAction == models.ActionChat && len(it.ChatData) == 0 {
			return Catalog{}, fmt.Errorf("catalog item %d: chat action without chat_data", i+1)
		}
		for j, st := range it.ChatData {
			if st.Sender != models.SenderSite && st.Sender != models.SenderUser {
				return Catalog{}, fmt.Errorf("catalog item %d step %d: unknown sender %q", i+1, j+1, st.Sender)
			}
		}
		if n := len(cat.Items); n > 0 && day.Before(cat.Items[n-1].Date) {
			log.Printf("catalog: item %d (%s) is out of date order", i+1, day)
		}
		cat.Items = append(cat.Items, models.ContentItem{
			Date:         day,
			Title:        it.Title,
			Links:        it.Links,
			Message:      it.Message,
			Music:        it.Music,
			CustomAction: it.CustomAction,
			ChatData:     it.ChatData,
		})
	}
	return cat, nil
}

// MusicRefs lists every music reference in the catalog.
func (c Catalog) MusicRefs() []string {
	var out []string
	for _, it := range c.Items {
		if it.Music != "" {
			out = append(out, it.Music)
		}
	}
	return out
}
