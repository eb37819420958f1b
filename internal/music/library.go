package music

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gopxl/beep/mp3"
)

type Track struct {
	Ref        string        `json:"ref"`
	Seconds    float64       `json:"seconds"`
	SampleRate int           `json:"sample_rate"`
	Duration   time.Duration `json:"-"`
}

// Library indexes the audio resources served next to the page, keyed by the
// slash-separated path the page refers to them by.
type Library struct {
	root   string
	tracks map[string]Track
}

// Scan walks root for mp3 files. A missing root yields an empty library.
// Files that fail to decode are skipped.
func Scan(root string) (*Library, error) {
	lib := &Library{root: root, tracks: map[string]Track{}}
	if strings.TrimSpace(root) == "" {
		return lib, nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mp3") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		t, err := probe(path)
		if err != nil {
			log.Printf("music: skip %s: %v", rel, err)
			return nil
		}
		t.Ref = filepath.ToSlash(rel)
		lib.tracks[t.Ref] = t
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("scan music: %w", err)
	}
	return lib, nil
}

func probe(path string) (Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return Track{}, err
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()
		return Track{}, err
	}
	defer streamer.Close()

	d := format.SampleRate.D(streamer.Len())
	return Track{
		Seconds:    d.Seconds(),
		SampleRate: int(format.SampleRate),
		Duration:   d,
	}, nil
}

func normalizeRef(ref string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(strings.TrimSpace(ref))), "/")
}

func (l *Library) Lookup(ref string) (Track, bool) {
	t, ok := l.tracks[normalizeRef(ref)]
	return t, ok
}

func (l *Library) Tracks() []Track {
	out := make([]Track, 0, len(l.tracks))
	for _, t := range l.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// Missing returns the refs that are not in the library. Remote URLs are
// never reported.
func (l *Library) Missing(refs []string) []string {
	var out []string
	for _, r := range refs {
		if strings.HasPrefix(r, "http://") || strings.HasPrefix(r, "https://") {
			continue
		}
		if _, ok := l.Lookup(r); !ok {
			out = append(out, r)
		}
	}
	return out
}
