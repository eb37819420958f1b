package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hny-greeting-service/internal/models"
)

func TestParseOverlayObjectShape(t *testing.T) {
	body := `{"dailyContent":[{"day":2,"title":"T","messages":["a","b"],"ig_link":"https://www.instagram.com/p/x/","music":""}],"specialMessage":"hi"}`
	f, err := ParseOverlay([]byte(body))
	require.NoError(t, err)

	require.Len(t, f.DailyContent, 1)
	it := f.DailyContent[0]
	assert.Equal(t, 2, it.Day)
	require.NotNil(t, it.Title)
	assert.Equal(t, "T", *it.Title)
	assert.Equal(t, []string{"a", "b"}, it.Messages)
	require.NotNil(t, it.IGLink)
	assert.Nil(t, it.Music, "empty values are treated as absent")
	assert.Nil(t, it.Message)
	assert.Equal(t, "hi", f.SpecialMessage)
}

func TestParseOverlayBareArray(t *testing.T) {
	f, err := ParseOverlay([]byte(`[{"day":"3","message":"m"}, 7]`))
	require.NoError(t, err)
	require.Len(t, f.DailyContent, 1)
	assert.Equal(t, 3, f.DailyContent[0].Day)
	assert.Equal(t, "m", *f.DailyContent[0].Message)
}

func TestParseOverlayOddShapes(t *testing.T) {
	f, err := ParseOverlay([]byte(`{"dailyContent":"nope"}`))
	require.NoError(t, err)
	assert.Empty(t, f.DailyContent)

	_, err = ParseOverlay([]byte(`{"dailyContent":[`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseOverlay([]byte(`"text"`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFetchPlaceholderIsNotConfigured(t *testing.T) {
	for _, u := range []string{"", "  ", "https://script.google.com/macros/s/REPLACE_ME/exec"} {
		c := NewClient(u, nil, time.Second, 0)
		_, err := c.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
}

func TestFetchCachesAndReportsStatus(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[{"day":1,"title":"x"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), time.Second, time.Minute)
	f, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, f.DailyContent, 1)
	_, err = c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	_, err = NewClient(bad.URL, bad.Client(), time.Second, 0).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchIsBounded(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, srv.Client(), 50*time.Millisecond, 0)
	start := time.Now()
	_, err := c.Fetch(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSubmitPostsJSON(t *testing.T) {
	got := make(chan models.Submission, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var s models.Submission
		_ = json.NewDecoder(r.Body).Decode(&s)
		got <- s
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), time.Second, 0)
	require.NoError(t, c.Submit(context.Background(), models.Submission{Type: "Message", Content: "hello"}))
	assert.Equal(t, models.Submission{Type: "Message", Content: "hello"}, <-got)
}
