package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var ttsQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recorded.mp3":
			w.Write([]byte("recorded"))
		case "/tts":
			ttsQuery = r.URL.RawQuery
			w.Write([]byte("synth"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewPronouncer(srv.URL+"/tts", time.Second, nil)
	ctx := context.Background()

	t.Run("uses the audio reference", func(t *testing.T) {
		clip, err := p.Fetch(ctx, "Ice Cream", srv.URL+"/recorded.mp3")
		require.NoError(t, err)
		assert.Equal(t, Clip{Name: "word_ice_cream.mp3", Data: []byte("recorded")}, clip)
	})

	t.Run("falls back when the reference is broken", func(t *testing.T) {
		clip, err := p.Fetch(ctx, "abandon", srv.URL+"/missing.mp3")
		require.NoError(t, err)
		assert.True(t, clip.Synthesized)
		assert.Equal(t, []byte("synth"), clip.Data)
		assert.Contains(t, ttsQuery, "q=abandon")
		assert.Contains(t, ttsQuery, "tl=en-US")
	})

	t.Run("synthesizes when there is no reference", func(t *testing.T) {
		clip, err := p.Fetch(ctx, "curious", "")
		require.NoError(t, err)
		assert.True(t, clip.Synthesized)
	})
}

func TestFetchFailsWhenSpeechIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewPronouncer(srv.URL, time.Second, nil).Fetch(context.Background(), "word", "")
	assert.Error(t, err)
}
