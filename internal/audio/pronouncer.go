package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTTSURL is the Google Translate text-to-speech endpoint
const DefaultTTSURL = "https://translate.google.com/translate_tts"

// maxClipSize caps downloads; pronunciations are a few kilobytes
const maxClipSize = 5 << 20

// Clip is a playable recording of a word
type Clip struct {
	Name        string
	Data        []byte
	Synthesized bool
}

// Pronouncer fetches the recording attached to a word and falls back to
// synthesized speech when there is none or it cannot be downloaded
type Pronouncer struct {
	ttsURL     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewPronouncer creates a pronouncer. An empty ttsURL selects DefaultTTSURL.
func NewPronouncer(ttsURL string, timeout time.Duration, log *zap.Logger) *Pronouncer {
	if ttsURL == "" {
		ttsURL = DefaultTTSURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pronouncer{
		ttsURL:     ttsURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Fetch returns a clip for term
func (p *Pronouncer) Fetch(ctx context.Context, term, audioRef string) (Clip, error) {
	name := clipName(term)

	if audioRef != "" {
		data, err := p.download(ctx, audioRef)
		if err == nil {
			return Clip{Name: name, Data: data}, nil
		}
		p.log.Warn("audio reference failed, using speech synthesis",
			zap.String("word", term), zap.String("audio", audioRef), zap.Error(err))
	}

	data, err := p.download(ctx, p.speechURL(term))
	if err != nil {
		return Clip{}, fmt.Errorf("failed to generate audio: %w", err)
	}
	return Clip{Name: name, Data: data, Synthesized: true}, nil
}

// speechURL asks for slow American English speech
func (p *Pronouncer) speechURL(text string) string {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en-US")
	params.Set("client", "tw-ob")
	params.Set("ttsspeed", "0.8")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	return p.ttsURL + "?" + params.Encode()
}

func (p *Pronouncer) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxClipSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty audio response")
	}
	return data, nil
}

func clipName(term string) string {
	sanitized := strings.ToLower(strings.TrimSpace(term))
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	return fmt.Sprintf("word_%s.mp3", sanitized)
}
