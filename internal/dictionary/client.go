package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the free dictionary API
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// ErrNotFound is returned when the dictionary has no entry for a word
var ErrNotFound = errors.New("word not found in dictionary")

// Entry holds the fields a lookup can fill in. Empty strings mean the
// dictionary had nothing for that field.
type Entry struct {
	PartOfSpeech  string
	Meaning       string
	Pronunciation string
	Example       string
	AudioRef      string
}

// Client looks words up in a dictionaryapi.dev compatible service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiEntry struct {
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup fetches the first entry for term
func (c *Client) Lookup(ctx context.Context, term string) (Entry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Entry{}, ErrNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(term), nil)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Entry{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Entry{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var entries []apiEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return Entry{}, fmt.Errorf("failed to decode dictionary response: %w", err)
	}
	if len(entries) == 0 {
		return Entry{}, ErrNotFound
	}

	entry := toEntry(entries[0])
	if entry == (Entry{}) {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func toEntry(e apiEntry) Entry {
	var out Entry

	for _, p := range e.Phonetics {
		if out.Pronunciation == "" && p.Text != "" {
			out.Pronunciation = p.Text
		}
		if out.AudioRef == "" && p.Audio != "" {
			out.AudioRef = p.Audio
		}
	}
	if out.Pronunciation == "" {
		out.Pronunciation = e.Phonetic
	}
	// protocol-relative links show up in older entries
	if strings.HasPrefix(out.AudioRef, "//") {
		out.AudioRef = "https:" + out.AudioRef
	}

	if len(e.Meanings) > 0 {
		first := e.Meanings[0]
		out.PartOfSpeech = first.PartOfSpeech
		if len(first.Definitions) > 0 {
			out.Meaning = first.Definitions[0].Definition
			out.Example = first.Definitions[0].Example
		}
	}
	if out.Example == "" {
	search:
		for _, m := range e.Meanings {
			for _, d := range m.Definitions {
				if d.Example != "" {
					out.Example = d.Example
					break search
				}
			}
		}
	}
	return out
}
