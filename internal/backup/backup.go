package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/example/vocablab/pkg/models"
)

var (
	// ErrMissingWords is returned for documents without a words array
	ErrMissingWords = errors.New("document has no words field")
	// ErrInvalidDocument is returned for input that is not a backup document
	ErrInvalidDocument = errors.New("invalid backup document")
)

// Document is the import/export file format
type Document struct {
	Words      []models.Word `json:"words"`
	Scores     []int         `json:"scores,omitempty"`
	ExportedAt time.Time     `json:"exportedAt"`
}

// FileName returns the conventional name of a backup taken at now
func FileName(now time.Time) string {
	return fmt.Sprintf("vocablab_backup_%s.json", now.Format("2006-01-02"))
}

// Export writes the words and scores as an indented JSON document
func Export(w io.Writer, words []models.Word, scores []int, now time.Time) error {
	if words == nil {
		words = []models.Word{}
	}
	doc := Document{Words: words, Scores: scores, ExportedAt: now.UTC()}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// legacyFields are fields older exports carried
type legacyFields struct {
	Learned *bool `json:"learned"`
}

// Decode reads a backup document. Legacy records are repaired: a
// "learned" flag becomes level 5 or 1, missing levels and review dates
// default to 1 and now, levels above maxLevel are lowered to it.
func Decode(r io.Reader, now time.Time, maxLevel int) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read backup: %w", err)
	}

	var raw struct {
		Words  json.RawMessage `json:"words"`
		Scores []int           `json:"scores"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(raw.Words) == 0 || bytes.Equal(bytes.TrimSpace(raw.Words), []byte("null")) {
		return Document{}, ErrMissingWords
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw.Words, &items); err != nil {
		return Document{}, fmt.Errorf("%w: words must be an array: %v", ErrInvalidDocument, err)
	}

	doc := Document{Words: make([]models.Word, 0, len(items)), Scores: raw.Scores}
	for i, item := range items {
		var w models.Word
		if err := json.Unmarshal(item, &w); err != nil {
			return Document{}, fmt.Errorf("%w: word %d: %v", ErrInvalidDocument, i+1, err)
		}

		var legacy legacyFields
		if err := json.Unmarshal(item, &legacy); err == nil && legacy.Learned != nil {
			w.Level = 1
			if *legacy.Learned {
				w.Level = models.LearnedLevel
			}
			w.NextReviewDate = now
		}

		w.Repair(now, maxLevel)
		if w.AddedDate.IsZero() {
			w.AddedDate = now
		}
		doc.Words = append(doc.Words, w)
	}
	return doc, nil
}
