package backup

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocablab/pkg/models"
)

var now = time.Date(2024, 7, 4, 10, 0, 0, 0, time.UTC)

func TestExportDecodeRoundTrip(t *testing.T) {
	words := []models.Word{
		{ID: 1712345678901, Term: "abandon", PartOfSpeech: "verb", Meaning: "give up", Example: "He had to abandon the car.",
			Pronunciation: "əˈbændən", AudioRef: "https://example.com/a.mp3", Tags: []string{"common"}, Level: 4,
			NextReviewDate: now.AddDate(0, 0, 14), AddedDate: now.AddDate(0, -1, 0)},
		{ID: 2, Term: "curious", Meaning: "eager to know", Tags: []string{}, Level: 7,
			NextReviewDate: now.AddDate(0, 0, 120), AddedDate: now},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, words, []int{80}, now))
	assert.Contains(t, buf.String(), `"words"`)
	assert.Contains(t, buf.String(), `"word": "abandon"`)

	doc, err := Decode(&buf, now.Add(time.Hour), 7)
	require.NoError(t, err)
	assert.Equal(t, words, doc.Words)
	assert.Equal(t, []int{80}, doc.Scores)
}

func TestDecodeRejectsDocumentWithoutWords(t *testing.T) {
	for _, in := range []string{`{"notWords": []}`, `{"words": null}`, `{}`} {
		_, err := Decode(strings.NewReader(in), now, 7)
		assert.ErrorIs(t, err, ErrMissingWords, in)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{`not json`, `[1,2]`, `{"words": {"a": 1}}`, `{"words": [{"id": "x"}]}`} {
		_, err := Decode(strings.NewReader(in), now, 7)
		assert.ErrorIs(t, err, ErrInvalidDocument, in)
	}
}

func TestDecodeMigratesLegacyRecords(t *testing.T) {
	in := `{"words": [
		{"id": 1, "word": "old", "meaning": "learned already", "learned": true},
		{"id": 2, "word": "new", "meaning": "still learning", "learned": false, "level": 4},
		{"id": 3, "word": "bare", "meaning": "no schedule"}
	]}`

	doc, err := Decode(strings.NewReader(in), now, 7)
	require.NoError(t, err)
	require.Len(t, doc.Words, 3)

	assert.Equal(t, 5, doc.Words[0].Level)
	assert.Equal(t, now, doc.Words[0].NextReviewDate)
	assert.Equal(t, 1, doc.Words[1].Level)
	assert.Equal(t, 1, doc.Words[2].Level)
	assert.Equal(t, now, doc.Words[2].NextReviewDate)
	assert.Equal(t, now, doc.Words[2].AddedDate)
	assert.NotNil(t, doc.Words[2].Tags)
}

func TestDecodeClampsLevels(t *testing.T) {
	in := `{"words": [
		{"id": 1, "word": "far", "meaning": "too high", "level": 42, "nextReviewDate": "2024-07-10T00:00:00Z"},
		{"id": 2, "word": "top", "meaning": "fits", "level": 3, "nextReviewDate": "2024-07-10T00:00:00Z"}
	]}`

	doc, err := Decode(strings.NewReader(in), now, 3)
	require.NoError(t, err)
	require.Len(t, doc.Words, 2)
	assert.Equal(t, 3, doc.Words[0].Level)
	assert.Equal(t, 3, doc.Words[1].Level)
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), doc.Words[0].NextReviewDate)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "vocablab_backup_2024-07-04.json", FileName(now))
}
