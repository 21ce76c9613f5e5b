package excel

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocablab/pkg/models"
)

func TestImportCSV(t *testing.T) {
	in := strings.Join([]string{
		"word,pos,meaning,example,pronunciation,audio,tags",
		"Движение,,,,,,",
		"go (went; gone),verb,move,Let's go.,ɡoʊ,,basic",
		"run,verb,move fast,,,,\"basic, sport\"",
		",noun,orphan meaning,,,,",
		"",
		"Еда,,",
		"apple,noun,,,,,",
		"bread,noun,baked food",
	}, "\n")

	res, err := Import(strings.NewReader(in), "words.csv", DefaultImportConfig())
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalProcessed)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Errors, 2)
	require.Len(t, res.Words, 3)

	assert.Equal(t, "go", res.Words[0].Term)
	assert.Equal(t, "verb", res.Words[0].PartOfSpeech)
	assert.Equal(t, "ɡoʊ", res.Words[0].Pronunciation)
	assert.Equal(t, []string{"basic", "Движение"}, res.Words[0].Tags)

	assert.Equal(t, []string{"basic", "sport", "Движение"}, res.Words[1].Tags)
	assert.Equal(t, []string{"Еда"}, res.Words[2].Tags)
}

func TestExportThenImportWorkbook(t *testing.T) {
	words := []models.Word{
		{Term: "abandon", PartOfSpeech: "verb", Meaning: "give up", Example: "Abandon ship!",
			Tags: []string{"common", "b2"}, Level: 3, NextReviewDate: time.Now()},
		{Term: "curious", Meaning: "eager to know", Tags: []string{}, Level: 1, NextReviewDate: time.Now()},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, words))

	res, err := Import(&buf, "words.xlsx", DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Words, 2)

	assert.Equal(t, "abandon", res.Words[0].Term)
	assert.Equal(t, "give up", res.Words[0].Meaning)
	assert.Equal(t, "Abandon ship!", res.Words[0].Example)
	assert.Equal(t, []string{"common", "b2"}, res.Words[0].Tags)
	assert.Equal(t, "curious", res.Words[1].Term)
	assert.Empty(t, res.Words[1].Tags)
}

func TestImportRejectsGarbageWorkbook(t *testing.T) {
	_, err := Import(strings.NewReader("definitely not a zip"), "words.xlsx", DefaultImportConfig())
	assert.Error(t, err)
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 6, columnToIndex("g"))
	assert.Equal(t, 27, columnToIndex("AB"))
	assert.Equal(t, -1, columnToIndex("1"))
}
