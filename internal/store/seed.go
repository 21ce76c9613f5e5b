package store

import (
	"time"

	"github.com/example/vocablab/pkg/models"
)

// SampleWords returns the starter collection used on first run and after a reset
func SampleWords(now time.Time) []models.Word {
	return []models.Word{
		{
			ID:             1,
			Term:           "abandon",
			PartOfSpeech:   "verb",
			Meaning:        "to leave behind or give up completely",
			Example:        "He had to abandon the car.",
			Pronunciation:  "əˈbændən",
			Tags:           []string{"common"},
			Level:          1,
			NextReviewDate: now,
			AddedDate:      now,
		},
		{
			ID:             2,
			Term:           "benevolent",
			PartOfSpeech:   "adjective",
			Meaning:        "kind and generous",
			Example:        "A benevolent donor helped the school.",
			Pronunciation:  "bəˈnevələnt",
			Tags:           []string{"advanced"},
			Level:          1,
			NextReviewDate: now,
			AddedDate:      now,
		},
		{
			ID:             3,
			Term:           "curious",
			PartOfSpeech:   "adjective",
			Meaning:        "eager to know or learn something",
			Example:        "She was curious about the new technology.",
			Pronunciation:  "ˈkjʊriəs",
			Tags:           []string{"common", "personality"},
			Level:          5,
			NextReviewDate: now.AddDate(0, 0, 10),
			AddedDate:      now,
		},
	}
}
