package models

import (
	"strings"
	"time"
)

// LearnedLevel is the level from which a word counts as learned
const LearnedLevel = 5

// Word represents a vocabulary entry
type Word struct {
	ID             int64     `json:"id" db:"id"`
	Term           string    `json:"word" db:"term"`
	PartOfSpeech   string    `json:"partOfSpeech" db:"part_of_speech"`
	Meaning        string    `json:"meaning" db:"meaning"`
	Example        string    `json:"example" db:"example"`
	Pronunciation  string    `json:"pronunciation" db:"pronunciation"`
	AudioRef       string    `json:"audio" db:"audio_ref"`
	Tags           []string  `json:"tags" db:"-"`
	Level          int       `json:"level" db:"level"`
	NextReviewDate time.Time `json:"nextReviewDate" db:"-"`
	AddedDate      time.Time `json:"addedDate" db:"-"`
}

// IsLearned reports whether the word reached the learned threshold
func (w Word) IsLearned() bool {
	return w.Level >= LearnedLevel
}

// Repair fills scheduling fields that legacy records may lack and
// brings the level into 1..maxLevel. A maxLevel below 1 leaves the
// upper bound unchecked. It returns true when something was changed.
func (w *Word) Repair(now time.Time, maxLevel int) bool {
	changed := false
	if w.Level < 1 {
		w.Level = 1
		changed = true
	}
	if maxLevel > 0 && w.Level > maxLevel {
		w.Level = maxLevel
		changed = true
	}
	if w.NextReviewDate.IsZero() {
		w.NextReviewDate = now
		changed = true
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return changed
}

// Clone returns a copy that does not share the tags slice
func (w Word) Clone() Word {
	c := w
	c.Tags = append([]string(nil), w.Tags...)
	return c
}

// ParseTags splits a comma separated tag list, dropping empty entries
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// WordPatch holds the editable fields of a word. Nil fields are left unchanged.
type WordPatch struct {
	Term          *string
	PartOfSpeech  *string
	Meaning       *string
	Example       *string
	Pronunciation *string
	AudioRef      *string
	Tags          []string
	SetTags       bool
}

// Apply copies the set fields onto the word
func (p WordPatch) Apply(w *Word) {
	if p.Term != nil {
		w.Term = *p.Term
	}
	if p.PartOfSpeech != nil {
		w.PartOfSpeech = *p.PartOfSpeech
	}
	if p.Meaning != nil {
		w.Meaning = *p.Meaning
	}
	if p.Example != nil {
		w.Example = *p.Example
	}
	if p.Pronunciation != nil {
		w.Pronunciation = *p.Pronunciation
	}
	if p.AudioRef != nil {
		w.AudioRef = *p.AudioRef
	}
	if p.SetTags {
		w.Tags = append([]string{}, p.Tags...)
	}
}
