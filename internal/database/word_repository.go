package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocablab/pkg/models"
)

// WordRepository persists the word collection. It implements store.Persistence.
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// wordRow mirrors the words table. Older rows may hold NULLs.
type wordRow struct {
	ID             int64          `db:"id"`
	Position       int            `db:"position"`
	Term           string         `db:"term"`
	PartOfSpeech   sql.NullString `db:"part_of_speech"`
	Meaning        string         `db:"meaning"`
	Example        sql.NullString `db:"example"`
	Pronunciation  sql.NullString `db:"pronunciation"`
	AudioRef       sql.NullString `db:"audio_ref"`
	Tags           sql.NullString `db:"tags"`
	Level          sql.NullInt64  `db:"level"`
	NextReviewDate sql.NullString `db:"next_review_date"`
	AddedDate      sql.NullString `db:"added_date"`
}

func (r wordRow) toModel() models.Word {
	w := models.Word{
		ID:             r.ID,
		Term:           r.Term,
		PartOfSpeech:   r.PartOfSpeech.String,
		Meaning:        r.Meaning,
		Example:        r.Example.String,
		Pronunciation:  r.Pronunciation.String,
		AudioRef:       r.AudioRef.String,
		Level:          int(r.Level.Int64),
		NextReviewDate: parseTime(r.NextReviewDate),
		AddedDate:      parseTime(r.AddedDate),
		Tags:           []string{},
	}
	if r.Tags.Valid && r.Tags.String != "" {
		if err := json.Unmarshal([]byte(r.Tags.String), &w.Tags); err != nil {
			w.Tags = models.ParseTags(r.Tags.String)
		}
	}
	return w
}

func newWordRow(w models.Word, position int) (wordRow, error) {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return wordRow{}, fmt.Errorf("failed to encode tags: %w", err)
	}
	return wordRow{
		ID:             w.ID,
		Position:       position,
		Term:           w.Term,
		PartOfSpeech:   sql.NullString{String: w.PartOfSpeech, Valid: true},
		Meaning:        w.Meaning,
		Example:        sql.NullString{String: w.Example, Valid: true},
		Pronunciation:  sql.NullString{String: w.Pronunciation, Valid: true},
		AudioRef:       sql.NullString{String: w.AudioRef, Valid: true},
		Tags:           sql.NullString{String: string(encoded), Valid: true},
		Level:          sql.NullInt64{Int64: int64(w.Level), Valid: true},
		NextReviewDate: formatTime(w.NextReviewDate),
		AddedDate:      formatTime(w.AddedDate),
	}, nil
}

// LoadWords returns all words in insertion order. found is false on a
// database that never had words saved.
func (r *WordRepository) LoadWords(ctx context.Context) ([]models.Word, bool, error) {
	var rows []wordRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, position, term, part_of_speech, meaning, example, pronunciation,
		       audio_ref, tags, level, next_review_date, added_date
		FROM words
		ORDER BY position, id
	`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get words: %w", err)
	}

	_, initialized, err := NewSettingsRepository(r.db).Get(ctx, SettingWordsInitialized)
	if err != nil {
		return nil, false, err
	}

	words := make([]models.Word, 0, len(rows))
	for _, row := range rows {
		words = append(words, row.toModel())
	}
	return words, initialized || len(words) > 0, nil
}

// SaveWords replaces the stored collection in one transaction
func (r *WordRepository) SaveWords(ctx context.Context, words []models.Word) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM words"); err != nil {
		return fmt.Errorf("failed to clear words: %w", err)
	}

	const insert = `
		INSERT INTO words (id, position, term, part_of_speech, meaning, example, pronunciation,
		                   audio_ref, tags, level, next_review_date, added_date)
		VALUES (:id, :position, :term, :part_of_speech, :meaning, :example, :pronunciation,
		        :audio_ref, :tags, :level, :next_review_date, :added_date)
	`
	for i, w := range words {
		row, err := newWordRow(w, i)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			return fmt.Errorf("failed to save word %d: %w", w.ID, err)
		}
	}

	if err := setSetting(ctx, tx, SettingWordsInitialized, "true"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit words: %w", err)
	}
	return nil
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

// parseTime returns the zero time for NULL or malformed values; the store
// repairs those on load
func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
