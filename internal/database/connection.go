package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverSQLite is the default embedded driver
	DriverSQLite = "sqlite3"
	// DriverPostgres selects lib/pq
	DriverPostgres = "postgres"
)

// Config describes where the data lives
type Config struct {
	Driver  string
	DSN     string
	DataDir string
}

// Connect opens the database and creates missing tables
func Connect(cfg Config) (*sqlx.DB, error) {
	dsn := cfg.DSN

	switch cfg.Driver {
	case DriverSQLite:
		if dsn == "" {
			dataDir := cfg.DataDir
			if dataDir == "" {
				dataDir = "data"
			}
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			dsn = filepath.Join(dataDir, "vocablab.db")
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	scoreID := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		scoreID = "id BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"words", `
			CREATE TABLE IF NOT EXISTS words (
				id BIGINT PRIMARY KEY,
				position INTEGER NOT NULL,
				term TEXT NOT NULL,
				part_of_speech TEXT,
				meaning TEXT NOT NULL,
				example TEXT,
				pronunciation TEXT,
				audio_ref TEXT,
				tags TEXT,
				level INTEGER,
				next_review_date TEXT,
				added_date TEXT
			)
		`},
		{"quiz_scores", `
			CREATE TABLE IF NOT EXISTS quiz_scores (
				` + scoreID + `,
				score INTEGER NOT NULL,
				taken_at TEXT NOT NULL
			)
		`},
		{"settings", `
			CREATE TABLE IF NOT EXISTS settings (
				name TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)
		`},
	}

	for _, st := range statements {
		if _, err := db.Exec(st.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", st.table, err)
		}
	}
	return nil
}
