package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // The database driver
)

// ErrNotFound is returned when a project or segment does not exist.
var ErrNotFound = errors.New("not found")

// DB is the global database connection.
var DB *sqlx.DB

// InitDB opens the connection and runs migrations.
func InitDB(dbURL string) {
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	var err error
	DB, err = sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err = RunMigrations(context.Background(), DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database connection established")
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  article_url TEXT,
  article_content TEXT,
  status TEXT NOT NULL DEFAULT 'draft',
  voice_type TEXT NOT NULL DEFAULT 'aria',
  voice_url TEXT,
  video_url TEXT,
  duration INTEGER NOT NULL DEFAULT 0 CHECK (duration >= 0),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS script_segments (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  line_number INTEGER NOT NULL,
  text TEXT NOT NULL DEFAULT '',
  keywords TEXT,
  clip_url TEXT,
  clip_thumbnail TEXT,
  clip_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
  audio_start DOUBLE PRECISION NOT NULL DEFAULT 0,
  audio_end DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_script_segments_project_line ON script_segments(project_id, line_number);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);
`

// RunMigrations creates the tables if they do not exist.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Store persists projects and their script segments.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func checkAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
