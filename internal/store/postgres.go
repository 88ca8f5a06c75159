package store

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/epasquet/boursobot/internal/models"
)

// PostgresStore is the alternate backend for installations that want the
// history queryable in SQL. First-wins slot semantics are enforced by the
// primary keys: saving a merged table inserts with ON CONFLICT DO NOTHING,
// so an existing slot row is never overwritten.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(url string) (*PostgresStore, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres backend selected but no postgres_url configured")
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("✓ Connected to PostgreSQL")
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS forum_history (
			ticker TEXT NOT NULL,
			date DATE NOT NULL,
			hour INT NOT NULL,
			minute INT NOT NULL,
			n_new_topics INT NOT NULL,
			n_new_topics_answers INT NOT NULL,
			n_topics_answered_today INT NOT NULL,
			n_posts INT NOT NULL,
			PRIMARY KEY (ticker, date, hour)
		)`,
		`CREATE TABLE IF NOT EXISTS preopen_history (
			ticker TEXT NOT NULL,
			date DATE NOT NULL,
			hour INT NOT NULL,
			minute INT NOT NULL,
			previous_close_value DOUBLE PRECISION NOT NULL,
			preopen_value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (ticker, date, hour, minute)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) LoadForum(ticker string) ([]models.ForumHistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT date, hour, minute, n_new_topics, n_new_topics_answers, n_topics_answered_today, n_posts
		FROM forum_history
		WHERE ticker = $1
		ORDER BY date, hour`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query forum history: %w", err)
	}
	defer rows.Close()

	var entries []models.ForumHistoryEntry
	for rows.Next() {
		var e models.ForumHistoryEntry
		if err := rows.Scan(&e.Date, &e.Hour, &e.Minute, &e.NewTopics, &e.NewTopicsAnswers, &e.TopicsAnsweredToday, &e.Posts); err != nil {
			return nil, fmt.Errorf("failed to scan forum history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) SaveForum(ticker string, entries []models.ForumHistoryEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO forum_history
				(ticker, date, hour, minute, n_new_topics, n_new_topics_answers, n_topics_answered_today, n_posts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (ticker, date, hour) DO NOTHING`,
			ticker, e.Date, e.Hour, e.Minute, e.NewTopics, e.NewTopicsAnswers, e.TopicsAnsweredToday, e.Posts)
		if err != nil {
			return fmt.Errorf("failed to insert forum history row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) LoadPreopen(ticker string) ([]models.PreopenHistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT date, hour, minute, previous_close_value, preopen_value
		FROM preopen_history
		WHERE ticker = $1
		ORDER BY date, hour, minute`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query preopen history: %w", err)
	}
	defer rows.Close()

	var entries []models.PreopenHistoryEntry
	for rows.Next() {
		var e models.PreopenHistoryEntry
		if err := rows.Scan(&e.Date, &e.Hour, &e.Minute, &e.PreviousClose, &e.Preopen); err != nil {
			return nil, fmt.Errorf("failed to scan preopen history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) SavePreopen(ticker string, entries []models.PreopenHistoryEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO preopen_history
				(ticker, date, hour, minute, previous_close_value, preopen_value)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (ticker, date, hour, minute) DO NOTHING`,
			ticker, e.Date, e.Hour, e.Minute, e.PreviousClose, e.Preopen)
		if err != nil {
			return fmt.Errorf("failed to insert preopen history row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
