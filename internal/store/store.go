package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("missing database dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// TriageRecord is the anonymized per-message log row. It carries scores and
// flags only; message text never reaches the store.
type TriageRecord struct {
	ConversationID      string    `json:"conversation_id"`
	Timestamp           time.Time `json:"timestamp"`
	SentimentScore      float64   `json:"sentiment_score"`
	SentimentLabel      string    `json:"sentiment_label"`
	SentimentConfidence float64   `json:"sentiment_confidence"`
	CrisisDetected      bool      `json:"crisis_detected"`
	Severity            string    `json:"severity"`
	LatencyMS           int64     `json:"response_time_ms"`
}

func (s *Store) InsertRecord(ctx context.Context, rec TriageRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO triage_log (
			conversation_id, timestamp, sentiment_score, sentiment_label,
			sentiment_confidence, crisis_detected, severity, response_time_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ConversationID, rec.Timestamp, rec.SentimentScore, rec.SentimentLabel,
		rec.SentimentConfidence, rec.CrisisDetected, rec.Severity, rec.LatencyMS,
	)
	return err
}

func (s *Store) RecentRecords(ctx context.Context, limit int) ([]TriageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, timestamp, sentiment_score, sentiment_label,
			sentiment_confidence, crisis_detected, severity, response_time_ms
		FROM triage_log ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TriageRecord
	for rows.Next() {
		var rec TriageRecord
		if err := rows.Scan(&rec.ConversationID, &rec.Timestamp, &rec.SentimentScore,
			&rec.SentimentLabel, &rec.SentimentConfidence, &rec.CrisisDetected,
			&rec.Severity, &rec.LatencyMS); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) CountCrises(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM triage_log
		WHERE crisis_detected AND timestamp >= $1`, since).Scan(&count)
	return count, err
}
