package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/depot/core/model"
)

// SQLiteStore persists summaries to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS day_summaries (
        day_id TEXT PRIMARY KEY,
        started_at INTEGER,
        ended_at INTEGER,
        total_trips INTEGER,
        total_passengers INTEGER,
        record TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the summary to the database.
func (s *SQLiteStore) Append(ctx context.Context, sum model.DaySummary) error {
	b, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO day_summaries (day_id, started_at, ended_at, total_trips, total_passengers, record) VALUES (?, ?, ?, ?, ?, ?)`,
		sum.DayID.String(), sum.StartedAt.UnixNano(), sum.EndedAt.UnixNano(), sum.TotalTrips, sum.TotalPassengers, string(b))
	return err
}

// Query returns summaries matching q ordered by end time.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]model.DaySummary, error) {
	var args []any
	query := `SELECT record FROM day_summaries WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ended_at >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ended_at <= ?`
		args = append(args, q.End.UnixNano())
	}
	query += ` ORDER BY ended_at`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.DaySummary
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var sum model.DaySummary
		if err := json.Unmarshal([]byte(data), &sum); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		if q.Match(sum) {
			res = append(res, sum)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
