package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/rxtrace/internal/ir"
)

// Load returns the persisted blob for a collection.
// A collection that was never saved loads as an empty array.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if !slices.Contains(ir.Collections, name) {
		return nil, &PersistenceError{Op: "load", Collection: name, Err: ErrUnknownCollection}
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Collection: name, Err: err}
	}
	return []byte(data), nil
}

// ReadEvents returns the events recorded for one subject, ordered by seq.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadEvents(ctx context.Context, subject string) ([]Event, error) {
	return s.queryEvents(ctx, `
		SELECT seq, id, op, subject, payload, recorded_on
		FROM events
		WHERE subject = ?
		ORDER BY seq ASC
	`, subject)
}

// ReadAllEvents returns every event ordered by seq.
func (s *Store) ReadAllEvents(ctx context.Context) ([]Event, error) {
	return s.queryEvents(ctx, `
		SELECT seq, id, op, subject, payload, recorded_on
		FROM events
		ORDER BY seq ASC
	`)
}

// LastSeq returns the highest event sequence number, or 0 for a new store.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq); err != nil {
		return 0, &PersistenceError{Op: "load", Err: fmt.Errorf("last seq: %w", err)}
	}
	return seq.Int64, nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: fmt.Errorf("query events: %w", err)}
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.Op, &ev.Subject, &ev.Payload, &ev.RecordedOn); err != nil {
			return nil, &PersistenceError{Op: "load", Err: fmt.Errorf("scan event: %w", err)}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "load", Err: fmt.Errorf("iterate events: %w", err)}
	}
	return events, nil
}
