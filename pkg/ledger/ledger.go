// Package ledger records served vehicles in a SQLite database.
//
// The ledger is write-mostly: the intersection never reads it back.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"

	"github.com/anggasct/crossway"
)

const schema = `
CREATE TABLE IF NOT EXISTS served_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	tick        INTEGER NOT NULL,
	lane_id     TEXT    NOT NULL,
	vehicle_id  TEXT    NOT NULL,
	mode        TEXT    NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_served_events_lane ON served_events(lane_id);
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Ledger is an observer that buffers served events and writes them in one
// transaction per tick
type Ledger struct {
	crossway.BaseObserver

	db         *sql.DB
	insertStmt *sql.Stmt
	now        func() time.Time

	pending []crossway.ServedEvent
	err     error
	mutex   sync.Mutex
}

// Open opens or creates the ledger database at path
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %q: %w", path, err)
	}
	// A single connection keeps in-memory databases shared between calls
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to configure ledger: %w", err), db.Close())
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create ledger schema: %w", err), db.Close())
	}

	stmt, err := db.Prepare(`INSERT INTO served_events (tick, lane_id, vehicle_id, mode, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to prepare ledger insert: %w", err), db.Close())
	}

	return &Ledger{
		db:         db,
		insertStmt: stmt,
		now:        time.Now,
	}, nil
}

// OnServed buffers a served event until the tick completes
func (l *Ledger) OnServed(event crossway.ServedEvent) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.pending = append(l.pending, event)
}

// OnTickCompleted writes the tick's buffered events
func (l *Ledger) OnTickCompleted(report *crossway.TickReport) {
	if err := l.Flush(); err != nil {
		l.mutex.Lock()
		l.err = multierr.Append(l.err, err)
		l.mutex.Unlock()
	}
}

// Flush writes buffered events in a single transaction. Events from a
// failed transaction are dropped.
func (l *Ledger) Flush() error {
	l.mutex.Lock()
	events := l.pending
	l.pending = nil
	l.mutex.Unlock()

	if len(events) == 0 {
		return nil
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}

	stmt := tx.Stmt(l.insertStmt)
	recordedAt := l.now().UnixMilli()
	for _, event := range events {
		if _, err := stmt.Exec(event.Tick, event.LaneID, string(event.Vehicle), event.Mode.String(), recordedAt); err != nil {
			return multierr.Append(
				fmt.Errorf("failed to record vehicle %q: %w", event.Vehicle, err),
				tx.Rollback(),
			)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

// Err returns the accumulated write errors
func (l *Ledger) Err() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.err
}

// Count returns the number of recorded events
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var count int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM served_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count served events: %w", err)
	}
	return count, nil
}

// CountByLane returns the number of recorded events per lane
func (l *Ledger) CountByLane(ctx context.Context) (map[string]int, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT lane_id, COUNT(*) FROM served_events GROUP BY lane_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query served events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			lane  string
			count int
		)
		if err := rows.Scan(&lane, &count); err != nil {
			return nil, fmt.Errorf("failed to scan served events: %w", err)
		}
		counts[lane] = count
	}
	return counts, rows.Err()
}

// Events returns the recorded events of one lane in service order
func (l *Ledger) Events(ctx context.Context, laneID string) ([]crossway.ServedEvent, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT tick, lane_id, vehicle_id, mode FROM served_events WHERE lane_id = ? ORDER BY id", laneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query served events: %w", err)
	}
	defer rows.Close()

	var events []crossway.ServedEvent
	for rows.Next() {
		var (
			event   crossway.ServedEvent
			vehicle string
			mode    string
		)
		if err := rows.Scan(&event.Tick, &event.LaneID, &vehicle, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan served events: %w", err)
		}
		event.Vehicle = crossway.Vehicle(vehicle)
		if err := event.Mode.UnmarshalText([]byte(mode)); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close flushes buffered events and closes the database
func (l *Ledger) Close() error {
	err := l.Flush()
	err = multierr.Append(err, l.insertStmt.Close())
	return multierr.Append(err, l.db.Close())
}
