package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"go.sazak.io/tictoc/timespec"
)

// SQLiteStore implements LapStore using SQLite
type SQLiteStore struct {
	db       *sql.DB
	session  *Session
	mu       sync.RWMutex
	lapCount int64
	baseDir  string
}

const schema = `
CREATE TABLE IF NOT EXISTS laps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	idx INTEGER NOT NULL,
	start_sec INTEGER NOT NULL,
	start_nsec INTEGER NOT NULL,
	stop_sec INTEGER NOT NULL,
	stop_nsec INTEGER NOT NULL,
	dur_sec INTEGER NOT NULL,
	dur_nsec INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lap_idx ON laps(idx);
CREATE INDEX IF NOT EXISTS idx_lap_dur ON laps(dur_sec, dur_nsec);
`

// NewSQLiteStore creates a new SQLite lap store
func NewSQLiteStore(baseDir string, session *Session) (*SQLiteStore, error) {
	sessionDir := filepath.Join(baseDir, session.ID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	dbPath := filepath.Join(sessionDir, "laps.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	store := &SQLiteStore{
		db:      db,
		session: session,
		baseDir: baseDir,
	}

	return store, nil
}

// OpenSQLiteStore opens an existing SQLite store for reading
func OpenSQLiteStore(baseDir string, sessionID string) (*SQLiteStore, error) {
	sessionDir := filepath.Join(baseDir, sessionID)
	dbPath := filepath.Join(sessionDir, "laps.db")

	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("stat sqlite database: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{
		db:      db,
		baseDir: baseDir,
	}

	session, err := loadSessionMetadata(sessionDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load session metadata: %w", err)
	}
	store.session = session

	return store, nil
}

const insertLap = `INSERT INTO laps (idx, start_sec, start_nsec, stop_sec, stop_nsec, dur_sec, dur_nsec)
				   VALUES (?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) WriteLap(lap *Lap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(insertLap,
		lap.Index,
		lap.Start.Sec,
		lap.Start.Nsec,
		lap.Stop.Sec,
		lap.Stop.Nsec,
		lap.Duration.Sec,
		lap.Duration.Nsec,
	)
	if err != nil {
		return fmt.Errorf("insert lap: %w", err)
	}

	s.lapCount++
	return nil
}

func (s *SQLiteStore) WriteBatch(laps []*Lap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertLap)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, lap := range laps {
		_, err := stmt.Exec(
			lap.Index,
			lap.Start.Sec,
			lap.Start.Nsec,
			lap.Stop.Sec,
			lap.Stop.Nsec,
			lap.Duration.Sec,
			lap.Duration.Nsec,
		)
		if err != nil {
			return fmt.Errorf("insert lap: %w", err)
		}
		s.lapCount++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (s *SQLiteStore) ReadLaps(ctx context.Context, filter *LapFilter) ([]*Lap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT idx, start_sec, start_nsec, stop_sec, stop_nsec, dur_sec, dur_nsec FROM laps WHERE 1=1"
	args := []interface{}{}

	if filter != nil {
		if filter.MinIndex != nil {
			query += " AND idx >= ?"
			args = append(args, *filter.MinIndex)
		}
		if filter.MaxIndex != nil {
			query += " AND idx <= ?"
			args = append(args, *filter.MaxIndex)
		}
		if filter.MinDurationNs != nil {
			query += " AND (dur_sec * 1000000000 + dur_nsec) >= ?"
			args = append(args, *filter.MinDurationNs)
		}
		if filter.MaxDurationNs != nil {
			query += " AND (dur_sec * 1000000000 + dur_nsec) <= ?"
			args = append(args, *filter.MaxDurationNs)
		}
	}

	query += " ORDER BY idx ASC"

	if filter != nil {
		if filter.Limit > 0 {
			query += " LIMIT ?"
			args = append(args, filter.Limit)
		}
		if filter.Offset > 0 {
			if filter.Limit <= 0 {
				query += " LIMIT -1"
			}
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query laps: %w", err)
	}
	defer rows.Close()

	var laps []*Lap
	for rows.Next() {
		var lap Lap
		err := rows.Scan(
			&lap.Index,
			&lap.Start.Sec,
			&lap.Start.Nsec,
			&lap.Stop.Sec,
			&lap.Stop.Nsec,
			&lap.Duration.Sec,
			&lap.Duration.Nsec,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lap: %w", err)
		}
		laps = append(laps, &lap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return laps, nil
}

func (s *SQLiteStore) TotalDuration(ctx context.Context) (timespec.Timespec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total timespec.Timespec

	rows, err := s.db.QueryContext(ctx, "SELECT dur_sec, dur_nsec FROM laps ORDER BY idx ASC")
	if err != nil {
		return total, fmt.Errorf("query durations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d timespec.Timespec
		if err := rows.Scan(&d.Sec, &d.Nsec); err != nil {
			return total, fmt.Errorf("scan duration: %w", err)
		}
		total = total.Add(d)
	}

	if err := rows.Err(); err != nil {
		return total, fmt.Errorf("iterate rows: %w", err)
	}

	return total, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *SQLiteStore) UpdateSession(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	sessionDir := filepath.Join(s.baseDir, session.ID)
	return saveSessionMetadata(sessionDir, session)
}
