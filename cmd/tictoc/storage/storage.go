package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.sazak.io/tictoc/timespec"
)

// Lap is one recorded start/stop interval of a timing session. Start and
// Stop are monotonic instants; Duration is their normalized difference. All
// fields are fixed width so the struct can be written as-is by the binary
// store.
type Lap struct {
	Index    uint64            `json:"index"`
	Start    timespec.Timespec `json:"start"`
	Stop     timespec.Timespec `json:"stop"`
	Duration timespec.Timespec `json:"duration"`
}

type Session struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Command   string     `json:"command"`
	Args      []string   `json:"args,omitempty"`
	LapCount  int64      `json:"lap_count"`
}

type LapFilter struct {
	MinIndex      *uint64
	MaxIndex      *uint64
	MinDurationNs *int64
	MaxDurationNs *int64
	Limit         int
	Offset        int
}

type LapStore interface {
	WriteLap(lap *Lap) error
	WriteBatch(laps []*Lap) error
	ReadLaps(ctx context.Context, filter *LapFilter) ([]*Lap, error)
	// TotalDuration sums the recorded lap durations.
	TotalDuration(ctx context.Context) (timespec.Timespec, error)
	Close() error
	GetSession() *Session
	UpdateSession(session *Session) error
}

type SessionStore interface {
	ListSessions(ctx context.Context) ([]*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	OpenSession(ctx context.Context, id string) (LapStore, error)
	CreateSession(ctx context.Context, session *Session, format string) (LapStore, error)
	DeleteSession(ctx context.Context, id string) error
	io.Closer
}

func matchLap(lap *Lap, filter *LapFilter) bool {
	if filter == nil {
		return true
	}
	if filter.MinIndex != nil && lap.Index < *filter.MinIndex {
		return false
	}
	if filter.MaxIndex != nil && lap.Index > *filter.MaxIndex {
		return false
	}
	if filter.MinDurationNs != nil && lap.Duration.Nanoseconds() < *filter.MinDurationNs {
		return false
	}
	if filter.MaxDurationNs != nil && lap.Duration.Nanoseconds() > *filter.MaxDurationNs {
		return false
	}
	return true
}

func saveSessionMetadata(sessionDir string, session *Session) error {
	metadataPath := filepath.Join(sessionDir, "metadata.json")
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session metadata: %w", err)
	}

	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		return fmt.Errorf("write session metadata: %w", err)
	}

	return nil
}

func loadSessionMetadata(sessionDir string) (*Session, error) {
	metadataPath := filepath.Join(sessionDir, "metadata.json")
	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("read session metadata: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session metadata: %w", err)
	}

	return &session, nil
}
