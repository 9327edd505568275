package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.sazak.io/tictoc/timespec"
)

// JSONLStore implements LapStore using JSON Lines format
type JSONLStore struct {
	file     *os.File
	writer   *bufio.Writer
	session  *Session
	mu       sync.RWMutex
	lapCount int64
	baseDir  string
}

// NewJSONLStore creates a new JSONL lap store
func NewJSONLStore(baseDir string, session *Session) (*JSONLStore, error) {
	sessionDir := filepath.Join(baseDir, session.ID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	filePath := filepath.Join(sessionDir, "laps.jsonl")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open jsonl file: %w", err)
	}

	store := &JSONLStore{
		file:    file,
		writer:  bufio.NewWriter(file),
		session: session,
		baseDir: baseDir,
	}

	return store, nil
}

// OpenJSONLStore opens an existing JSONL store for reading
func OpenJSONLStore(baseDir string, sessionID string) (*JSONLStore, error) {
	sessionDir := filepath.Join(baseDir, sessionID)
	filePath := filepath.Join(sessionDir, "laps.jsonl")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open jsonl file: %w", err)
	}

	store := &JSONLStore{
		file:    file,
		baseDir: baseDir,
	}

	session, err := loadSessionMetadata(sessionDir)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("load session metadata: %w", err)
	}
	store.session = session

	return store, nil
}

func (s *JSONLStore) WriteLap(lap *Lap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLapLocked(lap); err != nil {
		return err
	}

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("flush writer: %w", err)
	}

	return nil
}

func (s *JSONLStore) WriteBatch(laps []*Lap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lap := range laps {
		if err := s.writeLapLocked(lap); err != nil {
			return err
		}
	}

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("flush writer: %w", err)
	}

	return nil
}

func (s *JSONLStore) writeLapLocked(lap *Lap) error {
	data, err := json.Marshal(lap)
	if err != nil {
		return fmt.Errorf("marshal lap: %w", err)
	}

	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("write lap: %w", err)
	}

	if err := s.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	s.lapCount++
	return nil
}

func (s *JSONLStore) ReadLaps(ctx context.Context, filter *LapFilter) ([]*Lap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	scanner := bufio.NewScanner(s.file)
	var laps []*Lap
	count := 0
	skipped := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return laps, ctx.Err()
		default:
		}

		var lap Lap
		if err := json.Unmarshal(scanner.Bytes(), &lap); err != nil {
			return nil, fmt.Errorf("unmarshal lap: %w", err)
		}

		if !matchLap(&lap, filter) {
			continue
		}
		if filter != nil && filter.Offset > 0 && skipped < filter.Offset {
			skipped++
			continue
		}

		laps = append(laps, &lap)
		count++

		if filter != nil && filter.Limit > 0 && count >= filter.Limit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return laps, nil
}

func (s *JSONLStore) TotalDuration(ctx context.Context) (timespec.Timespec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total timespec.Timespec

	if _, err := s.file.Seek(0, 0); err != nil {
		return total, fmt.Errorf("seek to start: %w", err)
	}

	scanner := bufio.NewScanner(s.file)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		var lap Lap
		if err := json.Unmarshal(scanner.Bytes(), &lap); err != nil {
			return total, fmt.Errorf("unmarshal lap: %w", err)
		}

		total = total.Add(lap.Duration)
	}

	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("scan file: %w", err)
	}

	return total, nil
}

func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}

	if s.file != nil {
		return s.file.Close()
	}

	return nil
}

func (s *JSONLStore) GetSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *JSONLStore) UpdateSession(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	sessionDir := filepath.Join(s.baseDir, session.ID)
	return saveSessionMetadata(sessionDir, session)
}
