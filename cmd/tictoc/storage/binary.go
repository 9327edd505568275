package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.sazak.io/tictoc/timespec"
)

const (
	binaryMagicNumber = uint32(0x4C415053) // "LAPS"
	binaryVersion     = uint32(1)
	headerSize        = 8
)

// BinaryStore implements LapStore using a fixed-record binary format
type BinaryStore struct {
	file     *os.File
	session  *Session
	mu       sync.RWMutex
	lapCount int64
	baseDir  string
}

// NewBinaryStore creates a new binary lap store
func NewBinaryStore(baseDir string, session *Session) (*BinaryStore, error) {
	sessionDir := filepath.Join(baseDir, session.ID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	filePath := filepath.Join(sessionDir, "laps.bin")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open binary file: %w", err)
	}

	store := &BinaryStore{
		file:    file,
		session: session,
		baseDir: baseDir,
	}

	// Write header if file is empty
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if stat.Size() == 0 {
		if err := store.writeHeader(); err != nil {
			file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	return store, nil
}

// OpenBinaryStore opens an existing binary store for reading
func OpenBinaryStore(baseDir string, sessionID string) (*BinaryStore, error) {
	sessionDir := filepath.Join(baseDir, sessionID)
	filePath := filepath.Join(sessionDir, "laps.bin")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open binary file: %w", err)
	}

	store := &BinaryStore{
		file:    file,
		baseDir: baseDir,
	}

	if err := store.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}

	session, err := loadSessionMetadata(sessionDir)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("load session metadata: %w", err)
	}
	store.session = session

	return store, nil
}

func (s *BinaryStore) writeHeader() error {
	if err := binary.Write(s.file, binary.LittleEndian, binaryMagicNumber); err != nil {
		return err
	}
	if err := binary.Write(s.file, binary.LittleEndian, binaryVersion); err != nil {
		return err
	}
	return nil
}

func (s *BinaryStore) readHeader() error {
	var magic, version uint32
	if err := binary.Read(s.file, binary.LittleEndian, &magic); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if magic != binaryMagicNumber {
		return fmt.Errorf("invalid magic number: %x", magic)
	}
	if err := binary.Read(s.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if version != binaryVersion {
		return fmt.Errorf("unsupported version: %d", version)
	}
	return nil
}

func (s *BinaryStore) WriteLap(lap *Lap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := binary.Write(s.file, binary.LittleEndian, lap); err != nil {
		return fmt.Errorf("write lap: %w", err)
	}

	s.lapCount++
	return nil
}

func (s *BinaryStore) WriteBatch(laps []*Lap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lap := range laps {
		if err := binary.Write(s.file, binary.LittleEndian, lap); err != nil {
			return fmt.Errorf("write lap: %w", err)
		}
		s.lapCount++
	}

	return nil
}

func (s *BinaryStore) ReadLaps(ctx context.Context, filter *LapFilter) ([]*Lap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Seek past the header
	if _, err := s.file.Seek(headerSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	var laps []*Lap
	count := 0
	skipped := 0

	for {
		select {
		case <-ctx.Done():
			return laps, ctx.Err()
		default:
		}

		var lap Lap
		if err := binary.Read(s.file, binary.LittleEndian, &lap); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read lap: %w", err)
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

	return laps, nil
}

func (s *BinaryStore) TotalDuration(ctx context.Context) (timespec.Timespec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total timespec.Timespec

	if _, err := s.file.Seek(headerSize, io.SeekStart); err != nil {
		return total, fmt.Errorf("seek to start: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		var lap Lap
		if err := binary.Read(s.file, binary.LittleEndian, &lap); err != nil {
			if err == io.EOF {
				break
			}
			return total, fmt.Errorf("read lap: %w", err)
		}

		total = total.Add(lap.Duration)
	}

	return total, nil
}

func (s *BinaryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *BinaryStore) GetSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *BinaryStore) UpdateSession(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	sessionDir := filepath.Join(s.baseDir, session.ID)
	return saveSessionMetadata(sessionDir, session)
}
