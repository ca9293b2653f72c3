// Package csvdata loads the two model output files (latest snapshot and full
// history) into memory, cached per file until its mtime or size changes.
package csvdata

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-pdm-fleet-dashboard/internal/fleet"
)

// Store reads and caches the snapshot and history tables. Each table reloads
// only when the backing file changes; a forced Reload drops both caches.
type Store struct {
	snapshotPath string
	historyPath  string
	log          *logrus.Logger

	mu       sync.Mutex
	snapshot *cachedSnapshot
	history  *cachedHistory
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

type cachedSnapshot struct {
	stamp    fileStamp
	rows     []fleet.SnapshotRow
	loadedAt time.Time
}

type cachedHistory struct {
	stamp    fileStamp
	table    fleet.HistoryTable
	loadedAt time.Time
}

// SourceStatus describes one backing file for the status endpoint.
type SourceStatus struct {
	Path     string     `json:"path"`
	OK       bool       `json:"ok"`
	Error    string     `json:"error,omitempty"`
	Rows     int        `json:"rows"`
	ModTime  *time.Time `json:"mod_time,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

func NewStore(snapshotPath, historyPath string, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.New()
	}
	return &Store{
		snapshotPath: snapshotPath,
		historyPath:  historyPath,
		log:          log,
	}
}

// Snapshot returns the cleaned latest-state table, re-reading the file only
// when it changed on disk.
func (s *Store) Snapshot(ctx context.Context) ([]fleet.SnapshotRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stamp, err := stat(s.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil && s.snapshot.stamp == stamp {
		return s.snapshot.rows, nil
	}

	rows, err := readSnapshotFile(s.snapshotPath)
	if err != nil {
		return nil, err
	}
	cleaned := fleet.CleanSnapshot(rows)
	if dropped := len(rows) - len(cleaned); dropped > 0 {
		s.log.WithFields(logrus.Fields{
			"file":    s.snapshotPath,
			"dropped": dropped,
		}).Warn("snapshot rows dropped during cleaning")
	}

	s.snapshot = &cachedSnapshot{stamp: stamp, rows: cleaned, loadedAt: time.Now().UTC()}
	s.log.WithFields(logrus.Fields{
		"file": s.snapshotPath,
		"rows": len(cleaned),
	}).Info("snapshot table loaded")
	return cleaned, nil
}

// History returns the parsed history table, re-reading the file only when it
// changed on disk.
func (s *Store) History(ctx context.Context) (fleet.HistoryTable, error) {
	if err := ctx.Err(); err != nil {
		return fleet.HistoryTable{}, err
	}

	stamp, err := stat(s.historyPath)
	if err != nil {
		return fleet.HistoryTable{}, fmt.Errorf("history file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history != nil && s.history.stamp == stamp {
		return s.history.table, nil
	}

	table, dropped, err := readHistoryFile(s.historyPath)
	if err != nil {
		return fleet.HistoryTable{}, err
	}
	if dropped > 0 {
		s.log.WithFields(logrus.Fields{
			"file":    s.historyPath,
			"dropped": dropped,
		}).Warn("history rows dropped: day not numeric")
	}

	s.history = &cachedHistory{stamp: stamp, table: table, loadedAt: time.Now().UTC()}
	s.log.WithFields(logrus.Fields{
		"file": s.historyPath,
		"rows": len(table.Rows),
	}).Info("history table loaded")
	return table, nil
}

// Invalidate drops both caches so the next read starts from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.history = nil
	s.mu.Unlock()
}

// Reload drops both caches and re-reads the files.
func (s *Store) Reload(ctx context.Context) error {
	s.Invalidate()

	if _, err := s.Snapshot(ctx); err != nil {
		return err
	}
	_, err := s.History(ctx)
	return err
}

// Status reports both backing files without forcing a reload.
func (s *Store) Status(ctx context.Context) map[string]SourceStatus {
	out := map[string]SourceStatus{}
	out["snapshot_csv"] = s.snapshotStatus(ctx)
	out["history_csv"] = s.historyStatus(ctx)
	return out
}

func (s *Store) snapshotStatus(ctx context.Context) SourceStatus {
	st := SourceStatus{Path: s.snapshotPath}
	rows, err := s.Snapshot(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.OK = true
	st.Rows = len(rows)
	s.mu.Lock()
	if s.snapshot != nil {
		mt := s.snapshot.stamp.modTime
		la := s.snapshot.loadedAt
		st.ModTime = &mt
		st.LoadedAt = &la
	}
	s.mu.Unlock()
	return st
}

func (s *Store) historyStatus(ctx context.Context) SourceStatus {
	st := SourceStatus{Path: s.historyPath}
	table, err := s.History(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.OK = true
	st.Rows = len(table.Rows)
	s.mu.Lock()
	if s.history != nil {
		mt := s.history.stamp.modTime
		la := s.history.loadedAt
		st.ModTime = &mt
		st.LoadedAt = &la
	}
	s.mu.Unlock()
	return st
}

func stat(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}
