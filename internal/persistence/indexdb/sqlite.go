// Package indexdb keeps a small SQLite index of generation jobs and
// their undo snapshots, so builds survive a server restart and remain
// reversible afterwards.
package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"pathcraft.dev/internal/placement"
)

type JobRow struct {
	ID        string
	SessionID string
	Operator  string
	Mode      string
	Blocks    int
	Status    string
	CreatedAt string
	UpdatedAt string
}

type Index struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqJob reqKind = iota + 1
	reqStatus
	reqUndo
)

type req struct {
	kind   reqKind
	job    JobRow
	jobID  string
	status string
	undo   []byte
}

func Open(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Index{
		db: db,
		ch: make(chan req, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style write load.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			operator TEXT NOT NULL,
			mode TEXT NOT NULL,
			blocks INTEGER NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_session ON jobs(session_id);`,
		`CREATE TABLE IF NOT EXISTS undo_snapshots (
			job_id TEXT PRIMARY KEY,
			entries_json TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Index) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// RecordJob indexes a newly queued job. Drops the write if the indexer
// falls behind; the JSONL job log remains the source of truth.
func (s *Index) RecordJob(id, sessionID, operator, mode string, blockCount int) {
	if s == nil || s.closed.Load() {
		return
	}
	r := JobRow{
		ID:        id,
		SessionID: sessionID,
		Operator:  operator,
		Mode:      mode,
		Blocks:    blockCount,
		Status:    placement.StatusQueued,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	select {
	case s.ch <- req{kind: reqJob, job: r}:
	default:
	}
}

func (s *Index) UpdateStatus(jobID, status string) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqStatus, jobID: jobID, status: status}:
	default:
	}
}

// SaveUndo stores the prior-state snapshot of a finished job.
func (s *Index) SaveUndo(jobID string, entries []placement.UndoEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return
	}
	select {
	case s.ch <- req{kind: reqUndo, jobID: jobID, undo: b}:
	default:
	}
}

// LoadUndo reads a job's undo snapshot back. Synchronous; used on the
// request path.
func (s *Index) LoadUndo(jobID string) ([]placement.UndoEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("index disabled")
	}
	var raw string
	err := s.db.QueryRow(`SELECT entries_json FROM undo_snapshots WHERE job_id = ?`, jobID).Scan(&raw)
	if err != nil {
		return nil, err
	}
	var entries []placement.UndoEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// JobsForSession lists a session's jobs, newest first.
func (s *Index) JobsForSession(sessionID string, limit int) ([]JobRow, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id,session_id,operator,mode,blocks,status,created_at,updated_at
		 FROM jobs WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JobRow
	for rows.Next() {
		var r JobRow
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Operator, &r.Mode, &r.Blocks, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Index) loop() {
	insertJob, _ := s.db.Prepare(`INSERT OR REPLACE INTO jobs(id,session_id,operator,mode,blocks,status,created_at,updated_at) VALUES(?,?,?,?,?,?,?,?)`)
	updateStatus, _ := s.db.Prepare(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`)
	insertUndo, _ := s.db.Prepare(`INSERT OR REPLACE INTO undo_snapshots(job_id,entries_json,recorded_at) VALUES(?,?,?)`)
	defer func() {
		if insertJob != nil {
			_ = insertJob.Close()
		}
		if updateStatus != nil {
			_ = updateStatus.Close()
		}
		if insertUndo != nil {
			_ = insertUndo.Close()
		}
	}()

	for r := range s.ch {
		switch r.kind {
		case reqJob:
			if insertJob != nil {
				_, _ = insertJob.Exec(r.job.ID, r.job.SessionID, r.job.Operator, r.job.Mode, r.job.Blocks, r.job.Status, r.job.CreatedAt, r.job.UpdatedAt)
			}
		case reqStatus:
			if updateStatus != nil {
				_, _ = updateStatus.Exec(r.status, now(), r.jobID)
			}
		case reqUndo:
			if insertUndo != nil {
				_, _ = insertUndo.Exec(r.jobID, string(r.undo), now())
			}
		}
	}
}
