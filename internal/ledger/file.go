package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "coursewatch/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.snapshot.json (full id set, rewritten on compaction)
//   - <prefix>.journal.jsonl (append-only, one id per line)
//
// The journal is periodically compacted into the snapshot.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	snapshotPath string
	journalPath  string
	journal      *os.File

	ids    map[string]struct{}
	writes int
}

type journalRecord struct {
	ID string `json:"id"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("ledger path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(filepath.Base(path)))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	snapPath := prefix + ".snapshot.json"
	journalPath := prefix + ".journal.jsonl"

	ids := map[string]struct{}{}
	if err := loadSnapshot(snapPath, ids); err != nil {
		log.Warn("ledger snapshot unreadable; relying on journal", logx.Err(err))
	}
	if err := replayJournal(journalPath, ids); err != nil {
		return nil, err
	}

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{
		log:          log,
		snapshotPath: snapPath,
		journalPath:  journalPath,
		journal:      jf,
		ids:          ids,
	}, nil
}

func loadSnapshot(path string, into map[string]struct{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	for _, id := range ids {
		into[id] = struct{}{}
	}
	return nil
}

func replayJournal(path string, into map[string]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec journalRecord
		// A torn trailing line (crash mid-write) is skipped, not fatal.
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		if rec.ID != "" {
			into[rec.ID] = struct{}{}
		}
	}
	return sc.Err()
}

func (s *fileStore) Load(ctx context.Context) (map[string]struct{}, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *fileStore) MarkDone(ctx context.Context, id string) error {
	_ = ctx
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return errors.New("ledger journal closed")
	}
	if _, ok := s.ids[id]; ok {
		return nil
	}

	b, err := json.Marshal(journalRecord{ID: id})
	if err != nil {
		return err
	}
	if _, err := s.journal.Write(append(b, '\n')); err != nil {
		return err
	}
	if err := s.journal.Sync(); err != nil {
		return err
	}
	s.ids[id] = struct{}{}

	s.writes++
	if s.writes%500 == 0 {
		if err := s.compactLocked(); err != nil {
			s.log.Warn("ledger compaction failed", logx.Err(err))
		}
	}
	return nil
}

// compactLocked rewrites the snapshot from memory and truncates the journal.
func (s *fileStore) compactLocked() error {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	tmp := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return err
	}

	if err := s.journal.Close(); err != nil {
		return err
	}
	jf, err := os.OpenFile(s.journalPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		s.journal = nil
		return err
	}
	s.journal = jf
	return nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return nil
	}
	err := s.journal.Close()
	s.journal = nil
	return err
}
