// Package store persists the site's singleton JSON documents (users, runs,
// photos) as indented flat files under a data directory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store reads and writes named JSON documents. A missing or unparseable file
// is not an error: Read leaves the caller's default value in place and logs
// the problem. Write replaces the whole file atomically (temp file + rename).
type Store struct {
	dir string
	log *zap.SugaredLogger
}

func New(dir string, log *zap.SugaredLogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Read unmarshals the named document into v. v should arrive pre-filled with
// the document's defaults; it is left untouched when the file is absent or
// does not parse.
func (s *Store) Read(name string, v any) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Errorw("read document", "name", name, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Errorw("parse document", "name", name, "error", err)
	}
}

// Write serializes v and replaces the named document. It reports failure via
// the return value only; callers answer the triggering request with a server
// error instead of losing the update silently.
func (s *Store) Write(name string, v any) bool {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Errorw("marshal document", "name", name, "error", err)
		return false
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Errorw("write document", "name", name, "error", err)
		return false
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		s.log.Errorw("replace document", "name", name, "error", err)
		return false
	}
	return true
}

// Init writes the document's defaults to disk if the file does not exist yet.
func (s *Store) Init(name string, defaults any) error {
	if _, err := os.Stat(s.path(name)); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if !s.Write(name, defaults) {
		return fmt.Errorf("initialize document %s", name)
	}
	return nil
}
