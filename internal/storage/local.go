package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes documents to a directory on local disk. When rooted in
// the OS temp directory the contents do not survive restarts; that contract
// is accepted by the invoice and evidence workflows.
type LocalStore struct {
	dir    string
	logger *slog.Logger
}

func NewLocalStore(dir string, logger *slog.Logger) (*LocalStore, error) {
	if dir == "" {
		d, err := os.MkdirTemp("", "timesheet-docs-")
		if err != nil {
			return nil, err
		}
		dir = d
		logger.Warn("document store rooted in temp directory, uploads will not survive restarts", "dir", dir)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &LocalStore{dir: dir, logger: logger}, nil
}

func (s *LocalStore) path(name string) string {
	// uploads never pick their own names, but keep traversal out anyway
	return filepath.Join(s.dir, filepath.Base(strings.TrimSpace(name)))
}

func (s *LocalStore) Save(name string, r io.Reader) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return err
	}

	s.logger.Debug("document stored", "name", name)
	return nil
}

func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDocumentMissing
		}
		return nil, err
	}
	return f, nil
}

func (s *LocalStore) Remove(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && os.IsNotExist(err) {
		return ErrDocumentMissing
	}
	return err
}
