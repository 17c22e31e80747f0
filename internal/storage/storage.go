package storage

import (
	"errors"
	"io"
)

// ErrDocumentMissing means the named document is not in the store. With the
// temp-dir implementation this happens after a process restart, so callers
// surface it as a distinct user-facing condition rather than a generic 500.
var ErrDocumentMissing = errors.New("document missing from store")

// DocumentStore persists uploaded documents under caller-generated names.
type DocumentStore interface {
	Save(name string, r io.Reader) error
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}
