// Package store provides a goroutine safe key-value interface for
// keeping finished payload bundles. Values are streams rather than
// opaque byte slices, so a bundle can be read back without loading it
// into memory all at once.
//
// The FileSystem store is the usual choice for a single machine; the
// S3 store keeps bundles in a bucket; the Memory store is for testing
// and in-process use.
package store

import (
	"errors"
	"io"
)

// ReadAtCloser combines the io.ReaderAt and io.Closer interfaces.
type ReadAtCloser interface {
	io.ReaderAt
	io.Closer
}

// Store is a stream based key-value store. Values are immutable once
// stored; to replace one, delete the key and create it again.
//
// Since the FileSystem store uses keys as file names, keys should not
// contain forbidden filesystem characters, such as '/'.
//
// Open returns a ReadAtCloser rather than an io.ReadCloser so that a
// stored bundle can be handed directly to zip.NewReader.
type Store interface {
	ROStore
	Create(key string) (io.WriteCloser, error)
	Delete(key string) error
}

// ROStore is the read-only half of a Store. It allows one to list
// contents and to retrieve data.
type ROStore interface {
	List() <-chan string
	ListPrefix(prefix string) ([]string, error)
	Open(key string) (ReadAtCloser, int64, error)
}

var (
	// ErrKeyExists indicates an attempt to create a key which already exists.
	ErrKeyExists = errors.New("Key already exists")

	// ErrNotFound indicates the key is not in the store.
	ErrNotFound = errors.New("Key not found")
)

// NewReader converts an io.ReaderAt into an io.Reader starting at
// offset 0. It is a utility to help work with the ReadAtCloser
// returned by Open.
func NewReader(r io.ReaderAt) io.Reader {
	return &reader{r: r}
}

type reader struct {
	r   io.ReaderAt
	off int64
}

func (r *reader) Read(p []byte) (n int, err error) {
	n, err = r.r.ReadAt(p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		// a partial read is not an error for an io.Reader
		err = nil
	}
	return
}
