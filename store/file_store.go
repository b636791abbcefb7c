package store

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	raven "github.com/getsentry/raven-go"
)

// FileSystem implements a file system based store. Each key is kept as
// one file directly under the root directory, so keys should not
// contain a forward slash. If you want the bundle files to have a
// specific extension, add it to the key.
type FileSystem struct {
	root string
}

const (
	// the subdir files are kept in while they are being written to.
	scratchdir = "scratch"
)

var (
	// make sure it implements the Store interface
	_ Store = &FileSystem{}

	// ErrKeyContainsSlash means the key provided contains a forward slash '/'
	ErrKeyContainsSlash = errors.New("Key contains forward slash")

	// ErrKeyContainsNonUnicode means the key provided contains a non-unicode rune
	ErrKeyContainsNonUnicode = errors.New("Key contains Non-Unicode character")

	// ErrKeyContainsWhiteSpace means the key provided contains white space
	ErrKeyContainsWhiteSpace = errors.New("Key contains White Space")

	// ErrKeyContainsControlChar means the key provided contains control characters
	ErrKeyContainsControlChar = errors.New("Key contains Control Characters")
)

// NewFileSystem creates a new FileSystem store based at the given root path.
func NewFileSystem(root string) *FileSystem {
	return &FileSystem{root: root}
}

// List returns a channel listing all the keys in this store.
func (s *FileSystem) List() <-chan string {
	c := make(chan string)
	go func() {
		defer close(c)
		f, err := os.Open(s.root)
		if err != nil {
			log.Println(err)
			raven.CaptureError(err, nil)
			return
		}
		defer f.Close()
		for {
			entries, err := f.Readdir(1000)
			if err == io.EOF {
				return
			} else if err != nil {
				// we have no other way of passing this error back
				log.Println(err)
				raven.CaptureError(err, nil)
				return
			}
			for _, e := range entries {
				if e.IsDir() {
					// skips the scratch directory, among others
					continue
				}
				c <- e.Name()
			}
		}
	}()
	return c
}

// ListPrefix returns a list of all the keys beginning with the given prefix.
func (s *FileSystem) ListPrefix(prefix string) ([]string, error) {
	result, err := filepath.Glob(filepath.Join(s.root, prefix+"*"))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(result))
	for _, r := range result {
		fi, err := os.Stat(r)
		if err != nil || fi.IsDir() {
			continue
		}
		keys = append(keys, filepath.Base(r))
	}
	return keys, nil
}

// Open returns a reader for the given bundle along with its size.
func (s *FileSystem) Open(key string) (ReadAtCloser, int64, error) {
	if strings.Contains(key, "/") {
		return nil, 0, ErrKeyContainsSlash
	}
	f, err := os.Open(filepath.Join(s.root, key))
	if err != nil {
		if os.IsNotExist(err) {
			err = ErrNotFound
		}
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}

// Create creates a new entry with the given key, and returns a writer
// for saving data into it. The data is written into a scratch location
// and only moved into place when the writer is closed, so a crash
// partway through a write never leaves a truncated bundle under the key.
func (s *FileSystem) Create(key string) (io.WriteCloser, error) {
	if err := isKeyValid(key); err != nil {
		return nil, err
	}
	target := filepath.Join(s.root, key)
	_, err := os.Stat(target)
	if !os.IsNotExist(err) {
		return nil, ErrKeyExists
	}
	scratch := filepath.Join(s.root, scratchdir)
	if err := os.MkdirAll(scratch, 0775); err != nil {
		return nil, err
	}
	// pass the O_EXCL flag explicitly to prevent overwriting
	// a file already being written
	temp := filepath.Join(scratch, key)
	w, err := os.OpenFile(temp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return nil, err
	}
	return &moveCloser{WriteCloser: w, source: temp, target: target}, nil
}

// track the file so when it is closed, we can move it into the correct place
type moveCloser struct {
	io.WriteCloser
	source string
	target string
}

func (w *moveCloser) Close() error {
	err := w.WriteCloser.Close()
	if err != nil {
		return err
	}
	_, err = os.Stat(w.target)
	if !os.IsNotExist(err) {
		return ErrKeyExists
	}
	return os.Rename(w.source, w.target)
}

// Delete the given key from the store. It is not an error if the key
// doesn't exist.
func (s *FileSystem) Delete(key string) error {
	if strings.Contains(key, "/") {
		return ErrKeyContainsSlash
	}
	err := os.Remove(filepath.Join(s.root, key))
	// don't report a missing file as an error
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	return err
}

// Some simple key name validations.
func isKeyValid(key string) error {
	if !utf8.ValidString(key) {
		return ErrKeyContainsNonUnicode
	}
	if strings.Contains(key, "/") {
		return ErrKeyContainsSlash
	}
	for _, r := range key {
		if unicode.IsSpace(r) {
			return ErrKeyContainsWhiteSpace
		}
		if unicode.IsControl(r) {
			return ErrKeyContainsControlChar
		}
	}
	return nil
}
