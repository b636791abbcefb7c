package store

import (
	"io"
	"strings"
)

// NewWithPrefix returns a view of s in which every key is kept under
// the given prefix. The bale tools use it to namespace their bundles
// inside a shared store: callers keep using short keys, while the base
// store holds them as prefix+key. Keys in the base store which do not
// start with the prefix are invisible through the view.
func NewWithPrefix(s Store, prefix string) Store {
	return &prefixStore{base: s, prefix: prefix}
}

type prefixStore struct {
	base   Store
	prefix string
}

func (ps *prefixStore) List() <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for key := range ps.base.List() {
			if strings.HasPrefix(key, ps.prefix) {
				out <- strings.TrimPrefix(key, ps.prefix)
			}
		}
	}()
	return out
}

func (ps *prefixStore) ListPrefix(prefix string) ([]string, error) {
	keys, err := ps.base.ListPrefix(ps.prefix + prefix)
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, ps.prefix) {
			result = append(result, strings.TrimPrefix(key, ps.prefix))
		}
	}
	return result, err
}

func (ps *prefixStore) Open(key string) (ReadAtCloser, int64, error) {
	return ps.base.Open(ps.prefix + key)
}

func (ps *prefixStore) Create(key string) (io.WriteCloser, error) {
	return ps.base.Create(ps.prefix + key)
}

func (ps *prefixStore) Delete(key string) error {
	return ps.base.Delete(ps.prefix + key)
}
