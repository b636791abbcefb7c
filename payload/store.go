package payload

import (
	"github.com/pkg/errors"

	"github.com/ndlib/bale/store"
)

// WriteToStore serializes the payload as a zip archive and saves it
// under the given key in s. If the serialization fails, the key is
// deleted again so a broken bundle is never left in the store.
func (p *Payload) WriteToStore(s store.Store, key string) error {
	w, err := s.Create(key)
	if err != nil {
		return errors.Wrapf(err, "creating bundle %s", key)
	}
	err = p.WriteZip(w)
	if err != nil {
		w.Close()
		s.Delete(key)
		return err
	}
	return errors.Wrapf(w.Close(), "saving bundle %s", key)
}
