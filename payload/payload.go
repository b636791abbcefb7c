// Package payload implements an in-memory virtual output bundle: a
// goroutine safe collection of named byte buffers which can be
// serialized as a directory tree, as a plaintext dump, or as a single
// zip archive carrying a manifest describing the bundle.
//
// Producers call GetFile to receive a buffer to fill in. At the end,
// the whole bundle is written out in one shot; there is no support for
// streaming entries out incrementally, nor for removing or renaming an
// entry once it exists. Reading archives back is handled by consumers
// (see the server and client packages), not here.
package payload

import (
	"sort"
	"sync"
)

// Payload is a collection of named byte buffers waiting to be packaged.
// It is safe to use from multiple goroutines. The zero value is not
// usable; create one with New.
type Payload struct {
	m sync.Mutex

	// prefix is prepended to the name of every file added through
	// GetFile. It is fixed at creation.
	prefix string

	// version is recorded in the bundle manifest. It identifies the
	// producer that built this payload, not the payload format.
	version string

	// every buffer in the bundle, keyed by its full logical path
	files map[string]*File
}

// New returns an empty payload. Every file added through GetFile has
// its name prefixed with prefix, and version is recorded in the
// manifest entry when the payload is serialized as a zip.
func New(prefix, version string) *Payload {
	return &Payload{
		prefix:  prefix,
		version: version,
		files:   make(map[string]*File),
	}
}

// Prefix returns the logical root namespace given to New.
func (p *Payload) Prefix() string {
	return p.prefix
}

// GetFile returns the buffer for the file prefix+name, creating an
// empty one if it doesn't exist yet. The same name always returns the
// same buffer.
//
// The returned handle is live: the caller may keep writing to it after
// this call returns. Only the map insert is guarded by the payload's
// lock, so writers to different files never contend. Two producers
// writing to the same file must coordinate between themselves; the
// payload does not provide a per-file lock.
func (p *Payload) GetFile(name string) *File {
	p.m.Lock()
	defer p.m.Unlock()
	return p.getfile(name)
}

// getfile is GetFile without the locking. Callers must hold p.m.
func (p *Payload) getfile(name string) *File {
	key := p.prefix + name
	f := p.files[key]
	if f == nil {
		f = &File{}
		p.files[key] = f
	}
	return f
}

// OrderedNames returns the full logical path of every file currently
// in the payload, sorted. The order depends only on the set of names,
// never on the order files were added, so repeated serializations of
// an unchanged payload are byte identical.
func (p *Payload) OrderedNames() []string {
	p.m.Lock()
	defer p.m.Unlock()
	return p.orderedNames()
}

// orderedNames is OrderedNames without the locking. Callers must
// hold p.m.
func (p *Payload) orderedNames() []string {
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// A File is one entry in a payload. It is an append-only byte buffer.
// A File is not safe for concurrent writers; each file is expected to
// have a single producer.
type File struct {
	b []byte
}

// Write appends b to the file. It never fails.
func (f *File) Write(b []byte) (int, error) {
	f.b = append(f.b, b...)
	return len(b), nil
}

// WriteString appends s to the file.
func (f *File) WriteString(s string) (int, error) {
	f.b = append(f.b, s...)
	return len(s), nil
}

// Bytes returns the current content. The slice aliases the file's
// internal buffer; do not modify it.
func (f *File) Bytes() []byte {
	return f.b
}

// String returns the current content as a string.
func (f *File) String() string {
	return string(f.b)
}

// Len returns the number of bytes in the file.
func (f *File) Len() int {
	return len(f.b)
}
