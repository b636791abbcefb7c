package payload

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	raven "github.com/getsentry/raven-go"
)

// WritePlain writes every file in the payload into the directory tree
// rooted at dir, creating parent directories as needed. A file which
// cannot be written is logged and skipped; the remaining files are
// still written. The first error encountered is returned after the
// walk finishes.
func (p *Payload) WritePlain(dir string) error {
	p.m.Lock()
	defer p.m.Unlock()

	var firsterr error
	for _, name := range p.orderedNames() {
		target := filepath.Join(dir, filepath.FromSlash(name))
		err := os.MkdirAll(filepath.Dir(target), 0755)
		if err == nil {
			err = ioutil.WriteFile(target, p.files[name].Bytes(), 0644)
		}
		if err != nil {
			log.Println("payload: writing", target, ":", err)
			raven.CaptureError(err, map[string]string{"File": target})
			if firsterr == nil {
				firsterr = err
			}
			continue
		}
	}
	return firsterr
}

// text dump section separator
const rule = "------------------------------------------\n"

// DumpText writes a human readable listing of the payload to w: first
// the sorted list of file names, then the content of each file in that
// order. A newline is added after any file which does not end in one,
// so the separators always start a line.
func (p *Payload) DumpText(w io.Writer) {
	p.m.Lock()
	defer p.m.Unlock()

	names := p.orderedNames()
	io.WriteString(w, rule)
	fmt.Fprintf(w, "Plaintext payload: %s\n", p.prefix)
	io.WriteString(w, rule)
	io.WriteString(w, "Manifest:\n")
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	io.WriteString(w, rule)
	for _, name := range names {
		fmt.Fprintf(w, "File: %s\n", name)
		b := p.files[name].Bytes()
		w.Write(b)
		if len(b) == 0 || b[len(b)-1] != '\n' {
			io.WriteString(w, "\n")
		}
		io.WriteString(w, rule)
	}
}
