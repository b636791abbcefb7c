package payload

import (
	"archive/zip"
	"bytes"
	"io"
	"log"
	"path"

	raven "github.com/getsentry/raven-go"
	"github.com/pkg/errors"
)

// Unix permission bits as stored in the high 16 bits of a zip entry's
// external attributes.
const (
	s_IXUSR = 0100 // execute by owner
	s_IWGRP = 0020 // write by group
	s_IWOTH = 0002 // write by others
)

// the "version made by" field marks which OS the external attributes
// belong to. only unix attributes are touched by us.
const creatorUnix = 3

// WriteZip encodes the payload as a zip archive and writes it to w.
// The archive contains every file in the payload plus a manifest entry
// (see ManifestName). Entries appear in sorted name order and are
// stored without compression, so the same payload always produces the
// same bytes.
//
// The archive is assembled in memory first. If the archive cannot be
// finalized nothing at all is written to w. A single file which cannot
// be added is logged and skipped, and the rest of the archive is still
// produced.
func (p *Payload) WriteZip(w io.Writer) error {
	p.m.Lock()
	defer p.m.Unlock()

	// the manifest is a regular entry; add it before taking the
	// ordered listing so it is included in the walk below
	p.addManifest()

	var buf bytes.Buffer
	z := zip.NewWriter(&buf)

	for _, name := range p.orderedNames() {
		header := &zip.FileHeader{
			Name:   name,
			Method: zip.Store,
		}
		header.SetMode(0644)
		setFilePermissions(header)

		out, err := z.CreateHeader(header)
		if err == nil {
			_, err = out.Write(p.files[name].Bytes())
		}
		if err != nil {
			log.Println("payload: adding", name, "to archive:", err)
			raven.CaptureError(err, map[string]string{"File": name})
			continue
		}
	}

	// flushes the central directory into buf
	if err := z.Close(); err != nil {
		return errors.Wrap(err, "closing zip archive")
	}

	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "writing zip archive")
}

// setFilePermissions normalizes the unix permission bits recorded for
// one archive entry: group and other write are always cleared, and
// owner execute is turned on for shell scripts so they can be run
// directly after unpacking. Entries whose attributes are not
// unix-style are left alone.
func setFilePermissions(header *zip.FileHeader) {
	if header.CreatorVersion>>8 != creatorUnix {
		return
	}
	header.ExternalAttrs &^= s_IWGRP << 16
	header.ExternalAttrs &^= s_IWOTH << 16
	if path.Ext(header.Name) == ".sh" {
		header.ExternalAttrs |= s_IXUSR << 16
	}
}
