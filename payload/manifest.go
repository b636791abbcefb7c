package payload

import (
	"encoding/json"
)

// ManifestName is the full path of the manifest entry inside a
// serialized bundle. It lives outside the payload's prefix so
// consumers can find it without knowing how the bundle was built.
const ManifestName = "manifest/manifest.json"

// manifest is the record stored at ManifestName. It tells a consumer
// which producer built the bundle and under which path the bundle's
// content lives.
type manifest struct {
	Version      string `json:"version"`
	ContentsPath string `json:"contents_path"`
}

// addManifest inserts the manifest entry into the file map, replacing
// any previous manifest. Calling it more than once is fine; the last
// write wins. Callers must hold p.m.
func (p *Payload) addManifest() {
	data, err := json.Marshal(manifest{
		Version:      p.version,
		ContentsPath: p.prefix,
	})
	if err != nil {
		// a struct of two strings cannot fail to marshal
		panic(err)
	}
	f := &File{}
	f.b = append(data, '\n')
	p.files[ManifestName] = f
}
