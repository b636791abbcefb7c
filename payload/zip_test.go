package payload

import (
	"archive/zip"
	"bytes"
	"io/ioutil"
	"testing"

	"github.com/antonholmquist/jason"

	"github.com/ndlib/bale/store"
)

func TestWriteZipRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	err := testPayload().WriteZip(&buf)
	if err != nil {
		t.Fatal(err)
	}

	z, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	var expected = map[string]string{
		"out/a.txt":  "hello",
		"out/run.sh": "#!/bin/sh\necho hi\n",
	}
	var seenManifest bool
	for _, f := range z.File {
		if f.Name == ManifestName {
			seenManifest = true
			continue
		}
		want, ok := expected[f.Name]
		if !ok {
			t.Errorf("Unexpected archive entry %s", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := ioutil.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("Entry %s has %q, expected %q", f.Name, data, want)
		}
		delete(expected, f.Name)
	}
	if !seenManifest {
		t.Errorf("Archive has no manifest entry")
	}
	for name := range expected {
		t.Errorf("Archive is missing entry %s", name)
	}
}

func TestWriteZipManifest(t *testing.T) {
	var buf bytes.Buffer
	p := testPayload()
	// serializing twice should still give exactly one manifest
	err := p.WriteZip(ioutil.Discard)
	if err != nil {
		t.Fatal(err)
	}
	err = p.WriteZip(&buf)
	if err != nil {
		t.Fatal(err)
	}

	z, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var count int
	for _, f := range z.File {
		if f.Name != ManifestName {
			continue
		}
		count++
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		v, err := jason.NewObjectFromReader(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		version, _ := v.GetString("version")
		if version != "1.0" {
			t.Errorf("Manifest version is %q, expected %q", version, "1.0")
		}
		contents, _ := v.GetString("contents_path")
		if contents != "out/" {
			t.Errorf("Manifest contents_path is %q, expected %q", contents, "out/")
		}
	}
	if count != 1 {
		t.Errorf("Got %d manifest entries, expected 1", count)
	}
}

func TestWriteZipPermissions(t *testing.T) {
	var buf bytes.Buffer
	err := testPayload().WriteZip(&buf)
	if err != nil {
		t.Fatal(err)
	}
	z, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range z.File {
		mode := f.Mode()
		if mode&(s_IWGRP|s_IWOTH) != 0 {
			t.Errorf("Entry %s is group or other writable: %v", f.Name, mode)
		}
		executable := mode&s_IXUSR != 0
		isScript := f.Name == "out/run.sh"
		if executable != isScript {
			t.Errorf("Entry %s has execute bit %v", f.Name, executable)
		}
	}
}

func TestWriteZipDeterministic(t *testing.T) {
	// same content, different insertion order
	p1 := New("out/", "1.0")
	p1.GetFile("a.txt").WriteString("hello")
	p1.GetFile("run.sh").WriteString("#!/bin/sh\necho hi\n")
	p2 := New("out/", "1.0")
	p2.GetFile("run.sh").WriteString("#!/bin/sh\necho hi\n")
	p2.GetFile("a.txt").WriteString("hello")

	var b1, b2 bytes.Buffer
	if err := p1.WriteZip(&b1); err != nil {
		t.Fatal(err)
	}
	if err := p2.WriteZip(&b2); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1.Bytes(), b2.Bytes()) {
		t.Errorf("Archives differ for identical payloads")
	}

	// repeated serialization of an unchanged payload
	var b3 bytes.Buffer
	if err := p1.WriteZip(&b3); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1.Bytes(), b3.Bytes()) {
		t.Errorf("Repeated serialization gave different bytes")
	}
}

func TestWriteToStore(t *testing.T) {
	ms := store.NewMemory()
	err := testPayload().WriteToStore(ms, "bundle-0001.zip")
	if err != nil {
		t.Fatal(err)
	}
	data, size, err := ms.Open("bundle-0001.zip")
	if err != nil {
		t.Fatal(err)
	}
	defer data.Close()
	z, err := zip.NewReader(data, size)
	if err != nil {
		t.Fatal(err)
	}
	if len(z.File) != 3 {
		t.Errorf("Got %d entries, expected 3", len(z.File))
	}

	// a second write to the same key must fail and not corrupt the store
	err = testPayload().WriteToStore(ms, "bundle-0001.zip")
	if err == nil {
		t.Errorf("Got no error writing to an existing key")
	}
}
