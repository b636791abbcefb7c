package server

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndlib/bale/client"
	"github.com/ndlib/bale/payload"
	"github.com/ndlib/bale/store"
)

// spins up a test server over a memory store preloaded with one bundle.
func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	ms := store.NewMemory()
	p := payload.New("out/", "1.0-test")
	p.GetFile("a.txt").WriteString("hello")
	p.GetFile("run.sh").WriteString("#!/bin/sh\necho hi\n")
	err := p.WriteToStore(ms, "bundle-0001.zip")
	if err != nil {
		t.Fatal(err)
	}
	s := &RESTServer{Bundles: ms}
	return httptest.NewServer(s.addRoutes()), ms
}

func TestListHandler(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	keys, err := client.New(ts.URL).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "bundle-0001.zip" {
		t.Errorf("Got keys %v", keys)
	}
}

func TestGetHandler(t *testing.T) {
	ts, ms := newTestServer(t)
	defer ts.Close()

	var buf bytes.Buffer
	err := client.New(ts.URL).Fetch("bundle-0001.zip", &buf)
	if err != nil {
		t.Fatal(err)
	}
	// the download must be byte identical to what is in the store
	data, size, err := ms.Open("bundle-0001.zip")
	if err != nil {
		t.Fatal(err)
	}
	stored, err := ioutil.ReadAll(store.NewReader(data))
	data.Close()
	if err != nil {
		t.Fatal(err)
	}
	if int64(buf.Len()) != size || !bytes.Equal(buf.Bytes(), stored) {
		t.Errorf("Download differs from stored bundle")
	}

	err = client.New(ts.URL).Fetch("no-such-bundle", ioutil.Discard)
	if err != client.ErrNotFound {
		t.Errorf("Got %v, expected ErrNotFound", err)
	}
}

func TestManifestHandler(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	v, err := client.New(ts.URL).Manifest("bundle-0001.zip")
	if err != nil {
		t.Fatal(err)
	}
	version, _ := v.GetString("version")
	if version != "1.0-test" {
		t.Errorf("Got version %q, expected %q", version, "1.0-test")
	}
	contents, _ := v.GetString("contents_path")
	if contents != "out/" {
		t.Errorf("Got contents_path %q, expected %q", contents, "out/")
	}
}

func TestPutHandler(t *testing.T) {
	ts, ms := newTestServer(t)
	defer ts.Close()

	var buf bytes.Buffer
	p := payload.New("up/", "1.0-test")
	p.GetFile("b.txt").WriteString("uploaded")
	err := p.WriteZip(&buf)
	if err != nil {
		t.Fatal(err)
	}
	c := client.New(ts.URL)
	err = c.Upload("bundle-0002.zip", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ms.Open("bundle-0002.zip"); err != nil {
		t.Errorf("Uploaded bundle missing from store: %v", err)
	}

	// uploading to an existing key is refused
	err = c.Upload("bundle-0002.zip", bytes.NewReader(buf.Bytes()))
	if err != client.ErrKeyExists {
		t.Errorf("Got %v, expected ErrKeyExists", err)
	}
}

func TestDeleteHandler(t *testing.T) {
	ts, ms := newTestServer(t)
	defer ts.Close()

	req, err := http.NewRequest("DELETE", ts.URL+"/payloads/bundle-0001.zip", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("Got status %d", resp.StatusCode)
	}
	if _, _, err := ms.Open("bundle-0001.zip"); err != store.ErrNotFound {
		t.Errorf("Got %v, expected ErrNotFound", err)
	}
}
