package server

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/ndlib/bale/payload"
	"github.com/ndlib/bale/store"
)

// ListHandler handles GET requests to "/payloads". It returns a JSON
// array with the key of every bundle in the store.
func (s *RESTServer) ListHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	keys := []string{}
	for key := range s.Bundles.List() {
		keys = append(keys, key)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.Encode(keys) // ignore any error
}

// GetHandler handles GET and HEAD requests to "/payloads/:key". It
// streams the stored bundle back as a zip file.
func (s *RESTServer) GetHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	data, size, err := s.Bundles.Open(key)
	if err != nil {
		writeStoreError(w, key, err)
		return
	}
	defer data.Close()
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	if r.Method == "HEAD" {
		return
	}
	_, err = io.Copy(w, store.NewReader(data))
	if err != nil {
		// too late to change the status code
		log.Printf("GET /payloads/%s: %s", key, err)
	}
}

// ManifestHandler handles GET requests to "/payloads/:key/manifest".
// It extracts the manifest entry from the stored bundle and returns it.
func (s *RESTServer) ManifestHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	data, size, err := s.Bundles.Open(key)
	if err != nil {
		writeStoreError(w, key, err)
		return
	}
	defer data.Close()
	z, err := zip.NewReader(data, size)
	if err != nil {
		log.Printf("GET /payloads/%s/manifest: %s", key, err)
		w.WriteHeader(500)
		fmt.Fprintln(w, err)
		return
	}
	for _, f := range z.File {
		if f.Name != payload.ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			log.Printf("GET /payloads/%s/manifest: %s", key, err)
			w.WriteHeader(500)
			fmt.Fprintln(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.Copy(w, rc)
		rc.Close()
		return
	}
	w.WriteHeader(404)
	fmt.Fprintln(w, "bundle has no manifest")
}

// PutHandler handles PUT requests to "/payloads/:key". The request body
// is saved into the store under the key. An existing key is not
// overwritten; trying returns a 409.
func (s *RESTServer) PutHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	out, err := s.Bundles.Create(key)
	if err != nil {
		writeStoreError(w, key, err)
		return
	}
	_, err = io.Copy(out, r.Body)
	if err == nil {
		err = out.Close()
	} else {
		out.Close()
		s.Bundles.Delete(key)
	}
	if err != nil {
		log.Printf("PUT /payloads/%s: %s", key, err)
		w.WriteHeader(500)
		fmt.Fprintln(w, err)
		return
	}
	w.WriteHeader(201)
}

// DeleteHandler handles DELETE requests to "/payloads/:key".
func (s *RESTServer) DeleteHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	err := s.Bundles.Delete(key)
	if err != nil {
		log.Printf("DELETE /payloads/%s: %s", key, err)
		w.WriteHeader(500)
		fmt.Fprintln(w, err)
	}
}

// writeStoreError maps an error from the store to a response code.
func writeStoreError(w http.ResponseWriter, key string, err error) {
	switch err {
	case store.ErrNotFound:
		w.WriteHeader(404)
	case store.ErrKeyExists:
		w.WriteHeader(409)
	default:
		log.Printf("payload %s: %s", key, err)
		w.WriteHeader(500)
	}
	fmt.Fprintln(w, err)
}
