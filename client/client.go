// Package client talks to a bale server. It is the programmatic side
// of the REST API in the server package, and is what the bale command
// uses for its remote operations.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/antonholmquist/jason"
)

// Exported errors
var (
	ErrNotFound       = errors.New("Bundle Not Found on Server")
	ErrKeyExists      = errors.New("Bundle Already Exists on Server")
	ErrUnexpectedResp = errors.New("Unexpected Response Code")
)

// A Connection holds the information needed to talk to a bale server.
// Connections are safe to use from multiple goroutines.
type Connection struct {
	// HostURL is the base URL of the server, e.g. "http://localhost:14000".
	HostURL string
}

// New returns a Connection for the bale server at the given base URL.
func New(hosturl string) *Connection {
	return &Connection{HostURL: hosturl}
}

// List returns the keys of every bundle kept on the server.
func (c *Connection) List() ([]string, error) {
	resp, err := http.Get(c.HostURL + "/payloads")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, statuserr(resp.StatusCode)
	}
	var keys []string
	err = json.NewDecoder(resp.Body).Decode(&keys)
	return keys, err
}

// Manifest returns the manifest record of the given bundle. Useful
// fields are "version" and "contents_path".
func (c *Connection) Manifest(key string) (*jason.Object, error) {
	resp, err := http.Get(c.HostURL + "/payloads/" + key + "/manifest")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, statuserr(resp.StatusCode)
	}
	return jason.NewObjectFromReader(resp.Body)
}

// Fetch copies the given bundle from the server to w.
func (c *Connection) Fetch(key string, w io.Writer) error {
	resp, err := http.Get(c.HostURL + "/payloads/" + key)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return statuserr(resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// Upload saves the bundle read from r onto the server under the given
// key. The server will not overwrite an existing bundle; in that case
// ErrKeyExists is returned.
func (c *Connection) Upload(key string, r io.Reader) error {
	req, err := http.NewRequest("PUT", c.HostURL+"/payloads/"+key, r)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case 200, 201:
		return nil
	default:
		return statuserr(resp.StatusCode)
	}
}

func statuserr(code int) error {
	switch code {
	case 404:
		return ErrNotFound
	case 409:
		return ErrKeyExists
	default:
		return fmt.Errorf("Received status %d from bale server", code)
	}
}
