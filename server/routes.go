// Package server provides a small REST API for a bundle store. It
// serves finished payload bundles: listing them, downloading them, and
// accepting uploads. It does not build bundles; that is the payload
// package's job.
package server

import (
	"log"
	"net/http"

	"github.com/facebookgo/httpdown"
	"github.com/julienschmidt/httprouter"

	"github.com/ndlib/bale/store"
)

// RESTServer holds the configuration for a bale REST API server.
//
// Set the public fields and then call Run. Run will listen on the
// given port and handle requests until Stop is called. Do not change
// any fields after calling Run.
type RESTServer struct {
	// Port number to listen on. Defaults to 14000.
	PortNumber string

	// Bundles is the store the served bundles are kept in. Run will
	// panic if Bundles is nil.
	Bundles store.Store

	server httpdown.Server // used to close our listening socket
}

// Run starts the server. It blocks listening for and handling http
// requests until Stop is called from another goroutine.
func (s *RESTServer) Run() error {
	log.Println("==========")
	log.Printf("Starting Bale Server version %s", Version)

	if s.Bundles == nil {
		panic("No bundle storage given. Bundles is nil.")
	}
	if s.PortNumber == "" {
		s.PortNumber = "14000"
	}
	log.Println("Listening on", s.PortNumber)

	h := httpdown.HTTP{}
	var err error
	s.server, err = h.ListenAndServe(&http.Server{
		Addr:    ":" + s.PortNumber,
		Handler: s.addRoutes(),
	})
	if err != nil {
		log.Println(err)
		return err
	}
	return s.server.Wait()
}

// Stop will stop the server and return when all the server goroutines
// have exited and the socket closed.
func (s *RESTServer) Stop() error {
	return s.server.Stop()
}

func (s *RESTServer) addRoutes() http.Handler {
	var routes = []struct {
		method  string
		route   string
		handler httprouter.Handle
	}{
		{"GET", "/payloads", s.ListHandler},
		{"GET", "/payloads/:key", s.GetHandler},
		{"HEAD", "/payloads/:key", s.GetHandler},
		{"GET", "/payloads/:key/manifest", s.ManifestHandler},
		{"PUT", "/payloads/:key", s.PutHandler},
		{"DELETE", "/payloads/:key", s.DeleteHandler},
	}

	r := httprouter.New()
	for _, route := range routes {
		r.Handle(route.method, route.route, route.handler)
	}
	return r
}
