package server

// Version is the version string reported by the server and stamped
// into the manifest of bundles built by the bale tool. It is set at
// build time via the linker, e.g.
//
//	go build -ldflags "-X github.com/ndlib/bale/server.Version=1.2.3"
var Version = "development"
