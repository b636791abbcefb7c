package main

import (
	"github.com/BurntSushi/toml"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/ndlib/bale/store"
)

// Config is what can be set in the TOML configuration file given with
// -config. Everything is optional; command line flags override it.
type Config struct {
	// StoreDir is the directory bundles are stored in. Used when no
	// S3 bucket is configured.
	StoreDir string

	// PortNumber is the port the serve command listens on.
	PortNumber string

	// Prefix namespaces every bundle key kept in the store, whichever
	// backend is in use. It lets one directory or bucket be shared
	// between, say, production and test bundles.
	Prefix string

	// S3, if Bucket is set, makes all store operations use AWS S3
	// instead of the local filesystem.
	S3 S3Config
}

// S3Config configures the S3 bundle store.
type S3Config struct {
	Bucket string
	Region string
}

func loadConfig(fname string) (Config, error) {
	// defaults
	config := Config{
		StoreDir:   ".",
		PortNumber: "14000",
	}
	if fname == "" {
		return config, nil
	}
	_, err := toml.DecodeFile(fname, &config)
	return config, err
}

// openStore returns the bundle store the configuration points at. A
// configured Prefix is applied over either backend, so prefix handling
// lives in one place.
func openStore(config Config) store.Store {
	var s store.Store
	if config.S3.Bucket != "" {
		awsSession := session.Must(session.NewSession(
			aws.NewConfig().WithRegion(config.S3.Region)))
		s = store.NewS3(config.S3.Bucket, awsSession)
	} else {
		s = store.NewFileSystem(config.StoreDir)
	}
	if config.Prefix != "" {
		s = store.NewWithPrefix(s, config.Prefix)
	}
	return s
}
