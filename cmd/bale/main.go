// bale is a command line tool for building and moving payload bundles.
//
// A bundle is built from files on disk with "pack", which can emit it
// as a zip file, a plaintext dump, a directory tree, or save it into
// the configured bundle store. The other commands work with bundles
// already in a store, either directly or through a bale server.
package main

import (
	"archive/zip"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/antonholmquist/jason"

	"github.com/ndlib/bale/client"
	"github.com/ndlib/bale/payload"
	"github.com/ndlib/bale/server"
	"github.com/ndlib/bale/store"
	"github.com/ndlib/bale/util"
)

var (
	configFile = flag.String("config", "", "path to configuration file")
	storeDir   = flag.String("s", "", "location of the bundle storage directory")
	remote     = flag.String("server", "", "base URL of a bale server to talk to instead of a local store")

	zipFile  = flag.String("o", "", "pack: write the bundle as a zip archive to this file")
	plainDir = flag.String("plain", "", "pack: write the bundle as a directory tree rooted here")
	textDump = flag.Bool("text", false, "pack: write a plaintext dump of the bundle to stdout")
	saveKey  = flag.String("key", "", "pack: save the bundle into the store under this key")
	prefix   = flag.String("prefix", "", "pack: logical path prefix for every file in the bundle")

	md5Sum    = flag.String("md5", "", "fetch: verify the fetched bundle against this MD5 checksum (hex)")
	sha256Sum = flag.String("sha256", "", "fetch: verify the fetched bundle against this SHA256 checksum (hex)")

	usage = `
bale <command> <command arguments>

Possible commands:
    pack <file/directory list>

    list

    manifest <key>

    dump <key>

    fetch <key> <target file>

    serve
`
)

func main() {
	flag.Parse()

	config, err := loadConfig(*configFile)
	if err != nil {
		log.Println("Error reading configuration:", err)
		os.Exit(1)
	}
	// command line trumps the config file
	if *storeDir != "" {
		config.StoreDir = *storeDir
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println(usage)
		return
	}

	switch args[0] {
	case "pack":
		err = dopack(config, args[1:])
	case "list":
		err = dolist(config)
	case "manifest":
		err = domanifest(config, args[1:])
	case "dump":
		err = dodump(config, args[1:])
	case "fetch":
		err = dofetch(config, args[1:])
	case "serve":
		err = doserve(config)
	default:
		fmt.Println(usage)
	}
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// dopack builds a payload from the files named on the command line and
// emits it in each of the requested forms. Directories are added
// recursively; the logical name of each file is its path relative to
// the command line argument it came from.
func dopack(config Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("pack: no input files given")
	}
	p := payload.New(*prefix, server.Version)
	for _, root := range args {
		err := addTree(p, root)
		if err != nil {
			return err
		}
	}

	if *zipFile != "" {
		err := packZip(p, *zipFile)
		if err != nil {
			return err
		}
	}
	if *plainDir != "" {
		err := p.WritePlain(*plainDir)
		if err != nil {
			return err
		}
	}
	if *saveKey != "" {
		err := p.WriteToStore(openStore(config), *saveKey)
		if err != nil {
			return err
		}
	}
	// with no other destination given, default to the text dump
	if *textDump || (*zipFile == "" && *plainDir == "" && *saveKey == "") {
		p.DumpText(os.Stdout)
	}
	return nil
}

// addTree copies the file or directory tree at root into the payload.
func addTree(p *payload.Payload, root string) error {
	root = filepath.Clean(root)
	return filepath.Walk(root, func(fname string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		name, err := filepath.Rel(filepath.Dir(root), fname)
		if err != nil {
			return err
		}
		data, err := ioutil.ReadFile(fname)
		if err != nil {
			return err
		}
		_, err = p.GetFile(filepath.ToSlash(name)).Write(data)
		return err
	})
}

// packZip writes the payload as a zip archive into the named file and
// prints the archive's checksums.
func packZip(p *payload.Payload, fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	hw := util.NewHashWriter(f)
	err = p.WriteZip(hw)
	if err != nil {
		f.Close()
		return err
	}
	err = f.Close()
	if err != nil {
		return err
	}
	md5sum, _ := hw.CheckMD5(nil)
	sha256sum, _ := hw.CheckSHA256(nil)
	fmt.Printf("%s\n  MD5:    %s\n  SHA256: %s\n",
		fname,
		hex.EncodeToString(md5sum),
		hex.EncodeToString(sha256sum))
	return nil
}

func dolist(config Config) error {
	if *remote != "" {
		keys, err := client.New(*remote).List()
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	}
	for key := range openStore(config).List() {
		fmt.Println(key)
	}
	return nil
}

func domanifest(config Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("manifest: expected exactly one bundle key")
	}
	var v *jason.Object
	var err error
	if *remote != "" {
		v, err = client.New(*remote).Manifest(args[0])
	} else {
		v, err = readManifest(openStore(config), args[0])
	}
	if err != nil {
		return err
	}
	version, _ := v.GetString("version")
	contents, _ := v.GetString("contents_path")
	fmt.Printf("version: %s\ncontents_path: %s\n", version, contents)
	return nil
}

// readManifest extracts the manifest record from a bundle in the store.
func readManifest(s store.Store, key string) (*jason.Object, error) {
	data, size, err := s.Open(key)
	if err != nil {
		return nil, err
	}
	defer data.Close()
	z, err := zip.NewReader(data, size)
	if err != nil {
		return nil, err
	}
	for _, f := range z.File {
		if f.Name != payload.ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return jason.NewObjectFromReader(rc)
	}
	return nil, fmt.Errorf("bundle %s has no manifest", key)
}

func dodump(config Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("dump: expected exactly one bundle key")
	}
	if *remote != "" {
		return client.New(*remote).Fetch(args[0], os.Stdout)
	}
	return dumpBundle(os.Stdout, openStore(config), args[0])
}

// dumpBundle copies the stored bundle to w.
func dumpBundle(w io.Writer, s store.Store, key string) error {
	data, _, err := s.Open(key)
	if err != nil {
		return err
	}
	defer data.Close()
	_, err = io.Copy(w, store.NewReader(data))
	return err
}

func dofetch(config Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("fetch: expected a bundle key and a target file")
	}
	key, target := args[0], args[1]
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if *remote != "" {
		err = client.New(*remote).Fetch(key, f)
	} else {
		err = dumpBundle(f, openStore(config), key)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return verifyFile(target, *md5Sum, *sha256Sum)
}

// verifyFile checks a file against the given hex checksums. Empty
// checksum strings are skipped.
func verifyFile(fname, md5hex, sha256hex string) error {
	if md5hex == "" && sha256hex == "" {
		return nil
	}
	md5goal, err := hex.DecodeString(md5hex)
	if err != nil {
		return fmt.Errorf("bad md5 checksum %q: %s", md5hex, err)
	}
	sha256goal, err := hex.DecodeString(sha256hex)
	if err != nil {
		return fmt.Errorf("bad sha256 checksum %q: %s", sha256hex, err)
	}
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	ok, err := util.VerifyStreamHash(f, md5goal, sha256goal)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s does not match the expected checksums", fname)
	}
	return nil
}

func doserve(config Config) error {
	s := &server.RESTServer{
		PortNumber: config.PortNumber,
		Bundles:    openStore(config),
	}
	return s.Run()
}
