// Package util has small helpers shared by the bale tools.
package util

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"hash"
	"io"
)

// A HashWriter wraps an io.Writer and also computes the MD5 and SHA256
// hashes of the bytes written. It is used to fingerprint a bundle while
// it is being written out.
type HashWriter struct {
	io.Writer // our io.MultiWriter
	md5       hash.Hash
	sha256    hash.Hash
}

// NewHashWriter returns a HashWriter wrapping w.
func NewHashWriter(w io.Writer) *HashWriter {
	hw := &HashWriter{
		md5:    md5.New(),
		sha256: sha256.New(),
	}
	hw.Writer = io.MultiWriter(w, hw.md5, hw.sha256)
	return hw
}

// NewHashWriterPlain returns a HashWriter that does not wrap an output
// stream. It just computes the checksums of the data written to it.
func NewHashWriterPlain() *HashWriter {
	hw := &HashWriter{
		md5:    md5.New(),
		sha256: sha256.New(),
	}
	hw.Writer = io.MultiWriter(hw.md5, hw.sha256)
	return hw
}

// CheckMD5 returns the MD5 hash for this writer, and compares it for
// equality with the goal hash passed in. An empty goal is treated as
// matching.
func (hw *HashWriter) CheckMD5(goal []byte) ([]byte, bool) {
	computed := hw.md5.Sum(nil)
	ok := len(goal) == 0 || bytes.Equal(goal, computed)
	return computed, ok
}

// CheckSHA256 returns the SHA256 hash for this writer, and compares it
// for equality with the goal hash passed in. An empty goal is treated
// as matching.
func (hw *HashWriter) CheckSHA256(goal []byte) ([]byte, bool) {
	computed := hw.sha256.Sum(nil)
	ok := len(goal) == 0 || bytes.Equal(goal, computed)
	return computed, ok
}

// VerifyStreamHash checksums the given io.Reader and compares the
// result against the provided md5 and sha256 checksums. It returns true
// if everything matches. Pass an empty slice to skip a checksum type.
// The reader is not closed when finished.
func VerifyStreamHash(r io.Reader, md5goal, sha256goal []byte) (bool, error) {
	if len(md5goal) == 0 && len(sha256goal) == 0 {
		return true, nil
	}
	hw := NewHashWriterPlain()
	_, err := io.Copy(hw, r)
	if err != nil {
		return false, err
	}
	_, ok1 := hw.CheckMD5(md5goal)
	_, ok2 := hw.CheckSHA256(sha256goal)
	return ok1 && ok2, nil
}
