package util

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

const input = "bale test payload 0123456789abcdefghijklmnopqrstuvwxyz"

var (
	goalMD5, _    = hex.DecodeString("4f411634150ede30479d9094dd113f84")
	goalSHA256, _ = hex.DecodeString("f1b88a01880fe50492645973112d964a9deec24399f8ef1e916a40cc5816b7dc")
)

func TestHashWriter(t *testing.T) {
	var w = new(bytes.Buffer)
	hw := NewHashWriter(w)
	hw.Write([]byte(input))
	if w.String() != input {
		t.Errorf("Wrapped writer received %s, expected %s", w.String(), input)
	}
	h, ok := hw.CheckMD5(goalMD5)
	if !ok {
		t.Fatalf("Got %v, expected %v", h, goalMD5)
	}
	h, ok = hw.CheckSHA256(goalSHA256)
	if !ok {
		t.Fatalf("Got %v, expected %v", h, goalSHA256)
	}
	// a wrong goal should not match
	_, ok = hw.CheckMD5(goalSHA256[:16])
	if ok {
		t.Errorf("CheckMD5 matched a wrong goal")
	}
}

func TestVerifyStreamHash(t *testing.T) {
	var table = []struct {
		md5, sha256 []byte
		ok          bool
	}{
		{nil, nil, true},
		{goalMD5, nil, true},
		{nil, goalSHA256, true},
		{goalMD5, goalSHA256, true},
		{goalSHA256[:16], nil, false},
	}
	for _, test := range table {
		ok, err := VerifyStreamHash(strings.NewReader(input), test.md5, test.sha256)
		if err != nil {
			t.Fatalf("Got unexpected error %s", err.Error())
		}
		if ok != test.ok {
			t.Errorf("Got %v for goals (%v, %v)", ok, test.md5, test.sha256)
		}
	}
}
