package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher(t *testing.T) {
	if h, err := NewHasher(""); err != nil || h != (PlainHasher{}) {
		t.Fatalf("empty name: %v, %v", h, err)
	}
	if h, err := NewHasher("bcrypt"); err != nil {
		t.Fatalf("bcrypt: %v", err)
	} else if _, ok := h.(BcryptHasher); !ok {
		t.Fatalf("expected BcryptHasher, got %T", h)
	}
	if _, err := NewHasher("md5"); err == nil {
		t.Fatal("expected error for unknown hashing")
	}
}

func TestPlainHasher(t *testing.T) {
	var h PlainHasher
	stored, err := h.Hash("pw1")
	if err != nil || stored != "pw1" {
		t.Fatalf("hash = %q, %v", stored, err)
	}
	if !h.Compare(stored, "pw1") {
		t.Fatal("expected match")
	}
	if h.Compare(stored, "pw2") {
		t.Fatal("unexpected match")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	stored, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if stored == "secret" || strings.ContainsAny(stored, " \t\n") {
		t.Fatalf("unexpected stored form %q", stored)
	}
	if !h.Compare(stored, "secret") {
		t.Fatal("expected match")
	}
	if h.Compare(stored, "Secret") {
		t.Fatal("unexpected match")
	}
}
