package keys

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKeyStoreRoundTrip(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	path, err := ks.InitializeRootKey("acme", testRoot(), false)
	if err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Mode().Perm() != 0o600 {
		t.Fatalf("root key file: %v %v", info, err)
	}
	if _, err := ks.InitializeRootKey("acme", testRoot(), false); err == nil {
		t.Fatalf("expected refusal to overwrite without overwrite flag")
	}

	signer, rolePath, err := ks.DeriveRoleKey("acme", "ethereum", "kyc", false)
	if err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}
	if filepath.Base(rolePath) != "kyc.key" {
		t.Fatalf("role path %s", rolePath)
	}
	loaded, err := ks.LoadSigner("acme", "ethereum", "kyc")
	if err != nil {
		t.Fatalf("LoadSigner: %v", err)
	}
	if string(loaded.PublicKey()) != string(signer.PublicKey()) {
		t.Fatalf("loaded key differs from derived key")
	}

	entries, err := ks.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(entries) != 1 || entries[0].Identifier != "acme" || len(entries[0].Roles) != 1 || entries[0].Roles[0] != "ethereum/kyc" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestKeyStoreRejectsNames(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	if _, err := ks.InitializeRootKey("../escape", testRoot(), false); err == nil {
		t.Fatalf("path traversal identifier accepted")
	}
	if _, err := ks.LoadSigner("acme", "ed25519", "a/b"); err == nil {
		t.Fatalf("invalid role accepted")
	}
	if entries, err := (&KeyStore{Directory: filepath.Join(t.TempDir(), "missing")}).ListKeys(); err != nil || entries != nil {
		t.Fatalf("missing directory: %v %v", entries, err)
	}
}

func TestParseSeedHex(t *testing.T) {
	seed, err := ParseSeedHex(" 0x000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f\n")
	if err != nil {
		t.Fatalf("ParseSeedHex: %v", err)
	}
	if string(seed) != string(testRoot()) {
		t.Fatalf("seed mismatch")
	}
	if _, err := ParseSeedHex("abcd"); err == nil {
		t.Fatalf("short seed accepted")
	}
}
