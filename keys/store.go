package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore keeps issuer seeds on the local filesystem:
//
//	<Directory>/<identifier>/root.key
//	<Directory>/<identifier>/roles/<scheme>/<role>.key
//
// Each file holds one hex seed. Role seeds are derived from the root seed with
// DeriveRoleSeed, so a root seed alone is enough to rebuild every role key.
//
// EXPERIMENTAL: the on-disk layout may change.
type KeyStore struct {
	Directory string
}

// KeyEntry lists one identity and its derived role keys as "<scheme>/<role>".
type KeyEntry struct {
	Identifier string
	Roles      []string
}

func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".xdao", "zkcred", "keys"), nil
}

// OpenKeyStore returns a KeyStore rooted at directory, or at DefaultDirectory when empty.
func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		if directory, err = DefaultDirectory(); err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootPath(identifier string) string {
	return filepath.Join(ks.Directory, identifier, "root.key")
}

func (ks *KeyStore) rolePath(identifier, scheme, role string) string {
	return filepath.Join(ks.Directory, identifier, "roles", scheme, role+".key")
}

func checkName(kind, s string) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in %s", c, kind)
	}
	return nil
}

func CheckKeyName(identifier string) error { return checkName("identifier", identifier) }

func CheckRole(role string) error { return checkName("role", role) }

// ParseSeedHex parses a 32-byte seed, with or without 0x prefix.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimPrefix(strings.TrimSpace(seedHex), "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", SeedSize, len(data))
	}
	return data, nil
}

func writeSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return f.Close()
}

func readSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(string(data))
}

// InitializeRootKey stores seed as the root of identifier.
func (ks *KeyStore) InitializeRootKey(identifier string, seed []byte, overwrite bool) (string, error) {
	if err := CheckKeyName(identifier); err != nil {
		return "", err
	}
	path := ks.rootPath(identifier)
	if err := writeSeed(path, seed, overwrite); err != nil {
		return "", err
	}
	return path, nil
}

// DeriveRoleKey derives and stores the role seed for scheme and returns its signer.
func (ks *KeyStore) DeriveRoleKey(identifier, scheme, role string, overwrite bool) (Signer, string, error) {
	if err := CheckKeyName(identifier); err != nil {
		return nil, "", err
	}
	root, err := readSeed(ks.rootPath(identifier))
	if err != nil {
		return nil, "", err
	}
	seed, err := DeriveRoleSeed(root, scheme, role)
	if err != nil {
		return nil, "", err
	}
	signer, err := NewSigner(scheme, seed)
	if err != nil {
		return nil, "", err
	}
	path := ks.rolePath(identifier, scheme, role)
	if err := writeSeed(path, seed, overwrite); err != nil {
		return nil, "", err
	}
	return signer, path, nil
}

// LoadSigner opens the stored role key, or the root key when role is empty.
func (ks *KeyStore) LoadSigner(identifier, scheme, role string) (Signer, error) {
	if err := CheckKeyName(identifier); err != nil {
		return nil, err
	}
	path := ks.rootPath(identifier)
	if role != "" {
		if err := CheckRole(role); err != nil {
			return nil, err
		}
		path = ks.rolePath(identifier, scheme, role)
	}
	seed, err := readSeed(path)
	if err != nil {
		return nil, err
	}
	return NewSigner(scheme, seed)
}

// ListKeys returns every identity with its derived roles, sorted.
func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []KeyEntry
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		entry := KeyEntry{Identifier: e.Name()}
		matches, _ := filepath.Glob(filepath.Join(ks.Directory, e.Name(), "roles", "*", "*.key"))
		for _, m := range matches {
			scheme := filepath.Base(filepath.Dir(m))
			entry.Roles = append(entry.Roles, scheme+"/"+strings.TrimSuffix(filepath.Base(m), ".key"))
		}
		sort.Strings(entry.Roles)
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}
