// Package config loads the validation daemon's JSON configuration.
//
// Example:
//
//	{
//	  "listen": "127.0.0.1:7443",
//	  "metrics_listen": "127.0.0.1:9464",
//	  "scheme": "secp256k1",
//	  "log": {"level": "info", "file": "/var/log/zkcredd.log"},
//	  "journal": {
//	    "write_policy": "all",
//	    "backends": [
//	      {"name": "localfs", "settings": {"dir": "/var/lib/zkcred"}},
//	      {"name": "memory", "id": "hot"}
//	    ]
//	  }
//	}
//
// Journal settings are backend-specific. Backends are linked into a binary by
// importing their package.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/internal/logging"
	"xdao.co/zkcred/journal"
	"xdao.co/zkcred/sigscheme"
)

// DefaultMaxRecordBytes admits three maximal variable fields plus the fixed part.
const DefaultMaxRecordBytes = 3*credential.MaxFieldSize + 64

type Config struct {
	Listen         string          `json:"listen"`
	MetricsListen  string          `json:"metrics_listen,omitempty"`
	Scheme         string          `json:"scheme,omitempty"`
	MaxRecordBytes int             `json:"max_record_bytes,omitempty"`
	Log            logging.Options `json:"log"`
	Journal        JournalConfig   `json:"journal"`
}

// JournalConfig describes one or more journal backends.
//
// WritePolicy values:
//   - "first" (default): commit only to the first backend; reads fall back in order
//   - "all": commit to every backend and require CID equality
//
// No backends means no journal: validated outputs are returned but not stored.
type JournalConfig struct {
	WritePolicy string          `json:"write_policy,omitempty"`
	Backends    []BackendConfig `json:"backends,omitempty"`
}

type BackendConfig struct {
	// Name is the registered journal backend (e.g. "localfs", "memory").
	Name string `json:"name"`
	// ID is an optional stable alias; Name is used when empty.
	ID       string            `json:"id,omitempty"`
	Settings map[string]string `json:"settings,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:         "127.0.0.1:7443",
		Scheme:         sigscheme.NameStructural,
		MaxRecordBytes: DefaultMaxRecordBytes,
	}
}

// LoadFile reads path over Default. Unknown fields are rejected.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.MaxRecordBytes < 0 {
		return errors.New("config: max_record_bytes must not be negative")
	}
	if _, err := sigscheme.Lookup(c.scheme()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.Journal.Validate()
}

func (c Config) scheme() string {
	if c.Scheme == "" {
		return sigscheme.NameStructural
	}
	return c.Scheme
}

// Validator returns the credential validator for the configured scheme.
func (c Config) Validator() (credential.Validator, error) {
	return sigscheme.Validator(c.scheme())
}

func (c JournalConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("config: journal backend name is required")
		}
		id := b.id()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("config: duplicate journal backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	switch c.WritePolicy {
	case "", "first", "all":
		return nil
	default:
		return fmt.Errorf("config: invalid write_policy %q", c.WritePolicy)
	}
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

// Open opens the configured journal. It returns a nil journal when no backends
// are configured. The close function is never nil.
func (c JournalConfig) Open() (journal.Journal, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	var closers []func() error
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	if len(c.Backends) == 0 {
		return nil, closeAll, nil
	}

	named := make([]journal.Named, 0, len(c.Backends))
	for _, b := range c.Backends {
		j, closeFn, err := journal.Open(b.Name, b.Settings)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("config: journal backend %q: %w", b.id(), err)
		}
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
		named = append(named, journal.Named{Name: b.id(), Journal: j})
	}
	if len(named) == 1 {
		return named[0].Journal, closeAll, nil
	}
	return journal.Replicating{Backends: named, WriteFirst: c.WritePolicy != "all"}, closeAll, nil
}
