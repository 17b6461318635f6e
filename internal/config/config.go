// Package config persists the user's API credentials to a JSON file under a
// per-user application directory. Loading is deliberately forgiving: a
// missing or corrupt file means "not configured yet", never an error.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "config")

const (
	appDirName     = "ghlite"
	configFileName = "config.json"
)

// Credentials is the username/token pair used to authenticate API requests.
// The token is a secret: it is only ever sent as an Authorization header and
// must never be logged or rendered in clear text.
type Credentials struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// IsZero reports whether no credentials have been configured.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Token == ""
}

// fileSchema is the on-disk layout: credentials live under a "github"
// envelope so the file can grow other sections without breaking old readers.
type fileSchema struct {
	GitHub Credentials `json:"github"`
}

// Store owns the credentials file. It is safe for concurrent use, though the
// expected usage is a single writer (the settings screen) and a handful of
// readers.
type Store struct {
	path string

	mu   sync.Mutex
	subs []chan Credentials
}

// NewStore creates a Store rooted at the default per-user config directory,
// creating the directory if needed.
func NewStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, configFileName)}, nil
}

// NewStoreAt creates a Store using an explicit file path. Used by tests and
// the --config flag.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the credentials file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the credentials file. A missing, unreadable, or malformed file
// yields empty Credentials: first run and a damaged file look the same to
// the caller, and both are recovered by saving from the settings screen.
func (s *Store) Load() Credentials {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Warn("config file unreadable, starting unconfigured")
		}
		return Credentials{}
	}

	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		logger.WithError(err).Warn("config file malformed, starting unconfigured")
		return Credentials{}
	}
	return file.GitHub
}

// Save writes the credentials file, creating its directory if needed, and
// notifies subscribers. The file is written in one WriteFile call so a
// failure leaves the previous content intact rather than a truncated file.
func (s *Store) Save(creds Credentials) error {
	data, err := json.MarshalIndent(fileSchema{GitHub: creds}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	// 0600: the token is stored in clear text, so keep the file private.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logger.WithFields(log.Fields{
		"user":  creds.Username,
		"token": Redact(creds.Token),
	}).Info("credentials saved")

	s.notify(creds)
	return nil
}

// Subscribe returns a channel that receives the new credentials after every
// successful Save. The channel has a buffer of one and sends never block: a
// slow consumer may miss intermediate values but always observes the latest
// on its next receive.
func (s *Store) Subscribe() <-chan Credentials {
	ch := make(chan Credentials, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		// Drop a stale pending value so the buffer always holds the latest.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- creds:
		default:
		}
	}
}

// Redact returns a display-safe form of a token: the first four characters
// followed by an ellipsis. An empty token stays empty.
func Redact(token string) string {
	if token == "" {
		return ""
	}
	r := []rune(token)
	if len(r) <= 4 {
		return "****"
	}
	return string(r[:4]) + "…"
}
