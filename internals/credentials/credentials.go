// Package credentials persists the launcher client token and the stored
// account sessions. Secrets live in the OS keyring when one is
// available, with a plain file fallback otherwise.
package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"

	"github.com/polarlauncher/polar/internals/auth"
)

const (
	keyringService   = "polar"
	keyringTokenUser = "polar_client_token"
	keyringDataUser  = "polar_accounts"

	tokenFile    = "client-token.json"
	accountsFile = "accounts.json"
)

// Store persists the client token & account sessions
type Store struct {
	globalDir string
	// NoKeyRingMode falls back to plain files in the launcher dir. Set
	// automatically when the keyring is unusable.
	NoKeyRingMode bool
}

// New creates a store rooted at the launcher's global directory
func New(globalDir string) *Store {
	return &Store{globalDir: globalDir}
}

// ClientToken returns the stored client token or "" on a first run
func (s *Store) ClientToken() (string, error) {
	var token string
	ok, err := s.get(keyringTokenUser, tokenFile, &token)
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// SaveClientToken persists the client token. It is generated once per
// installation and never changes afterwards.
func (s *Store) SaveClientToken(token string) error {
	return s.set(keyringTokenUser, tokenFile, token)
}

// Sessions returns all persisted account sessions
func (s *Store) Sessions() ([]auth.Session, error) {
	var sessions []auth.Session
	ok, err := s.get(keyringDataUser, accountsFile, &sessions)
	if err != nil || !ok {
		return nil, err
	}
	return sessions, nil
}

// SaveSessions replaces the persisted account sessions
func (s *Store) SaveSessions(sessions []auth.Session) error {
	return s.set(keyringDataUser, accountsFile, sessions)
}

// get reads from the keyring, falling back to files when the keyring is
// unusable. Missing entries are fine – they just mean a first run.
func (s *Store) get(user string, file string, v interface{}) (bool, error) {
	if s.NoKeyRingMode {
		return s.readFile(file, v)
	}

	raw, err := keyring.Get(keyringService, user)
	switch err {
	case nil:
		return true, json.Unmarshal([]byte(raw), v)
	case keyring.ErrNotFound:
		return false, nil
	default:
		// no usable keyring on this system
		s.NoKeyRingMode = true
		return s.readFile(file, v)
	}
}

func (s *Store) set(user string, file string, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.NoKeyRingMode {
		return s.writeFile(file, blob)
	}
	if err := keyring.Set(keyringService, user, string(blob)); err != nil {
		s.NoKeyRingMode = true
		return s.writeFile(file, blob)
	}
	return nil
}

// readFile reads a json file from the launcher dir
func (s *Store) readFile(location string, v interface{}) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.globalDir, location))
	switch {
	case err == nil:
		return true, json.Unmarshal(raw, v)
	case os.IsNotExist(err):
		// no file is fine
		return false, nil
	default:
		return false, err
	}
}

// writeFile writes a json file to the launcher dir, readable only by
// the current user
func (s *Store) writeFile(location string, content []byte) error {
	if err := os.MkdirAll(s.globalDir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.globalDir, location), content, 0o600)
}
