// Package filestore persists storefront credentials as a JSON file so a
// session survives process restarts.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-storefront-client/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ credentials.Store = (*FileStore)(nil)

const fileMode = 0o600

// FileStore is a credentials.Store backed by a JSON file. Every mutation is
// written through to disk; the file is created on first write.
type FileStore struct {
	lock  sync.RWMutex
	path  string
	creds credentials.Credentials
}

// New creates a FileStore at path and loads any persisted session. If path is
// empty it defaults to <user config dir>/<appName>/credentials.json.
//
// A rehydrated access token that is demonstrably expired is dropped while the
// refresh token is kept: the refresh token has the longer horizon and the
// next request will obtain a fresh access token through the refresh cycle.
func New(path string, appName string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return nil, errors.Wrap(homeErr, "[filestore.New] could not determine config directory")
			}
			configDir = filepath.Join(home, ".config")
		}
		if appName == "" {
			appName = "storefront"
		}
		path = filepath.Join(configDir, appName, "credentials.json")
	}

	store := &FileStore{path: path}
	if err := store.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if store.creds.AccessTokenExpired() {
		log.Debug().Msg("persisted access token expired, keeping refresh token only")
		store.creds.AccessToken = ""
	}

	return store, nil
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Snapshot() credentials.Credentials {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return copyCreds(s.creds)
}

func (s *FileStore) Replace(creds credentials.Credentials) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.creds = copyCreds(creds)
	if err := s.save(); err != nil {
		log.Err(err).Str("path", s.path).Msg("Failed to persist credentials")
	}
}

func (s *FileStore) Clear() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	cleared := s.creds != (credentials.Credentials{})
	s.creds = credentials.Credentials{}
	if err := s.save(); err != nil {
		log.Err(err).Str("path", s.path).Msg("Failed to persist cleared credentials")
	}
	return cleared
}

func (s *FileStore) AccessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.creds.AccessToken
}

func (s *FileStore) RefreshToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.creds.RefreshToken
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &s.creds); err != nil {
		return errors.Wrap(err, "[FileStore.load] failed to parse credentials file")
	}
	return nil
}

// save writes the current state. Caller must hold s.lock.
func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStore.save] MkdirAll")
	}
	data, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.save] MarshalIndent")
	}
	if err := os.WriteFile(s.path, data, fileMode); err != nil {
		return errors.Wrap(err, "[FileStore.save] WriteFile")
	}
	return nil
}

func copyCreds(creds credentials.Credentials) credentials.Credentials {
	if creds.User != nil {
		user := *creds.User
		creds.User = &user
	}
	return creds
}
