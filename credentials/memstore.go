package credentials

import "sync"

var _ Store = (*MemStore)(nil)

// MemStore is an in-process Store. It is safe for concurrent use.
type MemStore struct {
	lock  sync.RWMutex
	creds Credentials
}

// NewMemStore creates an empty in-memory credential store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Snapshot() Credentials {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return copyCredentials(s.creds)
}

func (s *MemStore) Replace(creds Credentials) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.creds = copyCredentials(creds)
}

func (s *MemStore) Clear() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	cleared := s.creds != (Credentials{})
	s.creds = Credentials{}
	return cleared
}

func (s *MemStore) AccessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.creds.AccessToken
}

func (s *MemStore) RefreshToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.creds.RefreshToken
}

// copyCredentials deep-copies the user record so callers cannot mutate the
// stored state through a Snapshot.
func copyCredentials(creds Credentials) Credentials {
	if creds.User != nil {
		user := *creds.User
		creds.User = &user
	}
	return creds
}
