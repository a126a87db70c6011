package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

const (
	keyringService = "inkwell"
	keyringKey     = "session"
)

// SessionStore persists what is needed to restore a session on the next
// start. Load returns ErrNotSignedIn when nothing is stored.
type SessionStore interface {
	Load() (StoredSession, error)
	Save(StoredSession) error
	Clear() error
}

// StoredSession is the durable part of a Session. Id tokens are short-lived
// and are never stored.
type StoredSession struct {
	User         User   `json:"user"`
	RefreshToken string `json:"refresh_token"`
}

// KeyringStore keeps the session in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// OpenKeyringStore opens the system keyring for inkwell.
func OpenKeyringStore() (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
	})
	if err != nil {
		return nil, fmt.Errorf("identity: open keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (k *KeyringStore) Load() (StoredSession, error) {
	item, err := k.ring.Get(keyringKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return StoredSession{}, ErrNotSignedIn
	}
	if err != nil {
		return StoredSession{}, fmt.Errorf("identity: read keyring: %w", err)
	}
	var s StoredSession
	if err := json.Unmarshal(item.Data, &s); err != nil {
		return StoredSession{}, fmt.Errorf("identity: decode stored session: %w", err)
	}
	if s.RefreshToken == "" {
		return StoredSession{}, ErrNotSignedIn
	}
	return s, nil
}

func (k *KeyringStore) Save(s StoredSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("identity: encode session: %w", err)
	}
	return k.ring.Set(keyring.Item{
		Key:         keyringKey,
		Data:        data,
		Label:       "inkwell session",
		Description: s.User.Email,
	})
}

func (k *KeyringStore) Clear() error {
	err := k.ring.Remove(keyringKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("identity: clear keyring: %w", err)
	}
	return nil
}

// MemoryStore keeps the session for the life of the process.
type MemoryStore struct {
	mu sync.Mutex
	s  *StoredSession
}

func (m *MemoryStore) Load() (StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return StoredSession{}, ErrNotSignedIn
	}
	return *m.s, nil
}

func (m *MemoryStore) Save(s StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = &s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}
