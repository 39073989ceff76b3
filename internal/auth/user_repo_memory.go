package auth

import (
	"strings"
	"sync"
)

// TestRepository is a threadsafe in-memory Repository useful for tests and
// single-instance demo servers. NOT suitable for production: nothing here
// is persisted.
type TestRepository struct {
	mu       sync.RWMutex
	accounts map[string]*Account // key = lowercase(name)
}

// NewTestRepository returns an empty in-memory repository.
func NewTestRepository() *TestRepository {
	return &TestRepository{accounts: make(map[string]*Account)}
}

// Register implements Repository.
func (r *TestRepository) Register(name string, secret [4]uint32) (bool, error) {
	key := normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[key]; exists {
		return false, nil
	}
	hash, err := hashSecret(secret)
	if err != nil {
		return false, err
	}
	r.accounts[key] = &Account{Name: name, Secret: hash}
	return true, nil
}

// Login implements Repository.
func (r *TestRepository) Login(name string, secret [4]uint32) (bool, error) {
	key := normalize(name)

	r.mu.RLock()
	account, exists := r.accounts[key]
	r.mu.RUnlock()
	if !exists {
		return false, nil
	}

	ok, deprecated, err := verifySecret(account.Secret, secret)
	if err != nil || !ok {
		return false, err
	}

	if deprecated {
		rehashed, err := hashSecret(secret)
		if err == nil {
			r.mu.Lock()
			account.Secret = rehashed
			r.mu.Unlock()
		}
	}

	return true, nil
}

// normalize makes name lookups case-insensitive.
func normalize(name string) string {
	return strings.ToLower(name)
}
