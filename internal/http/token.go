package http

import "sync"

// TokenStore holds the bearer credential requests are signed with. Login
// replaces the token while requests read it, so access is guarded; a login
// racing an in-flight request signs that request with whichever token the
// store held when the request started.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore creates a store, optionally seeded with a pre-provisioned
// API token.
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

// Set replaces the stored token.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Get returns the stored token, or "" when unauthenticated.
func (s *TokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}
