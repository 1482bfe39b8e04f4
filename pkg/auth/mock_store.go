package auth

import "sync"

// MockStore implements CredentialStore for testing purposes
type MockStore struct {
	profiles map[string]*Tokens
	mu       sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		profiles: make(map[string]*Tokens),
	}
}

// Name identifies the store
func (m *MockStore) Name() string { return "mock" }

// Store saves tokens to the mock store
func (m *MockStore) Store(tokens *Tokens) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tokens == nil || tokens.Profile == "" {
		return ErrInvalidCredentials
	}

	// Keep a copy to avoid external modifications
	c := *tokens
	m.profiles[tokens.Profile] = &c

	return nil
}

// Retrieve gets tokens from the mock store
func (m *MockStore) Retrieve(profile string) (*Tokens, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	tokens, exists := m.profiles[profile]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	c := *tokens
	return &c, nil
}

// List returns all stored profiles from the mock store
func (m *MockStore) List() ([]*Tokens, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*Tokens
	for _, tokens := range m.profiles {
		c := *tokens
		list = append(list, &c)
	}

	return list, nil
}

// Delete removes tokens from the mock store
func (m *MockStore) Delete(profile string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if profile == "" {
		return ErrInvalidCredentials
	}

	if _, exists := m.profiles[profile]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.profiles, profile)
	return nil
}

// Exists checks if tokens exist in the mock store
func (m *MockStore) Exists(profile string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.profiles[profile]
	return exists
}

// Count returns the number of profiles in the mock store
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.profiles)
}

// NewMockManager creates a Manager with a mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	return NewManagerWithStores(mockStore), mockStore
}
