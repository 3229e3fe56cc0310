package auth

// MockStore is an in-memory Store for tests.
type MockStore struct {
	tokens map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]string)}
}

func (m *MockStore) SetToken(key string, secret string) error {
	m.tokens[NormalizeKey(key)] = secret
	return nil
}

func (m *MockStore) GetToken(key string) (string, error) {
	secret, ok := m.tokens[NormalizeKey(key)]
	if !ok {
		return "", ErrTokenNotFound
	}
	return secret, nil
}

func (m *MockStore) DeleteToken(key string) error {
	key = NormalizeKey(key)
	if _, ok := m.tokens[key]; !ok {
		return ErrTokenNotFound
	}
	delete(m.tokens, key)
	return nil
}
