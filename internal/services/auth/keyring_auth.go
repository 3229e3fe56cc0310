package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringStore is a Store backed by the OS keychain (macOS Keychain, Secret
// Service on Linux, Windows Credential Manager).
type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetToken(key string, secret string) error {
	return keyring.Set(k.serviceName, NormalizeKey(key), secret)
}

func (k *KeyringStore) GetToken(key string) (string, error) {
	secret, err := keyring.Get(k.serviceName, NormalizeKey(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	return secret, err
}

func (k *KeyringStore) DeleteToken(key string) error {
	err := keyring.Delete(k.serviceName, NormalizeKey(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}
