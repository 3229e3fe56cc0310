// Package auth stores provider credentials in the OS keychain.
package auth

import (
	"errors"

	"nathanbeddoewebdev/exosync/internal/util"
)

// ServiceName is the keychain service under which credentials are filed.
const ServiceName = "exosync"

var ErrTokenNotFound = errors.New("credential not found")

// Store reads and writes named secrets. Keys are normalized with NormalizeKey
// by implementations that talk to a real keychain.
type Store interface {
	SetToken(key string, secret string) error
	GetToken(key string) (string, error)
	DeleteToken(key string) error
}

// DefaultStore returns the standard store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// NormalizeKey normalizes a credential key for consistent lookup.
func NormalizeKey(key string) string {
	return util.NormalizeKey(key)
}
