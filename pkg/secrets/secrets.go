package secrets

import (
	"context"
	"sync"

	"multiverse-identity/backend/pkg/logger"
)

// Manager provides access to secrets from various sources
type Manager interface {
	// GetSecret retrieves a secret by key
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault retrieves a secret with a default value if not found
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

var (
	defaultManager Manager
	managerMu      sync.RWMutex
)

// Init initializes the default secrets manager from the environment
func Init(log *logger.Logger) error {
	manager, err := NewVaultManager(VaultConfigFromEnv(), log)
	if err != nil {
		return err
	}
	SetManager(manager)
	return nil
}

// GetSecret retrieves a secret from the default manager
func GetSecret(ctx context.Context, key string) (string, error) {
	m := current()
	if m == nil {
		return "", ErrManagerNotInitialized
	}
	return m.GetSecret(ctx, key)
}

// GetSecretWithDefault retrieves a secret with a default value if not found
func GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	m := current()
	if m == nil {
		return defaultValue
	}
	return m.GetSecretWithDefault(ctx, key, defaultValue)
}

// SetManager replaces the default secrets manager (primarily used for testing)
func SetManager(manager Manager) {
	managerMu.Lock()
	defer managerMu.Unlock()
	defaultManager = manager
}

func current() Manager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return defaultManager
}

// Common errors
var (
	ErrManagerNotInitialized = NewError("secrets manager not initialized")
)

// Error represents a secrets management error
type Error string

// Error implements the error interface
func (e Error) Error() string {
	return string(e)
}

// NewError creates a new Error
func NewError(text string) Error {
	return Error(text)
}
