package secrets

import (
	"context"
	"errors"
	"io"
	"testing"

	"multiverse-identity/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubKV struct {
	data  map[string]interface{}
	err   error
	calls int
}

func (s *stubKV) Get(_ context.Context, _ string) (*vault.KVSecret, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &vault.KVSecret{Data: s.data}, nil
}

func testLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = io.Discard
	return logger.New(cfg)
}

func TestVaultManagerDisabledReadsEnvironment(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")

	m, err := NewVaultManager(VaultConfig{}, testLogger())
	require.NoError(t, err)

	value, err := m.GetSecret(context.Background(), "db_password")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	_, err = m.GetSecret(context.Background(), "missing-key")
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, "fallback", m.GetSecretWithDefault(context.Background(), "missing-key", "fallback"))
}

func TestVaultManagerEnabledRequiresAddressAndToken(t *testing.T) {
	_, err := NewVaultManager(VaultConfig{Enabled: true}, testLogger())
	assert.ErrorIs(t, err, ErrNoVaultAddress)

	_, err = NewVaultManager(VaultConfig{Enabled: true, Address: "http://127.0.0.1:8200"}, testLogger())
	assert.ErrorIs(t, err, ErrNoVaultToken)
}

func TestVaultManagerReadsAndCachesVaultValues(t *testing.T) {
	kv := &stubKV{data: map[string]interface{}{"db_password": "from-vault"}}
	m := &VaultManager{kv: kv, cache: map[string]string{}, log: testLogger()}

	for i := 0; i < 3; i++ {
		value, err := m.GetSecret(context.Background(), "db_password")
		require.NoError(t, err)
		assert.Equal(t, "from-vault", value)
	}
	assert.Equal(t, 1, kv.calls)
}

func TestVaultManagerFallsBackToEnvironment(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "env-redis")
	kv := &stubKV{data: map[string]interface{}{}}
	m := &VaultManager{kv: kv, cache: map[string]string{}, log: testLogger()}

	value, err := m.GetSecret(context.Background(), "redis.password")
	require.NoError(t, err)
	assert.Equal(t, "env-redis", value)
}

func TestVaultManagerPropagatesVaultErrors(t *testing.T) {
	kv := &stubKV{err: errors.New("permission denied")}
	m := &VaultManager{kv: kv, cache: map[string]string{}, log: testLogger()}

	_, err := m.GetSecret(context.Background(), "db_password")
	assert.ErrorContains(t, err, "permission denied")
}

func TestPackageLevelHelpers(t *testing.T) {
	SetManager(nil)
	_, err := GetSecret(context.Background(), "db_password")
	assert.ErrorIs(t, err, ErrManagerNotInitialized)
	assert.Equal(t, "default", GetSecretWithDefault(context.Background(), "db_password", "default"))

	kv := &stubKV{data: map[string]interface{}{"db_password": "s3cret"}}
	SetManager(&VaultManager{kv: kv, cache: map[string]string{}, log: testLogger()})
	t.Cleanup(func() { SetManager(nil) })

	assert.Equal(t, "s3cret", GetSecretWithDefault(context.Background(), "db_password", "default"))
}
