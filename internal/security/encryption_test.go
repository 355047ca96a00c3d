package security

import (
	"testing"

	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, key string) EncryptionService {
	cfg := config.GetDefaultConfig()
	cfg.Secrets.EncryptionKey = key
	svc, err := NewEncryptionService(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	return svc
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc := newTestService(t, "test-master-key")

	ciphertext, err := svc.Encrypt("merchant-password")
	require.NoError(t, err)
	assert.NotEqual(t, "merchant-password", ciphertext)

	plaintext, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "merchant-password", plaintext)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	svc := newTestService(t, "test-master-key")

	a, err := svc.Encrypt("same")
	require.NoError(t, err)
	b, err := svc.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWithOtherKeyFails(t *testing.T) {
	ciphertext, err := newTestService(t, "key-one").Encrypt("secret")
	require.NoError(t, err)

	_, err = newTestService(t, "key-two").Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestEmptyValues(t *testing.T) {
	svc := newTestService(t, "k")

	out, err := svc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = svc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, svc.Hash(""))
}

func TestMissingMasterKey(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Secrets.EncryptionKey = ""
	_, err := NewEncryptionService(cfg, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "****5678", Mask("12345678"))
}
