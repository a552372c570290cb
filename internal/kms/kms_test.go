package kms

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	k := reg.CreateKey("test key", "now")

	blob, err := reg.Encrypt(k.KeyID, []byte("secret"))
	require.NoError(t, err)

	keyID, plaintext, err := reg.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, k.KeyID, keyID)
	assert.Equal(t, []byte("secret"), plaintext)
}

func TestScheduleKeyDeletionDisablesEncrypt(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	k := reg.CreateKey("test key", "now")
	require.NoError(t, reg.ScheduleKeyDeletion(k.KeyID))

	_, err := reg.Encrypt(k.KeyID, []byte("secret"))
	require.Error(t, err)
}

func TestEncryptMissingKeyIsNotFound(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, err := reg.Encrypt("missing", []byte("x"))
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.NotFound, kind)
}
