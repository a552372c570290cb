package ssm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetStringParameter(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.PutParameter("/app/env", "String", "production", "now")
	require.NoError(t, err)

	p, err := reg.GetParameter("/app/env", false)
	require.NoError(t, err)
	assert.Equal(t, "production", p.Value)
}

func TestSecureStringRequiresDecryptionFlagToReveal(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.PutParameter("/app/secret", "SecureString", "hunter2", "now")
	require.NoError(t, err)

	encrypted, err := reg.GetParameter("/app/secret", false)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", encrypted.Value)

	decrypted, err := reg.GetParameter("/app/secret", true)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", decrypted.Value)
}

func TestPutParameterIncrementsVersion(t *testing.T) {
	reg := NewRegistry()
	p1, _ := reg.PutParameter("/app/env", "String", "dev", "now")
	p2, _ := reg.PutParameter("/app/env", "String", "prod", "later")
	assert.Equal(t, p1.Version+1, p2.Version)
}

func TestGetParameterMissingIsNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.GetParameter("/missing", false)
	require.Error(t, err)
}
