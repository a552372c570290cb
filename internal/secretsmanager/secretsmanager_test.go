package secretsmanager

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetSecretValue(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, err := reg.CreateSecret("db-password", "", "hunter2", "now")
	require.NoError(t, err)

	value, versionID, err := reg.GetSecretValue("db-password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)
	assert.NotEmpty(t, versionID)
}

func TestCreateSecretDuplicateNameIsAlreadyExists(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, err := reg.CreateSecret("db-password", "", "hunter2", "now")
	require.NoError(t, err)

	_, err = reg.CreateSecret("db-password", "", "other", "now")
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.AlreadyExists, kind)
}

func TestPutSecretValueRotatesVersion(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, _ = reg.CreateSecret("db-password", "", "hunter2", "now")
	_, oldVersion, _ := reg.GetSecretValue("db-password")

	newVersion, err := reg.PutSecretValue("db-password", "hunter3")
	require.NoError(t, err)
	assert.NotEqual(t, oldVersion, newVersion)

	value, _, err := reg.GetSecretValue("db-password")
	require.NoError(t, err)
	assert.Equal(t, "hunter3", value)
}
