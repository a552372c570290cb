package memorydb

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetDeleteCluster(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	c := reg.CreateCluster("cache-1", "db.r6g.large", "now")
	assert.Equal(t, "available", c.Status)

	got, err := reg.Get("cache-1")
	require.NoError(t, err)
	assert.Equal(t, c.ARN, got.ARN)

	reg.Delete("cache-1")
	_, err = reg.Get("cache-1")
	require.Error(t, err)
}

func TestTagUntagCluster(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	reg.CreateCluster("cache-1", "db.r6g.large", "now")

	require.NoError(t, reg.Tag("cache-1", map[string]string{"env": "prod"}))
	tags, err := reg.Tags("cache-1")
	require.NoError(t, err)
	assert.Equal(t, "prod", tags["env"])

	require.NoError(t, reg.Untag("cache-1", []string{"env"}))
	tags, err = reg.Tags("cache-1")
	require.NoError(t, err)
	assert.Empty(t, tags)
}
