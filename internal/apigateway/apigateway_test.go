package apigateway

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetDeleteRestAPI(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	api := reg.CreateRestAPI("orders", "Orders API", "now")
	require.NotEmpty(t, api.ID)

	got, err := reg.Get(api.ID)
	require.NoError(t, err)
	assert.Equal(t, "orders", got.Name)

	reg.Delete(api.ID)
	_, err = reg.Get(api.ID)
	require.Error(t, err)
}

func TestListRestAPIs(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	reg.CreateRestAPI("a", "", "now")
	reg.CreateRestAPI("b", "", "now")
	assert.Len(t, reg.List(), 2)
}
