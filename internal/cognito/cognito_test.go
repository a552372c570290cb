package cognito

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(identity.New("", ""))
}

func TestCreatePoolAndGetByID(t *testing.T) {
	reg := newTestRegistry()
	pool := reg.CreatePool("customers", "now")
	require.NotEmpty(t, pool.ID)

	got, err := reg.Get(pool.ID)
	require.NoError(t, err)
	assert.Equal(t, "customers", got.Name)
}

func TestGetByNameUsesSecondaryIndex(t *testing.T) {
	reg := newTestRegistry()
	pool := reg.CreatePool("customers", "now")

	got, err := reg.GetByName("customers")
	require.NoError(t, err)
	assert.Equal(t, pool.ID, got.ID)
}

func TestDeletePoolRemovesNameIndex(t *testing.T) {
	reg := newTestRegistry()
	reg.CreatePool("customers", "now")
	pool, _ := reg.GetByName("customers")

	reg.DeletePool(pool.ID)
	_, err := reg.GetByName("customers")
	require.Error(t, err)
}

func TestListPoolsSorted(t *testing.T) {
	reg := newTestRegistry()
	reg.CreatePool("b", "now")
	reg.CreatePool("a", "now")
	pools := reg.ListPools()
	require.Len(t, pools, 2)
	assert.Less(t, pools[0].ID, pools[1].ID)
}

func TestUserCreateGetDeleteWithinPool(t *testing.T) {
	reg := newTestRegistry()
	pool := reg.CreatePool("customers", "now")

	u := pool.CreateUser("alice", map[string]string{"email": "alice@example.com"}, "now")
	assert.Equal(t, "CONFIRMED", u.UserStatus)

	got, err := pool.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Attributes["email"])

	pool.DeleteUser("alice")
	_, err = pool.GetUser("alice")
	require.Error(t, err)
}

func TestListUsersSorted(t *testing.T) {
	reg := newTestRegistry()
	pool := reg.CreatePool("customers", "now")
	pool.CreateUser("zeta", nil, "now")
	pool.CreateUser("alpha", nil, "now")

	users := pool.ListUsers()
	require.Len(t, users, 2)
	assert.Equal(t, "alpha", users[0].Username)
	assert.Equal(t, "zeta", users[1].Username)
}
