package ses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyIdentityAutoVerifies(t *testing.T) {
	reg := NewRegistry()
	id := reg.VerifyIdentity("user@example.com", "now")
	assert.Equal(t, "Success", id.VerificationStatus)

	got, err := reg.Get("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "now", got.VerifiedAt)
}

func TestGetMissingIdentityIsNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nobody@example.com")
	require.Error(t, err)
}

func TestDeleteIdentityIsSilentOnMissing(t *testing.T) {
	reg := NewRegistry()
	reg.DeleteIdentity("nobody@example.com")

	reg.VerifyIdentity("user@example.com", "now")
	reg.DeleteIdentity("user@example.com")
	_, err := reg.Get("user@example.com")
	require.Error(t, err)
}

func TestListIdentitiesSorted(t *testing.T) {
	reg := NewRegistry()
	reg.VerifyIdentity("zeta@example.com", "now")
	reg.VerifyIdentity("alpha@example.com", "now")

	ids := reg.ListIdentities()
	require.Len(t, ids, 2)
	assert.Equal(t, "alpha@example.com", ids[0].Value)
	assert.Equal(t, "zeta@example.com", ids[1].Value)
}

func TestSendEmailRecordsAcceptanceOnly(t *testing.T) {
	reg := NewRegistry()
	id := reg.SendEmail("sender@example.com", []string{"to@example.com"}, "hello")
	require.NotEmpty(t, id)

	require.Len(t, reg.sent, 1)
	assert.Equal(t, "sender@example.com", reg.sent[0].Source)
	assert.Equal(t, "hello", reg.sent[0].Subject)
	assert.Equal(t, id, reg.sent[0].MessageID)
}
