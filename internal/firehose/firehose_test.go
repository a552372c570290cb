package firehose

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetDeleteDeliveryStream(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	d := reg.CreateDeliveryStream("clicks", "now")

	got, err := reg.Get("clicks")
	require.NoError(t, err)
	assert.Equal(t, d.ARN, got.ARN)

	reg.Delete("clicks")
	_, err = reg.Get("clicks")
	require.Error(t, err)
}

func TestPutRecordAndBatchAreAcceptOnly(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	d := reg.CreateDeliveryStream("clicks", "now")

	id := d.PutRecord([]byte("event"))
	assert.NotEmpty(t, id)

	ids := d.PutRecordBatch([][]byte{[]byte("a"), []byte("b")})
	assert.Len(t, ids, 2)
}
