package kinesis

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStreamShardCount(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	s, err := reg.CreateStream("events", 3)
	require.NoError(t, err)
	assert.Len(t, s.ShardIDs(), 3)
}

func TestPutRecordAssignsMonotonicSequenceNumbersPerShard(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	s, _ := reg.CreateStream("events", 1)

	_, seq1, err := s.PutRecord("k1", []byte("a"))
	require.NoError(t, err)
	_, seq2, err := s.PutRecord("k1", []byte("b"))
	require.NoError(t, err)
	assert.Less(t, seq1, seq2)
}

func TestGetShardIteratorTrimHorizonAndGetRecords(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	s, _ := reg.CreateStream("events", 1)
	shardID := s.ShardIDs()[0]
	_, _, _ = s.PutRecord("k1", []byte("a"))
	_, _, _ = s.PutRecord("k1", []byte("b"))

	iter, err := reg.GetShardIterator("events", shardID, "TRIM_HORIZON", "")
	require.NoError(t, err)

	records, next, err := reg.GetRecords(iter, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []byte("a"), records[0].Data)
	assert.Equal(t, []byte("b"), records[1].Data)

	more, _, err := reg.GetRecords(next, 10)
	require.NoError(t, err)
	assert.Empty(t, more)
}

func TestGetShardIteratorLatestSkipsExistingRecords(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	s, _ := reg.CreateStream("events", 1)
	shardID := s.ShardIDs()[0]
	_, _, _ = s.PutRecord("k1", []byte("a"))

	iter, err := reg.GetShardIterator("events", shardID, "LATEST", "")
	require.NoError(t, err)

	records, _, err := reg.GetRecords(iter, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetRecordsUnknownIteratorIsInvalidArgument(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, _, err := reg.GetRecords("bogus", 10)
	require.Error(t, err)
}
