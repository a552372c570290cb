// Package kinesis implements L3's Kinesis thin store (spec.md §4.4):
// streams divided into a fixed shard count, per-shard ordered record
// logs with monotonic sequence numbers, and shard iterators. Per Open
// Question 3 (SPEC_FULL.md), iterator tokens are opaque and never
// expire within a run — there is no background reaper.
package kinesis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// Record is one put record, assigned a monotonically increasing
// sequence number within its shard.
type Record struct {
	SequenceNumber string
	PartitionKey   string
	Data           []byte
}

type shard struct {
	id      string
	records []Record
	seq     uint64
}

// Stream is one Kinesis data stream: a fixed set of shards, each an
// independent append-only record log.
type Stream struct {
	mu     sync.RWMutex
	Name   string
	ARN    string
	shards []*shard
}

// Registry is the single in-memory Kinesis stream store.
type Registry struct {
	mu       sync.RWMutex
	streams  map[string]*Stream
	iters    map[string]iterState
	identity identity.Identity
	iterSeq  uint64
}

type iterState struct {
	streamName string
	shardID    string
	position   int
}

// NewRegistry constructs an empty Kinesis registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{
		streams:  map[string]*Stream{},
		iters:    map[string]iterState{},
		identity: id,
	}
}

// CreateStream creates a stream with shardCount shards, idempotent by
// name.
func (r *Registry) CreateStream(name string, shardCount int) (*Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.streams[name]; ok {
		return s, nil
	}
	if shardCount < 1 {
		shardCount = 1
	}
	s := &Stream{Name: name, ARN: r.identity.ARN("kinesis", "stream/"+name)}
	for i := 0; i < shardCount; i++ {
		s.shards = append(s.shards, &shard{id: fmt.Sprintf("shardId-%012d", i)})
	}
	r.streams[name] = s
	return s, nil
}

// Get returns a stream by name, NotFound if absent.
func (r *Registry) Get(name string) (*Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.streams[name]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Stream "+name+" under account not found")
	}
	return s, nil
}

// DeleteStream removes a stream; absent streams succeed silently.
func (r *Registry) DeleteStream(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, name)
}

// ListStreams returns every stream name, sorted.
func (r *Registry) ListStreams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.streams))
	for n := range r.streams {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ShardIDs returns the stream's shard IDs in order.
func (s *Stream) ShardIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.shards))
	for i, sh := range s.shards {
		ids[i] = sh.id
	}
	return ids
}

func (s *Stream) shardByID(id string) (*shard, error) {
	for _, sh := range s.shards {
		if sh.id == id {
			return sh, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "Could not find shard "+id)
}

// PutRecord hashes partitionKey's bytes onto a shard deterministically
// (a real stream uses the MD5 of the partition key against the hash key
// range; this emulator only needs a stable, even distribution) and
// appends data, returning the assigned shard and sequence number.
func (s *Stream) PutRecord(partitionKey string, data []byte) (shardID, sequenceNumber string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.shards) == 0 {
		return "", "", apperr.New(apperr.Internal, "stream has no shards")
	}
	idx := hashToShard(partitionKey, len(s.shards))
	sh := s.shards[idx]
	sh.seq++
	seq := fmt.Sprintf("%020d", sh.seq)
	sh.records = append(sh.records, Record{SequenceNumber: seq, PartitionKey: partitionKey, Data: data})
	return sh.id, seq, nil
}

func hashToShard(key string, n int) int {
	var h uint32
	for i := 0; i < len(key); i++ {
		h = h*31 + uint32(key[i])
	}
	return int(h) % n
}

// GetShardIterator resolves an iterator type (TRIM_HORIZON, LATEST,
// AT_SEQUENCE_NUMBER, AFTER_SEQUENCE_NUMBER) to a starting position and
// returns an opaque token for GetRecords.
func (r *Registry) GetShardIterator(streamName, shardID, iteratorType, startingSequenceNumber string) (string, error) {
	s, err := r.Get(streamName)
	if err != nil {
		return "", err
	}
	sh, err := s.shardByID(shardID)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	position := 0
	switch iteratorType {
	case "TRIM_HORIZON":
		position = 0
	case "LATEST":
		position = len(sh.records)
	case "AT_SEQUENCE_NUMBER", "AFTER_SEQUENCE_NUMBER":
		for i, rec := range sh.records {
			if rec.SequenceNumber == startingSequenceNumber {
				if iteratorType == "AT_SEQUENCE_NUMBER" {
					position = i
				} else {
					position = i + 1
				}
				break
			}
		}
	default:
		return "", apperr.New(apperr.InvalidArgument, "unsupported ShardIteratorType: "+iteratorType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.iterSeq++
	token := fmt.Sprintf("iter-%s-%s-%d", streamName, shardID, r.iterSeq)
	r.iters[token] = iterState{streamName: streamName, shardID: shardID, position: position}
	return token, nil
}

// GetRecords returns records at the iterator's position forward, along
// with the next iterator token to continue from.
func (r *Registry) GetRecords(iterator string, limit int) (records []Record, nextIterator string, err error) {
	r.mu.RLock()
	state, ok := r.iters[iterator]
	r.mu.RUnlock()
	if !ok {
		return nil, "", apperr.New(apperr.InvalidArgument, "shard iterator has expired or is invalid")
	}

	s, err := r.Get(state.streamName)
	if err != nil {
		return nil, "", err
	}
	sh, err := s.shardByID(state.shardID)
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	end := len(sh.records)
	if limit > 0 && state.position+limit < end {
		end = state.position + limit
	}
	if state.position < len(sh.records) {
		records = append(records, sh.records[state.position:end]...)
	}
	s.mu.RUnlock()

	r.mu.Lock()
	r.iterSeq++
	next := fmt.Sprintf("iter-%s-%s-%d", state.streamName, state.shardID, r.iterSeq)
	r.iters[next] = iterState{streamName: state.streamName, shardID: state.shardID, position: end}
	r.mu.Unlock()

	return records, next, nil
}
