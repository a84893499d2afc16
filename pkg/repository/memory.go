// Copyright 2025 MRJCrunch

package repository

import (
	"context"
	"sync"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

// MemoryRepository is the in-process backend used by tests and demos.
type MemoryRepository struct {
	mu sync.RWMutex

	seqCounter int
	schemas    map[types.SchemaKey]*types.Schema
	pks        map[types.SchemaKey]*types.PublicKey
	revPKs     map[types.SchemaKey]*types.RevocationPublicKey
	accums     map[types.SchemaKey]*types.Accumulator
	accumPKs   map[types.SchemaKey]*types.AccumulatorPublicKey
	tails      map[types.SchemaKey]*types.Tails
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		schemas:  map[types.SchemaKey]*types.Schema{},
		pks:      map[types.SchemaKey]*types.PublicKey{},
		revPKs:   map[types.SchemaKey]*types.RevocationPublicKey{},
		accums:   map[types.SchemaKey]*types.Accumulator{},
		accumPKs: map[types.SchemaKey]*types.AccumulatorPublicKey{},
		tails:    map[types.SchemaKey]*types.Tails{},
	}
}

// PublishSchema stores the schema, assigning a sequence id if unset.
func (r *MemoryRepository) PublishSchema(_ context.Context, schema *types.Schema) (*types.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if schema.SeqID == 0 {
		r.seqCounter++
		schema.SeqID = r.seqCounter
	}
	r.schemas[schema.SchemaKey] = schema
	return schema, nil
}

// GetSchema fetches a schema by key.
func (r *MemoryRepository) GetSchema(_ context.Context, key types.SchemaKey) (*types.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[key]
	if !ok {
		return nil, errors.NotFound("schema %s/%s not published", key.Name, key.Version)
	}
	return s, nil
}

// GetSchemaBySeqNo fetches a schema by its assigned sequence id.
func (r *MemoryRepository) GetSchemaBySeqNo(_ context.Context, seqNo int) (*types.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.schemas {
		if s.SeqID == seqNo {
			return s, nil
		}
	}
	return nil, errors.NotFound("no schema with sequence id %d", seqNo)
}

// PublishPublicKey stores the issuer public key for a schema.
func (r *MemoryRepository) PublishPublicKey(_ context.Context, key types.SchemaKey, pk *types.PublicKey) (*types.PublicKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pk.SeqID == 0 {
		r.seqCounter++
		pk.SeqID = r.seqCounter
	}
	r.pks[key] = pk
	return pk, nil
}

// GetPublicKey fetches the issuer public key for a schema.
func (r *MemoryRepository) GetPublicKey(_ context.Context, key types.SchemaKey) (*types.PublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pk, ok := r.pks[key]
	if !ok {
		return nil, errors.NotFound("no public key published for schema %s/%s", key.Name, key.Version)
	}
	return pk, nil
}

// PublishRevocationPublicKey stores the revocation public key.
func (r *MemoryRepository) PublishRevocationPublicKey(_ context.Context, key types.SchemaKey, pk *types.RevocationPublicKey) (*types.RevocationPublicKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pk.SeqID == 0 {
		r.seqCounter++
		pk.SeqID = r.seqCounter
	}
	r.revPKs[key] = pk
	return pk, nil
}

// GetRevocationPublicKey fetches the revocation public key.
func (r *MemoryRepository) GetRevocationPublicKey(_ context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pk, ok := r.revPKs[key]
	if !ok {
		return nil, errors.NotFound("no revocation key published for schema %s/%s", key.Name, key.Version)
	}
	return pk, nil
}

// PublishAccumulator stores the current accumulator snapshot.
func (r *MemoryRepository) PublishAccumulator(_ context.Context, key types.SchemaKey, acc *types.Accumulator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accums[key] = acc
	return nil
}

// GetAccumulator fetches the current accumulator snapshot.
func (r *MemoryRepository) GetAccumulator(_ context.Context, key types.SchemaKey) (*types.Accumulator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accums[key]
	if !ok {
		return nil, errors.NotFound("no accumulator published for schema %s/%s", key.Name, key.Version)
	}
	return acc, nil
}

// PublishAccumulatorPublicKey stores the accumulator public key.
func (r *MemoryRepository) PublishAccumulatorPublicKey(_ context.Context, key types.SchemaKey, accPK *types.AccumulatorPublicKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accumPKs[key] = accPK
	return nil
}

// GetAccumulatorPublicKey fetches the accumulator public key.
func (r *MemoryRepository) GetAccumulatorPublicKey(_ context.Context, key types.SchemaKey) (*types.AccumulatorPublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pk, ok := r.accumPKs[key]
	if !ok {
		return nil, errors.NotFound("no accumulator key published for schema %s/%s", key.Name, key.Version)
	}
	return pk, nil
}

// PublishTails stores the tails sequence.
func (r *MemoryRepository) PublishTails(_ context.Context, key types.SchemaKey, tails *types.Tails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tails[key] = tails
	return nil
}

// GetTails fetches the tails sequence.
func (r *MemoryRepository) GetTails(_ context.Context, key types.SchemaKey) (*types.Tails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tails[key]
	if !ok {
		return nil, errors.NotFound("no tails published for schema %s/%s", key.Name, key.Version)
	}
	return t, nil
}
