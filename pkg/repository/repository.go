// Copyright 2025 MRJCrunch
//
// Package repository publishes and serves the issuer's public artifacts:
// schemas, public keys, accumulators and tails. Backends are eventually
// consistent; the core never assumes freshness beyond what a fetch
// returned. The issuer is the sole writer.
package repository

import (
	"context"

	"github.com/MRJCrunch/anoncreds/pkg/types"
)

// Repository is the publication contract consumed by wallets and
// orchestrators. Publish calls assign sequence ids where the artifact
// carries one and return the stored value.
type Repository interface {
	PublishSchema(ctx context.Context, schema *types.Schema) (*types.Schema, error)
	GetSchema(ctx context.Context, key types.SchemaKey) (*types.Schema, error)
	GetSchemaBySeqNo(ctx context.Context, seqNo int) (*types.Schema, error)

	PublishPublicKey(ctx context.Context, key types.SchemaKey, pk *types.PublicKey) (*types.PublicKey, error)
	GetPublicKey(ctx context.Context, key types.SchemaKey) (*types.PublicKey, error)

	PublishRevocationPublicKey(ctx context.Context, key types.SchemaKey, pk *types.RevocationPublicKey) (*types.RevocationPublicKey, error)
	GetRevocationPublicKey(ctx context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error)

	PublishAccumulator(ctx context.Context, key types.SchemaKey, acc *types.Accumulator) error
	GetAccumulator(ctx context.Context, key types.SchemaKey) (*types.Accumulator, error)

	PublishAccumulatorPublicKey(ctx context.Context, key types.SchemaKey, accPK *types.AccumulatorPublicKey) error
	GetAccumulatorPublicKey(ctx context.Context, key types.SchemaKey) (*types.AccumulatorPublicKey, error)

	PublishTails(ctx context.Context, key types.SchemaKey, tails *types.Tails) error
	GetTails(ctx context.Context, key types.SchemaKey) (*types.Tails, error)
}
