// Copyright 2025 MRJCrunch
//
// Package wallet is the persistence contract of the protocol core. A
// wallet maps schema identifiers to the party's secret state and to its
// view of the issuer's published artifacts. The wallet performs no
// cryptography; lookups that miss return a NotFound error.
package wallet

import (
	"context"
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/types"
)

// Wallet is the shared-read surface every party holds: schemas, keys,
// accumulator state and tails, keyed by schema.
type Wallet interface {
	GetSchema(ctx context.Context, key types.SchemaKey) (*types.Schema, error)
	GetSchemaBySeqNo(ctx context.Context, seqNo int) (*types.Schema, error)
	SubmitSchema(ctx context.Context, schema *types.Schema) error

	GetPublicKey(ctx context.Context, key types.SchemaKey) (*types.PublicKey, error)
	SubmitPublicKey(ctx context.Context, key types.SchemaKey, pk *types.PublicKey) error

	GetRevocationPublicKey(ctx context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error)
	SubmitRevocationPublicKey(ctx context.Context, key types.SchemaKey, pk *types.RevocationPublicKey) error

	GetAccumulator(ctx context.Context, key types.SchemaKey) (*types.Accumulator, error)
	SubmitAccumulator(ctx context.Context, key types.SchemaKey, acc *types.Accumulator) error

	GetAccumulatorPublicKey(ctx context.Context, key types.SchemaKey) (*types.AccumulatorPublicKey, error)
	SubmitAccumulatorPublicKey(ctx context.Context, key types.SchemaKey, accPK *types.AccumulatorPublicKey) error

	GetTails(ctx context.Context, key types.SchemaKey) (*types.Tails, error)
	SubmitTails(ctx context.Context, key types.SchemaKey, tails *types.Tails) error
}

// ProverWallet additionally owns the prover's master secret, claim
// blinds and received claims.
type ProverWallet interface {
	Wallet

	WalletID() string

	SubmitMasterSecret(ctx context.Context, key types.SchemaKey, ms *big.Int) error
	GetMasterSecret(ctx context.Context, key types.SchemaKey) (*big.Int, error)

	SubmitPrimaryClaimInitData(ctx context.Context, key types.SchemaKey, data *types.ClaimInitData) error
	GetPrimaryClaimInitData(ctx context.Context, key types.SchemaKey) (*types.ClaimInitData, error)

	SubmitNonRevocClaimInitData(ctx context.Context, key types.SchemaKey, data *types.NonRevocClaimInitData) error
	GetNonRevocClaimInitData(ctx context.Context, key types.SchemaKey) (*types.NonRevocClaimInitData, error)

	SubmitContextAttr(ctx context.Context, key types.SchemaKey, m2 *big.Int) error
	GetContextAttr(ctx context.Context, key types.SchemaKey) (*big.Int, error)

	SubmitClaimAttributes(ctx context.Context, key types.SchemaKey, attrs types.Attributes) error
	GetClaimAttributes(ctx context.Context, key types.SchemaKey) (types.Attributes, error)
	GetAllClaimAttributes(ctx context.Context) (map[types.SchemaKey]types.Attributes, error)

	SubmitPrimaryClaim(ctx context.Context, key types.SchemaKey, claim *types.PrimaryClaim) error
	SubmitNonRevocClaim(ctx context.Context, key types.SchemaKey, claim *types.NonRevocationClaim) error
	GetClaimSignature(ctx context.Context, key types.SchemaKey) (*types.Claims, error)
}

// IssuerWallet additionally owns the issuer's secret keys, the
// accumulator trapdoor and the attribute vectors it signs.
type IssuerWallet interface {
	Wallet

	SubmitSecretKey(ctx context.Context, key types.SchemaKey, sk *types.SecretKey) error
	GetSecretKey(ctx context.Context, key types.SchemaKey) (*types.SecretKey, error)

	SubmitRevocationSecretKey(ctx context.Context, key types.SchemaKey, sk *types.RevocationSecretKey) error
	GetRevocationSecretKey(ctx context.Context, key types.SchemaKey) (*types.RevocationSecretKey, error)

	SubmitAccumulatorSecretKey(ctx context.Context, key types.SchemaKey, sk *types.AccumulatorSecretKey) error
	GetAccumulatorSecretKey(ctx context.Context, key types.SchemaKey) (*types.AccumulatorSecretKey, error)

	SubmitAttributes(ctx context.Context, key types.SchemaKey, userID string, attrs types.Attributes) error
	GetAttributes(ctx context.Context, key types.SchemaKey, userID string) (types.Attributes, error)

	SubmitContextAttr(ctx context.Context, key types.SchemaKey, m2 *big.Int) error
	GetContextAttr(ctx context.Context, key types.SchemaKey) (*big.Int, error)
}
