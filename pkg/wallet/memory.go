// Copyright 2025 MRJCrunch

package wallet

import (
	"context"
	"math/big"
	"sync"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/repository"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

type userKey struct {
	schema types.SchemaKey
	userID string
}

// InMemoryWallet keeps all state in process. Published artifacts read
// through the attached repository on a local miss; the accumulator and
// its public key always read through, since witness freshness against
// the current accumulator is what non-revocation proofs are about.
type InMemoryWallet struct {
	mu sync.RWMutex

	walletID string
	repo     repository.Repository

	schemas  map[types.SchemaKey]*types.Schema
	pks      map[types.SchemaKey]*types.PublicKey
	revPKs   map[types.SchemaKey]*types.RevocationPublicKey
	accums   map[types.SchemaKey]*types.Accumulator
	accumPKs map[types.SchemaKey]*types.AccumulatorPublicKey
	tails    map[types.SchemaKey]*types.Tails

	masterSecrets    map[types.SchemaKey]*big.Int
	primaryInitData  map[types.SchemaKey]*types.ClaimInitData
	nonRevocInitData map[types.SchemaKey]*types.NonRevocClaimInitData
	contextAttrs     map[types.SchemaKey]*big.Int
	claimAttrs       map[types.SchemaKey]types.Attributes
	primaryClaims    map[types.SchemaKey]*types.PrimaryClaim
	nonRevocClaims   map[types.SchemaKey]*types.NonRevocationClaim

	secretKeys      map[types.SchemaKey]*types.SecretKey
	revSecretKeys   map[types.SchemaKey]*types.RevocationSecretKey
	accumSecretKeys map[types.SchemaKey]*types.AccumulatorSecretKey
	issuedAttrs     map[userKey]types.Attributes
}

// NewInMemoryWallet returns a wallet for the given party. repo may be
// nil for self-contained setups.
func NewInMemoryWallet(walletID string, repo repository.Repository) *InMemoryWallet {
	return &InMemoryWallet{
		walletID:         walletID,
		repo:             repo,
		schemas:          map[types.SchemaKey]*types.Schema{},
		pks:              map[types.SchemaKey]*types.PublicKey{},
		revPKs:           map[types.SchemaKey]*types.RevocationPublicKey{},
		accums:           map[types.SchemaKey]*types.Accumulator{},
		accumPKs:         map[types.SchemaKey]*types.AccumulatorPublicKey{},
		tails:            map[types.SchemaKey]*types.Tails{},
		masterSecrets:    map[types.SchemaKey]*big.Int{},
		primaryInitData:  map[types.SchemaKey]*types.ClaimInitData{},
		nonRevocInitData: map[types.SchemaKey]*types.NonRevocClaimInitData{},
		contextAttrs:     map[types.SchemaKey]*big.Int{},
		claimAttrs:       map[types.SchemaKey]types.Attributes{},
		primaryClaims:    map[types.SchemaKey]*types.PrimaryClaim{},
		nonRevocClaims:   map[types.SchemaKey]*types.NonRevocationClaim{},
		secretKeys:       map[types.SchemaKey]*types.SecretKey{},
		revSecretKeys:    map[types.SchemaKey]*types.RevocationSecretKey{},
		accumSecretKeys:  map[types.SchemaKey]*types.AccumulatorSecretKey{},
		issuedAttrs:      map[userKey]types.Attributes{},
	}
}

// WalletID returns the owning party's identifier.
func (w *InMemoryWallet) WalletID() string { return w.walletID }

// --- shared-read records ---

// GetSchema returns the schema, reading through the repository on a miss.
func (w *InMemoryWallet) GetSchema(ctx context.Context, key types.SchemaKey) (*types.Schema, error) {
	w.mu.RLock()
	s, ok := w.schemas[key]
	w.mu.RUnlock()
	if ok {
		return s, nil
	}
	if w.repo != nil {
		s, err := w.repo.GetSchema(ctx, key)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.schemas[key] = s
		w.mu.Unlock()
		return s, nil
	}
	return nil, errors.NotFound("schema %s/%s not in wallet", key.Name, key.Version)
}

// GetSchemaBySeqNo returns the schema carrying the given sequence id.
func (w *InMemoryWallet) GetSchemaBySeqNo(ctx context.Context, seqNo int) (*types.Schema, error) {
	w.mu.RLock()
	for _, s := range w.schemas {
		if s.SeqID == seqNo {
			w.mu.RUnlock()
			return s, nil
		}
	}
	w.mu.RUnlock()
	if w.repo != nil {
		s, err := w.repo.GetSchemaBySeqNo(ctx, seqNo)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.schemas[s.SchemaKey] = s
		w.mu.Unlock()
		return s, nil
	}
	return nil, errors.NotFound("no schema with sequence id %d in wallet", seqNo)
}

// SubmitSchema stores the schema locally.
func (w *InMemoryWallet) SubmitSchema(_ context.Context, schema *types.Schema) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.schemas[schema.SchemaKey] = schema
	return nil
}

// GetPublicKey returns the issuer public key for a schema.
func (w *InMemoryWallet) GetPublicKey(ctx context.Context, key types.SchemaKey) (*types.PublicKey, error) {
	w.mu.RLock()
	pk, ok := w.pks[key]
	w.mu.RUnlock()
	if ok {
		return pk, nil
	}
	if w.repo != nil {
		pk, err := w.repo.GetPublicKey(ctx, key)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.pks[key] = pk
		w.mu.Unlock()
		return pk, nil
	}
	return nil, errors.NotFound("no public key for schema %s/%s in wallet", key.Name, key.Version)
}

// SubmitPublicKey stores the issuer public key locally.
func (w *InMemoryWallet) SubmitPublicKey(_ context.Context, key types.SchemaKey, pk *types.PublicKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pks[key] = pk
	return nil
}

// GetRevocationPublicKey returns the revocation public key for a schema.
func (w *InMemoryWallet) GetRevocationPublicKey(ctx context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error) {
	w.mu.RLock()
	pk, ok := w.revPKs[key]
	w.mu.RUnlock()
	if ok {
		return pk, nil
	}
	if w.repo != nil {
		pk, err := w.repo.GetRevocationPublicKey(ctx, key)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.revPKs[key] = pk
		w.mu.Unlock()
		return pk, nil
	}
	return nil, errors.NotFound("no revocation key for schema %s/%s in wallet", key.Name, key.Version)
}

// SubmitRevocationPublicKey stores the revocation public key locally.
func (w *InMemoryWallet) SubmitRevocationPublicKey(_ context.Context, key types.SchemaKey, pk *types.RevocationPublicKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.revPKs[key] = pk
	return nil
}

// GetAccumulator returns the accumulator. With a repository attached the
// published snapshot always wins over the local copy.
func (w *InMemoryWallet) GetAccumulator(ctx context.Context, key types.SchemaKey) (*types.Accumulator, error) {
	if w.repo != nil {
		acc, err := w.repo.GetAccumulator(ctx, key)
		if err == nil {
			return acc, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	acc, ok := w.accums[key]
	if !ok {
		return nil, errors.NotFound("no accumulator for schema %s/%s in wallet", key.Name, key.Version)
	}
	return acc, nil
}

// SubmitAccumulator stores the accumulator locally.
func (w *InMemoryWallet) SubmitAccumulator(_ context.Context, key types.SchemaKey, acc *types.Accumulator) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accums[key] = acc
	return nil
}

// GetAccumulatorPublicKey returns the accumulator public key, preferring
// the published value.
func (w *InMemoryWallet) GetAccumulatorPublicKey(ctx context.Context, key types.SchemaKey) (*types.AccumulatorPublicKey, error) {
	if w.repo != nil {
		pk, err := w.repo.GetAccumulatorPublicKey(ctx, key)
		if err == nil {
			return pk, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	pk, ok := w.accumPKs[key]
	if !ok {
		return nil, errors.NotFound("no accumulator key for schema %s/%s in wallet", key.Name, key.Version)
	}
	return pk, nil
}

// SubmitAccumulatorPublicKey stores the accumulator public key locally.
func (w *InMemoryWallet) SubmitAccumulatorPublicKey(_ context.Context, key types.SchemaKey, accPK *types.AccumulatorPublicKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accumPKs[key] = accPK
	return nil
}

// GetTails returns the tails sequence.
func (w *InMemoryWallet) GetTails(ctx context.Context, key types.SchemaKey) (*types.Tails, error) {
	w.mu.RLock()
	t, ok := w.tails[key]
	w.mu.RUnlock()
	if ok {
		return t, nil
	}
	if w.repo != nil {
		t, err := w.repo.GetTails(ctx, key)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.tails[key] = t
		w.mu.Unlock()
		return t, nil
	}
	return nil, errors.NotFound("no tails for schema %s/%s in wallet", key.Name, key.Version)
}

// SubmitTails stores the tails sequence locally.
func (w *InMemoryWallet) SubmitTails(_ context.Context, key types.SchemaKey, tails *types.Tails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tails[key] = tails
	return nil
}

// --- prover records ---

// SubmitMasterSecret stores the master secret for a schema.
func (w *InMemoryWallet) SubmitMasterSecret(_ context.Context, key types.SchemaKey, ms *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.masterSecrets[key] = ms
	return nil
}

// GetMasterSecret returns the master secret for a schema.
func (w *InMemoryWallet) GetMasterSecret(_ context.Context, key types.SchemaKey) (*big.Int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ms, ok := w.masterSecrets[key]
	if !ok {
		return nil, errors.NotFound("no master secret for schema %s/%s", key.Name, key.Version)
	}
	return ms, nil
}

// SubmitPrimaryClaimInitData stores the primary claim blinds.
func (w *InMemoryWallet) SubmitPrimaryClaimInitData(_ context.Context, key types.SchemaKey, data *types.ClaimInitData) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.primaryInitData[key] = data
	return nil
}

// GetPrimaryClaimInitData returns the primary claim blinds.
func (w *InMemoryWallet) GetPrimaryClaimInitData(_ context.Context, key types.SchemaKey) (*types.ClaimInitData, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	d, ok := w.primaryInitData[key]
	if !ok {
		return nil, errors.NotFound("no primary claim init data for schema %s/%s", key.Name, key.Version)
	}
	return d, nil
}

// SubmitNonRevocClaimInitData stores the non-revocation blinds.
func (w *InMemoryWallet) SubmitNonRevocClaimInitData(_ context.Context, key types.SchemaKey, data *types.NonRevocClaimInitData) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nonRevocInitData[key] = data
	return nil
}

// GetNonRevocClaimInitData returns the non-revocation blinds.
func (w *InMemoryWallet) GetNonRevocClaimInitData(_ context.Context, key types.SchemaKey) (*types.NonRevocClaimInitData, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	d, ok := w.nonRevocInitData[key]
	if !ok {
		return nil, errors.NotFound("no non-revocation claim init data for schema %s/%s", key.Name, key.Version)
	}
	return d, nil
}

// SubmitContextAttr stores the issuer-chosen context attribute m2.
func (w *InMemoryWallet) SubmitContextAttr(_ context.Context, key types.SchemaKey, m2 *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.contextAttrs[key] = m2
	return nil
}

// GetContextAttr returns the context attribute m2.
func (w *InMemoryWallet) GetContextAttr(_ context.Context, key types.SchemaKey) (*big.Int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m2, ok := w.contextAttrs[key]
	if !ok {
		return nil, errors.NotFound("no context attribute for schema %s/%s", key.Name, key.Version)
	}
	return m2, nil
}

// SubmitClaimAttributes stores the raw and encoded attribute values of a
// received claim.
func (w *InMemoryWallet) SubmitClaimAttributes(_ context.Context, key types.SchemaKey, attrs types.Attributes) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.claimAttrs[key] = attrs
	return nil
}

// GetClaimAttributes returns the stored attribute values of a claim.
func (w *InMemoryWallet) GetClaimAttributes(_ context.Context, key types.SchemaKey) (types.Attributes, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	attrs, ok := w.claimAttrs[key]
	if !ok {
		return nil, errors.NotFound("no claim attributes for schema %s/%s", key.Name, key.Version)
	}
	return attrs, nil
}

// GetAllClaimAttributes enumerates the attribute values of every claim.
func (w *InMemoryWallet) GetAllClaimAttributes(_ context.Context) (map[types.SchemaKey]types.Attributes, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[types.SchemaKey]types.Attributes, len(w.claimAttrs))
	for k, v := range w.claimAttrs {
		out[k] = v
	}
	return out, nil
}

// SubmitPrimaryClaim stores the processed primary claim.
func (w *InMemoryWallet) SubmitPrimaryClaim(_ context.Context, key types.SchemaKey, claim *types.PrimaryClaim) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.primaryClaims[key] = claim
	return nil
}

// SubmitNonRevocClaim stores the processed non-revocation claim.
func (w *InMemoryWallet) SubmitNonRevocClaim(_ context.Context, key types.SchemaKey, claim *types.NonRevocationClaim) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nonRevocClaims[key] = claim
	return nil
}

// GetClaimSignature returns the stored claim pair for a schema.
func (w *InMemoryWallet) GetClaimSignature(_ context.Context, key types.SchemaKey) (*types.Claims, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	primary, ok := w.primaryClaims[key]
	if !ok {
		return nil, errors.NotFound("no claim for schema %s/%s", key.Name, key.Version)
	}
	return &types.Claims{Primary: primary, NonRevoc: w.nonRevocClaims[key]}, nil
}

// --- issuer records ---

// SubmitSecretKey stores the CL secret key.
func (w *InMemoryWallet) SubmitSecretKey(_ context.Context, key types.SchemaKey, sk *types.SecretKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.secretKeys[key] = sk
	return nil
}

// GetSecretKey returns the CL secret key.
func (w *InMemoryWallet) GetSecretKey(_ context.Context, key types.SchemaKey) (*types.SecretKey, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sk, ok := w.secretKeys[key]
	if !ok {
		return nil, errors.NotFound("no secret key for schema %s/%s", key.Name, key.Version)
	}
	return sk, nil
}

// SubmitRevocationSecretKey stores the revocation secret key.
func (w *InMemoryWallet) SubmitRevocationSecretKey(_ context.Context, key types.SchemaKey, sk *types.RevocationSecretKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.revSecretKeys[key] = sk
	return nil
}

// GetRevocationSecretKey returns the revocation secret key.
func (w *InMemoryWallet) GetRevocationSecretKey(_ context.Context, key types.SchemaKey) (*types.RevocationSecretKey, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sk, ok := w.revSecretKeys[key]
	if !ok {
		return nil, errors.NotFound("no revocation secret key for schema %s/%s", key.Name, key.Version)
	}
	return sk, nil
}

// SubmitAccumulatorSecretKey stores the tails trapdoor.
func (w *InMemoryWallet) SubmitAccumulatorSecretKey(_ context.Context, key types.SchemaKey, sk *types.AccumulatorSecretKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accumSecretKeys[key] = sk
	return nil
}

// GetAccumulatorSecretKey returns the tails trapdoor.
func (w *InMemoryWallet) GetAccumulatorSecretKey(_ context.Context, key types.SchemaKey) (*types.AccumulatorSecretKey, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sk, ok := w.accumSecretKeys[key]
	if !ok {
		return nil, errors.NotFound("no accumulator secret key for schema %s/%s", key.Name, key.Version)
	}
	return sk, nil
}

// SubmitAttributes stores an attribute vector to sign for a user.
func (w *InMemoryWallet) SubmitAttributes(_ context.Context, key types.SchemaKey, userID string, attrs types.Attributes) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issuedAttrs[userKey{schema: key, userID: userID}] = attrs
	return nil
}

// GetAttributes returns a user's attribute vector.
func (w *InMemoryWallet) GetAttributes(_ context.Context, key types.SchemaKey, userID string) (types.Attributes, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	attrs, ok := w.issuedAttrs[userKey{schema: key, userID: userID}]
	if !ok {
		return nil, errors.NotFound("no attributes for user %s under schema %s/%s", userID, key.Name, key.Version)
	}
	return attrs, nil
}
