// Copyright 2025 MRJCrunch
//
// Prover-side behavior: claim processing and idempotence, witness
// synchronization against the accumulator, and claim selection.

package prover_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/issuer"
	"github.com/MRJCrunch/anoncreds/pkg/prover"
	"github.com/MRJCrunch/anoncreds/pkg/repository"
	"github.com/MRJCrunch/anoncreds/pkg/types"
	"github.com/MRJCrunch/anoncreds/pkg/wallet"
)

var gvtKey = types.SchemaKey{Name: "GVT", Version: "1.0", IssuerID: "issuer1"}

var gvtAttrs = map[string]string{
	"name":   "Alex",
	"age":    "28",
	"height": "175",
	"sex":    "male",
}

type testEnv struct {
	ctx     context.Context
	repo    *repository.MemoryRepository
	issuer  *issuer.Issuer
	issuerW *wallet.InMemoryWallet
	prover  *prover.Prover
	proverW *wallet.InMemoryWallet
}

func setupGVT(t *testing.T, withRevocation bool) *testEnv {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemoryRepository()

	issuerW := wallet.NewInMemoryWallet("issuer1", repo)
	iss := issuer.New(issuerW, repo)

	_, err := iss.CreateSchema(ctx, gvtKey, []string{"name", "age", "height", "sex"})
	require.NoError(t, err)
	_, err = iss.GenKeys(ctx, gvtKey, issuer.GenKeysOptions{P: cl.TestPrimes1P, Q: cl.TestPrimes1Q})
	require.NoError(t, err)
	if withRevocation {
		_, err = iss.GenRevocationKeys(ctx, gvtKey)
		require.NoError(t, err)
		_, err = iss.IssueAccumulator(ctx, gvtKey, "110", 5)
		require.NoError(t, err)
	}
	_, err = iss.AddAttributes(ctx, gvtKey, "BzfFCYk", gvtAttrs)
	require.NoError(t, err)

	proverW := wallet.NewInMemoryWallet("BzfFCYk", repo)
	p := prover.New(proverW)

	return &testEnv{ctx: ctx, repo: repo, issuer: iss, issuerW: issuerW, prover: p, proverW: proverW}
}

func issueAndProcess(t *testing.T, env *testEnv, reqNonRevoc bool) (*types.Claims, types.Attributes) {
	t.Helper()
	req, err := env.prover.CreateClaimRequest(env.ctx, gvtKey, "", reqNonRevoc)
	require.NoError(t, err)
	claims, attrs, err := env.issuer.IssueClaim(env.ctx, gvtKey, req)
	require.NoError(t, err)
	require.NoError(t, env.prover.ProcessClaim(env.ctx, gvtKey, attrs, claims))
	return claims, attrs
}

func TestProcessClaimFoldsBlinds(t *testing.T) {
	env := setupGVT(t, true)
	claims, _ := issueAndProcess(t, env, true)

	stored, err := env.proverW.GetClaimSignature(env.ctx, gvtKey)
	require.NoError(t, err)

	initData, err := env.proverW.GetPrimaryClaimInitData(env.ctx, gvtKey)
	require.NoError(t, err)
	expectedV := new(big.Int).Add(initData.VPrime, claims.Primary.V)
	assert.Zero(t, stored.Primary.V.Cmp(expectedV))

	nrInit, err := env.proverW.GetNonRevocClaimInitData(env.ctx, gvtKey)
	require.NoError(t, err)
	expectedVR := new(big.Int).Add(nrInit.VPrime, claims.NonRevoc.V)
	expectedVR.Mod(expectedVR, pairing.GroupOrder())
	assert.Zero(t, stored.NonRevoc.V.Cmp(expectedVR))
}

func TestProcessClaimIsIdempotent(t *testing.T) {
	env := setupGVT(t, false)
	claims, attrs := issueAndProcess(t, env, false)

	first, err := env.proverW.GetClaimSignature(env.ctx, gvtKey)
	require.NoError(t, err)

	require.NoError(t, env.prover.ProcessClaim(env.ctx, gvtKey, attrs, claims))
	second, err := env.proverW.GetClaimSignature(env.ctx, gvtKey)
	require.NoError(t, err)

	assert.Equal(t, first.Primary.ToStrDict(), second.Primary.ToStrDict())
}

func TestWitnessStaysPutWhenInSync(t *testing.T) {
	env := setupGVT(t, true)
	issueAndProcess(t, env, true)

	stored, err := env.proverW.GetClaimSignature(env.ctx, gvtKey)
	require.NoError(t, err)
	oldOmega := stored.NonRevoc.Witness.Omega

	updated, err := env.prover.UpdateWitness(env.ctx, gvtKey, stored.NonRevoc)
	require.NoError(t, err)
	assert.True(t, oldOmega.Equal(updated.Witness.Omega))
}

func TestWitnessRepairsAfterForeignRevocation(t *testing.T) {
	env := setupGVT(t, true)
	issueAndProcess(t, env, true)

	// a second holder occupies index 2, then loses it
	otherW := wallet.NewInMemoryWallet("other", env.repo)
	other := prover.New(otherW)
	_, err := env.issuer.AddAttributes(env.ctx, gvtKey, "other", gvtAttrs)
	require.NoError(t, err)
	req, err := other.CreateClaimRequest(env.ctx, gvtKey, "", true)
	require.NoError(t, err)
	_, _, err = env.issuer.IssueClaim(env.ctx, gvtKey, req)
	require.NoError(t, err)

	stored, err := env.proverW.GetClaimSignature(env.ctx, gvtKey)
	require.NoError(t, err)
	// bring the witness up to V = {1, 2} so that the revocation touches it
	synced, err := env.prover.UpdateWitness(env.ctx, gvtKey, stored.NonRevoc)
	require.NoError(t, err)
	oldOmega := synced.Witness.Omega

	require.NoError(t, env.issuer.Revoke(env.ctx, gvtKey, 2))

	updated, err := env.prover.UpdateWitness(env.ctx, gvtKey, synced)
	require.NoError(t, err)

	acc, err := env.proverW.GetAccumulator(env.ctx, gvtKey)
	require.NoError(t, err)
	assert.True(t, updated.Witness.V.Equal(acc.V))
	assert.False(t, oldOmega.Equal(updated.Witness.Omega), "omega must change after a V change")
}

func TestUpdateWitnessAfterOwnRevocation(t *testing.T) {
	env := setupGVT(t, true)
	issueAndProcess(t, env, true)

	require.NoError(t, env.issuer.Revoke(env.ctx, gvtKey, 1))

	stored, err := env.proverW.GetClaimSignature(env.ctx, gvtKey)
	require.NoError(t, err)
	_, err = env.prover.UpdateWitness(env.ctx, gvtKey, stored.NonRevoc)
	require.Error(t, err)
	assert.True(t, errors.IsRevoked(err))
}

func TestPresentProofWithoutMatchingClaim(t *testing.T) {
	env := setupGVT(t, false)
	issueAndProcess(t, env, false)

	nonce, err := cl.RandomBits(cl.LargeNonce)
	require.NoError(t, err)
	input := &types.ProofInput{
		Nonce: nonce,
		RevealedAttrs: map[string]types.AttributeInfo{
			"uuid-1": {Name: "citizenship"},
		},
		Predicates: map[string]types.PredicateGE{},
	}
	_, err = env.prover.PresentProof(env.ctx, input)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
