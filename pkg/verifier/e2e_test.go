// Copyright 2025 MRJCrunch
//
// End-to-end scenarios over the full issue / prove / verify pipeline:
// selective disclosure, >= predicates, revocation with fresh and stale
// witnesses, and aggregation of two schemas under one challenge.

package verifier_test

import (
	"context"
	"math/big"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/issuer"
	"github.com/MRJCrunch/anoncreds/pkg/prover"
	"github.com/MRJCrunch/anoncreds/pkg/repository"
	"github.com/MRJCrunch/anoncreds/pkg/types"
	"github.com/MRJCrunch/anoncreds/pkg/ucrypto"
	"github.com/MRJCrunch/anoncreds/pkg/verifier"
	"github.com/MRJCrunch/anoncreds/pkg/wallet"
)

var (
	gvtKey = types.SchemaKey{Name: "GVT", Version: "1.0", IssuerID: "issuer1"}
	xyzKey = types.SchemaKey{Name: "XYZCorp", Version: "1.0", IssuerID: "issuer2"}

	gvtAttrs = map[string]string{
		"name":   "Alex",
		"age":    "28",
		"height": "175",
		"sex":    "male",
	}
	xyzAttrs = map[string]string{
		"status": "partial",
		"period": "8",
	}
)

type env struct {
	ctx       context.Context
	repo      *repository.MemoryRepository
	issuerGvt *issuer.Issuer
	prover    *prover.Prover
	proverW   *wallet.InMemoryWallet
	verifier  *verifier.Verifier
	gvtSchema *types.Schema
}

func setup(t *testing.T, withRevocation bool) *env {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemoryRepository()

	issuerW := wallet.NewInMemoryWallet("issuer1", repo)
	iss := issuer.New(issuerW, repo)

	schema, err := iss.CreateSchema(ctx, gvtKey, []string{"name", "age", "height", "sex"})
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

	verifierW := wallet.NewInMemoryWallet("verifier1", repo)
	v := verifier.New(verifierW)

	return &env{
		ctx:       ctx,
		repo:      repo,
		issuerGvt: iss,
		prover:    p,
		proverW:   proverW,
		verifier:  v,
		gvtSchema: schema,
	}
}

func (e *env) issueGVT(t *testing.T, reqNonRevoc bool) {
	t.Helper()
	req, err := e.prover.CreateClaimRequest(e.ctx, gvtKey, "", reqNonRevoc)
	require.NoError(t, err)
	claims, attrs, err := e.issuerGvt.IssueClaim(e.ctx, gvtKey, req)
	require.NoError(t, err)
	require.NoError(t, e.prover.ProcessClaim(e.ctx, gvtKey, attrs, claims))
}

func proofInput(t *testing.T, v *verifier.Verifier, revealed []types.AttributeInfo, predicates []types.PredicateGE) *types.ProofInput {
	t.Helper()
	input, err := v.NewProofInput("proof1", "1.0", revealed, predicates)
	require.NoError(t, err)
	return input
}

func TestHappyPathPrimaryOnly(t *testing.T) {
	e := setup(t, false)
	e.issueGVT(t, false)

	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}},
		[]types.PredicateGE{{AttrName: "age", Value: 18}})

	proof, err := e.prover.PresentProof(e.ctx, input)
	require.NoError(t, err)

	ok, err := e.verifier.Verify(e.ctx, input, proof)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("revealed attribute echoes schema, raw and encoded forms", func(t *testing.T) {
		require.Len(t, proof.RequestedProof.RevealedAttrs, 1)
		for _, triple := range proof.RequestedProof.RevealedAttrs {
			assert.Equal(t, strconv.Itoa(e.gvtSchema.SeqID), triple[0])
			assert.Equal(t, "Alex", triple[1])
			assert.Equal(t, ucrypto.EncodeAttr("Alex").Text(10), triple[2])
		}
	})

	t.Run("proof survives the wire", func(t *testing.T) {
		decoded, err := types.FullProofFromStrDict(proof.ToStrDict())
		require.NoError(t, err)
		ok, err := e.verifier.Verify(e.ctx, input, decoded)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestPredicateNotSatisfiable(t *testing.T) {
	e := setup(t, false)
	e.issueGVT(t, false)

	// age is 28; the gap to 30 is negative and has no decomposition
	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}},
		[]types.PredicateGE{{AttrName: "age", Value: 30}})

	_, err := e.prover.PresentProof(e.ctx, input)
	require.Error(t, err)
	assert.True(t, errors.IsCrypto(err))
}

func TestTamperedRevealedAttributeRejects(t *testing.T) {
	e := setup(t, false)
	e.issueGVT(t, false)

	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}},
		[]types.PredicateGE{{AttrName: "age", Value: 18}})

	proof, err := e.prover.PresentProof(e.ctx, input)
	require.NoError(t, err)

	for id, triple := range proof.RequestedProof.RevealedAttrs {
		triple[1] = "Bob"
		proof.RequestedProof.RevealedAttrs[id] = triple
	}

	ok, err := e.verifier.Verify(e.ctx, input, proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevocationWithFreshWitness(t *testing.T) {
	e := setup(t, true)
	e.issueGVT(t, true)

	require.NoError(t, e.issuerGvt.Revoke(e.ctx, gvtKey, 1))

	stored, err := e.proverW.GetClaimSignature(e.ctx, gvtKey)
	require.NoError(t, err)
	_, err = e.prover.UpdateWitness(e.ctx, gvtKey, stored.NonRevoc)
	require.Error(t, err)
	assert.True(t, errors.IsRevoked(err))

	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}}, nil)
	_, err = e.prover.PresentProof(e.ctx, input)
	require.Error(t, err)
	assert.True(t, errors.IsRevoked(err))
}

func TestRevocationWithStaleProof(t *testing.T) {
	e := setup(t, true)
	e.issueGVT(t, true)

	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}}, nil)

	// the proof is built while index 1 is still a member
	proof, err := e.prover.PresentProof(e.ctx, input)
	require.NoError(t, err)

	ok, err := e.verifier.Verify(e.ctx, input, proof)
	require.NoError(t, err)
	require.True(t, ok, "sanity: the proof verifies before revocation")

	require.NoError(t, e.issuerGvt.Revoke(e.ctx, gvtKey, 1))

	ok, err = e.verifier.Verify(e.ctx, input, proof)
	require.NoError(t, err)
	assert.False(t, ok, "the proof must fail against the current accumulator")
}

func TestNonRevocationProofVerifies(t *testing.T) {
	e := setup(t, true)
	e.issueGVT(t, true)

	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}},
		[]types.PredicateGE{{AttrName: "age", Value: 18}})

	proof, err := e.prover.PresentProof(e.ctx, input)
	require.NoError(t, err)

	seq := strconv.Itoa(e.gvtSchema.SeqID)
	require.NotNil(t, proof.Proofs[seq].Proof.NonRevoc, "subproof must carry the accumulator companion")

	ok, err := e.verifier.Verify(e.ctx, input, proof)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUUIDSetMismatchIsRejected(t *testing.T) {
	e := setup(t, false)
	e.issueGVT(t, false)

	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}}, nil)
	proof, err := e.prover.PresentProof(e.ctx, input)
	require.NoError(t, err)

	tampered := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}}, nil)
	tampered.Nonce = input.Nonce

	_, err = e.verifier.Verify(e.ctx, tampered, proof)
	require.Error(t, err)
	assert.True(t, errors.IsInput(err))
}

func TestAggregationAcrossTwoSchemas(t *testing.T) {
	e := setup(t, false)
	e.issueGVT(t, false)

	// second issuer with its own schema carrying a shared attribute name
	issuer2W := wallet.NewInMemoryWallet("issuer2", e.repo)
	iss2 := issuer.New(issuer2W, e.repo)
	xyzSchema, err := iss2.CreateSchema(e.ctx, xyzKey, []string{"status", "period", "name"})
	require.NoError(t, err)
	_, err = iss2.GenKeys(e.ctx, xyzKey, issuer.GenKeysOptions{P: cl.TestPrimes2P, Q: cl.TestPrimes2Q})
	require.NoError(t, err)
	xyzUser := map[string]string{"status": "partial", "period": "8", "name": "Alex"}
	_, err = iss2.AddAttributes(e.ctx, xyzKey, "BzfFCYk", xyzUser)
	require.NoError(t, err)

	req, err := e.prover.CreateClaimRequest(e.ctx, xyzKey, "", false)
	require.NoError(t, err)
	claims, attrs, err := iss2.IssueClaim(e.ctx, xyzKey, req)
	require.NoError(t, err)
	require.NoError(t, e.prover.ProcessClaim(e.ctx, xyzKey, attrs, claims))

	gvtSeq := e.gvtSchema.SeqID
	xyzSeq := xyzSchema.SeqID
	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{
			{Name: "name", SchemaSeqNo: &gvtSeq},
			{Name: "status", SchemaSeqNo: &xyzSeq},
		},
		[]types.PredicateGE{{AttrName: "age", Value: 18}})

	proof, err := e.prover.PresentProof(e.ctx, input)
	require.NoError(t, err)
	require.Len(t, proof.Proofs, 2)

	ok, err := e.verifier.Verify(e.ctx, input, proof)
	require.NoError(t, err)
	assert.True(t, ok, "both subproofs must validate under one aggregated challenge")

	t.Run("swapping master-secret responses breaks the aggregate", func(t *testing.T) {
		a := proof.Proofs[strconv.Itoa(gvtSeq)].Proof.Primary.EqProof
		b := proof.Proofs[strconv.Itoa(xyzSeq)].Proof.Primary.EqProof
		a.M1, b.M1 = b.M1, a.M1

		ok, err := e.verifier.Verify(e.ctx, input, proof)
		require.NoError(t, err)
		assert.False(t, ok)

		a.M1, b.M1 = b.M1, a.M1 // restore
	})
}

func TestVerifierNonce(t *testing.T) {
	e := setup(t, false)
	bound := new(big.Int).Lsh(big.NewInt(1), cl.LargeNonce)
	n1, err := e.verifier.GenerateNonce()
	require.NoError(t, err)
	n2, err := e.verifier.GenerateNonce()
	require.NoError(t, err)
	assert.True(t, n1.Cmp(bound) < 0)
	assert.NotZero(t, n1.Cmp(n2))
}

func TestProofDoesNotVerifyUnderDifferentNonce(t *testing.T) {
	e := setup(t, false)
	e.issueGVT(t, false)

	input := proofInput(t, e.verifier,
		[]types.AttributeInfo{{Name: "name"}}, nil)
	proof, err := e.prover.PresentProof(e.ctx, input)
	require.NoError(t, err)

	input.Nonce = new(big.Int).Add(input.Nonce, big.NewInt(1))
	ok, err := e.verifier.Verify(e.ctx, input, proof)
	require.NoError(t, err)
	assert.False(t, ok)
}
