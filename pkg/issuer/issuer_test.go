// Copyright 2025 MRJCrunch
//
// Issuer-side invariants: key generation lands in QR(N), issued claims
// satisfy the CL verification equation, and the accumulator returns to
// the identity once every index is revoked.

package issuer

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
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

func newTestIssuer(t *testing.T) (*Issuer, *wallet.InMemoryWallet, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	w := wallet.NewInMemoryWallet("issuer1", repo)
	iss := New(w, repo)

	_, err := iss.CreateSchema(context.Background(), gvtKey, []string{"name", "age", "height", "sex"})
	require.NoError(t, err)
	return iss, w, repo
}

func genTestKeys(t *testing.T, iss *Issuer) *types.PublicKey {
	t.Helper()
	pk, err := iss.GenKeys(context.Background(), gvtKey, GenKeysOptions{
		P: cl.TestPrimes1P,
		Q: cl.TestPrimes1Q,
	})
	require.NoError(t, err)
	return pk
}

func TestGenKeysInvariants(t *testing.T) {
	ctx := context.Background()
	iss, w, _ := newTestIssuer(t)
	pk := genTestKeys(t, iss)

	sk, err := w.GetSecretKey(ctx, gvtKey)
	require.NoError(t, err)

	t.Run("N is the product of the safe primes", func(t *testing.T) {
		n := new(big.Int).Mul(cl.TestPrimes1P, cl.TestPrimes1Q)
		assert.Zero(t, pk.N.Cmp(n))
	})

	t.Run("all bases lie in QR(N)", func(t *testing.T) {
		// QR(N) has order p'q'; membership means x^(p'q') == 1 mod N
		order := sk.Order()
		elements := []*big.Int{pk.S, pk.Z, pk.Rms, pk.Rctxt}
		for _, base := range pk.R {
			elements = append(elements, base)
		}
		for _, x := range elements {
			got := new(big.Int).Exp(x, order, pk.N)
			assert.Equal(t, int64(1), got.Int64())
		}
	})

	t.Run("one base per schema attribute", func(t *testing.T) {
		assert.Len(t, pk.R, 4)
		for _, name := range []string{"name", "age", "height", "sex"} {
			assert.Contains(t, pk.R, name)
		}
	})
}

func TestIssueClaimSatisfiesSignatureEquation(t *testing.T) {
	ctx := context.Background()
	iss, _, _ := newTestIssuer(t)
	pk := genTestKeys(t, iss)

	attrs, err := iss.AddAttributes(ctx, gvtKey, "BzfFCYk", gvtAttrs)
	require.NoError(t, err)

	// prover side of the blind signing: U = S^v' * Rms^ms mod N
	ms, err := cl.RandomBits(cl.LargeMasterSecret)
	require.NoError(t, err)
	vPrime, err := cl.RandomBits(cl.LargeVPrime)
	require.NoError(t, err)
	u := new(big.Int).Exp(pk.S, vPrime, pk.N)
	u.Mul(u, new(big.Int).Exp(pk.Rms, ms, pk.N)).Mod(u, pk.N)

	claims, issuedAttrs, err := iss.IssueClaim(ctx, gvtKey, &types.ClaimRequest{UserID: "BzfFCYk", U: u})
	require.NoError(t, err)
	require.NotNil(t, claims.Primary)
	require.Nil(t, claims.NonRevoc)
	assert.Equal(t, attrs["name"].Encoded, issuedAttrs["name"].Encoded)

	claim := claims.Primary

	t.Run("e is prime in the declared range", func(t *testing.T) {
		start := new(big.Int).Lsh(big.NewInt(1), cl.LargeEStart)
		end := new(big.Int).Add(start, new(big.Int).Lsh(big.NewInt(1), cl.LargeEEnd))
		assert.True(t, claim.E.Cmp(start) >= 0 && claim.E.Cmp(end) < 0)
		assert.True(t, claim.E.ProbablyPrime(40))
	})

	t.Run("v'' has the declared bit length", func(t *testing.T) {
		assert.Equal(t, cl.LargeVPrimePrime, claim.V.BitLen())
	})

	t.Run("A^e * S^v * Rms^ms * Rctxt^m2 * prod R^a == Z", func(t *testing.T) {
		n := pk.N
		v := new(big.Int).Add(vPrime, claim.V)
		lhs := new(big.Int).Exp(claim.A, claim.E, n)
		lhs.Mul(lhs, new(big.Int).Exp(pk.S, v, n)).Mod(lhs, n)
		lhs.Mul(lhs, new(big.Int).Exp(pk.Rms, ms, n)).Mod(lhs, n)
		lhs.Mul(lhs, new(big.Int).Exp(pk.Rctxt, claim.M2, n)).Mod(lhs, n)
		for name, av := range issuedAttrs {
			lhs.Mul(lhs, new(big.Int).Exp(pk.R[name], av.Encoded, n)).Mod(lhs, n)
		}
		assert.Zero(t, lhs.Cmp(pk.Z))
	})
}

func TestAccumulatorLifecycle(t *testing.T) {
	ctx := context.Background()
	iss, w, _ := newTestIssuer(t)
	genTestKeys(t, iss)

	_, err := iss.GenRevocationKeys(ctx, gvtKey)
	require.NoError(t, err)
	acc, err := iss.IssueAccumulator(ctx, gvtKey, "110", 5)
	require.NoError(t, err)
	assert.True(t, acc.Acc.IsIdentity())
	assert.Empty(t, acc.V)

	revPK, err := w.GetRevocationPublicKey(ctx, gvtKey)
	require.NoError(t, err)

	issueOne := func(userID string) *types.NonRevocationClaim {
		_, err := iss.AddAttributes(ctx, gvtKey, userID, gvtAttrs)
		require.NoError(t, err)

		ms, _ := cl.RandomBits(cl.LargeMasterSecret)
		pk, _ := w.GetPublicKey(ctx, gvtKey)
		u := new(big.Int).Exp(pk.S, big.NewInt(12345), pk.N)
		u.Mul(u, new(big.Int).Exp(pk.Rms, ms, pk.N)).Mod(u, pk.N)

		vr, err := pairing.RandomScalar()
		require.NoError(t, err)
		ur := revPK.H2.Exp(vr)

		claims, _, err := iss.IssueClaim(ctx, gvtKey, &types.ClaimRequest{UserID: userID, U: u, Ur: ur})
		require.NoError(t, err)
		require.NotNil(t, claims.NonRevoc)
		return claims.NonRevoc
	}

	c1 := issueOne("user1")
	c2 := issueOne("user2")
	c3 := issueOne("user3")
	assert.Equal(t, 1, c1.I)
	assert.Equal(t, 2, c2.I)
	assert.Equal(t, 3, c3.I)

	t.Run("witness V matches accumulator V", func(t *testing.T) {
		acc, err := w.GetAccumulator(ctx, gvtKey)
		require.NoError(t, err)
		assert.True(t, c3.Witness.V.Equal(acc.V))
	})

	t.Run("membership relation holds for a fresh witness", func(t *testing.T) {
		// e(g_i, acc) == e(g, omega) * z
		acc, err := w.GetAccumulator(ctx, gvtKey)
		require.NoError(t, err)
		accPK, err := w.GetAccumulatorPublicKey(ctx, gvtKey)
		require.NoError(t, err)
		left := pairing.Pair(c3.GI, acc.Acc)
		right := pairing.Pair(revPK.G, c3.Witness.Omega).Mul(accPK.Z)
		assert.True(t, left.Equal(right))
	})

	t.Run("revoking every index restores the identity", func(t *testing.T) {
		// reverse order on purpose: the update must commute
		require.NoError(t, iss.Revoke(ctx, gvtKey, 2))
		require.NoError(t, iss.Revoke(ctx, gvtKey, 3))
		require.NoError(t, iss.Revoke(ctx, gvtKey, 1))

		acc, err := w.GetAccumulator(ctx, gvtKey)
		require.NoError(t, err)
		assert.True(t, acc.Acc.IsIdentity())
		assert.Empty(t, acc.V)
	})

	t.Run("revoking an absent index is an input error", func(t *testing.T) {
		err := iss.Revoke(ctx, gvtKey, 1)
		assert.Error(t, err)
	})
}

func TestIssueClaimRejectsEmptyCommitment(t *testing.T) {
	ctx := context.Background()
	iss, _, _ := newTestIssuer(t)
	genTestKeys(t, iss)
	_, err := iss.AddAttributes(ctx, gvtKey, "BzfFCYk", gvtAttrs)
	require.NoError(t, err)

	_, _, err = iss.IssueClaim(ctx, gvtKey, &types.ClaimRequest{UserID: "BzfFCYk", U: big.NewInt(0)})
	assert.Error(t, err)
}
