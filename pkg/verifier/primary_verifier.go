// Copyright 2025 MRJCrunch
//
// Tau-hat recomputation for the strong-RSA half of a subproof. Revealed
// values are re-encoded from the raw strings the prover echoed, so a
// tampered raw value breaks the challenge even when the encoded form is
// left alone.

package verifier

import (
	"context"
	"math/big"
	"strconv"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
	"github.com/MRJCrunch/anoncreds/pkg/ucrypto"
)

const deltaKey = "DELTA"

func (v *Verifier) verifyPrimary(ctx context.Context, schema *types.Schema, cH *big.Int,
	proof *types.PrimaryProof, input *types.ProofInput, requested *types.RequestedProof,
	seqNo int) ([]*big.Int, error) {

	pk, err := v.wallet.GetPublicKey(ctx, schema.SchemaKey)
	if err != nil {
		return nil, err
	}

	revealed, err := revealedEncodings(input, requested, seqNo)
	if err != nil {
		return nil, err
	}

	taus := make([]*big.Int, 0, 1+6*len(proof.GEProofs))
	tEq, err := recomputeEqTau(pk, cH, proof.EqProof, revealed)
	if err != nil {
		return nil, err
	}
	taus = append(taus, tEq)

	for _, ge := range proof.GEProofs {
		geTaus, err := recomputeGETaus(pk, cH, ge)
		if err != nil {
			return nil, err
		}
		taus = append(taus, geTaus...)
	}
	return taus, nil
}

// revealedEncodings re-encodes the raw revealed values routed to this
// schema's subproof.
func revealedEncodings(input *types.ProofInput, requested *types.RequestedProof, seqNo int) (map[string]*big.Int, error) {
	out := map[string]*big.Int{}
	for id, info := range input.RevealedAttrs {
		triple, ok := requested.RevealedAttrs[id]
		if !ok {
			return nil, errors.Input("revealed attribute uuid %q missing from the proof", id)
		}
		if triple[0] != strconv.Itoa(seqNo) {
			continue
		}
		out[info.Name] = ucrypto.EncodeAttr(triple[1])
	}
	return out, nil
}

// recomputeEqTau rebuilds the equality commitment:
// T^ = (Z / (Rar * A'^(2^LargeEStart)))^-cH * A'^e^ * Rctxt^m2^ *
//      Rms^m1^ * Rur * S^v^  mod N.
func recomputeEqTau(pk *types.PublicKey, cH *big.Int, eq *types.PrimaryEqualProof,
	revealed map[string]*big.Int) (*big.Int, error) {

	n := pk.N

	rar := big.NewInt(1)
	for _, name := range eq.RevealedAttrs {
		enc, ok := revealed[name]
		if !ok {
			return nil, errors.Input("revealed attribute %q has no value in the proof", name)
		}
		base, ok := pk.R[name]
		if !ok {
			return nil, errors.Input("attribute %q has no base in the public key", name)
		}
		rar.Mul(rar, new(big.Int).Exp(base, enc, n)).Mod(rar, n)
	}

	twoLe := new(big.Int).Lsh(big.NewInt(1), cl.LargeEStart)
	denom := new(big.Int).Exp(eq.APrime, twoLe, n)
	denom.Mul(denom, rar).Mod(denom, n)
	denomInv, ok := cl.ModInverse(denom, n)
	if !ok {
		return nil, errors.Crypto("revealed-value product is not invertible mod N")
	}
	base := new(big.Int).Mul(pk.Z, denomInv)
	base.Mod(base, n)

	negCH := new(big.Int).Neg(cH)
	t, err := cl.ModPow(base, negCH, n)
	if err != nil {
		return nil, err
	}
	t.Mul(t, new(big.Int).Exp(eq.APrime, eq.E, n)).Mod(t, n)
	t.Mul(t, new(big.Int).Exp(pk.Rctxt, eq.M2, n)).Mod(t, n)
	t.Mul(t, new(big.Int).Exp(pk.Rms, eq.M1, n)).Mod(t, n)
	for name, mHat := range eq.M {
		rBase, ok := pk.R[name]
		if !ok {
			return nil, errors.Input("attribute %q has no base in the public key", name)
		}
		t.Mul(t, new(big.Int).Exp(rBase, mHat, n)).Mod(t, n)
	}
	t.Mul(t, new(big.Int).Exp(pk.S, eq.V, n)).Mod(t, n)
	return t, nil
}

// recomputeGETaus rebuilds the six tau values of one >= predicate proof
// in the builder's emission order.
func recomputeGETaus(pk *types.PublicKey, cH *big.Int, ge *types.PrimaryPredicateGEProof) ([]*big.Int, error) {
	n := pk.N
	negCH := new(big.Int).Neg(cH)
	taus := make([]*big.Int, 0, 6)

	for i := 0; i < 4; i++ {
		key := strconv.Itoa(i)
		tVal, ok := ge.T[key]
		if !ok {
			return nil, errors.Input("predicate proof is missing commitment %q", key)
		}
		uHat, ok := ge.U[key]
		if !ok {
			return nil, errors.Input("predicate proof is missing response u[%s]", key)
		}
		rHat, ok := ge.R[key]
		if !ok {
			return nil, errors.Input("predicate proof is missing response r[%s]", key)
		}
		t, err := cl.ModPow(tVal, negCH, n)
		if err != nil {
			return nil, err
		}
		t.Mul(t, new(big.Int).Exp(pk.Z, uHat, n)).Mod(t, n)
		t.Mul(t, new(big.Int).Exp(pk.S, rHat, n)).Mod(t, n)
		taus = append(taus, t)
	}

	tDelta, ok := ge.T[deltaKey]
	if !ok {
		return nil, errors.Input("predicate proof is missing commitment %q", deltaKey)
	}
	rHatDelta, ok := ge.R[deltaKey]
	if !ok {
		return nil, errors.Input("predicate proof is missing response r[%s]", deltaKey)
	}

	// (TDelta * Z^value)^-cH * Z^mj^ * S^r^delta
	baseDelta := new(big.Int).Exp(pk.Z, big.NewInt(int64(ge.Predicate.Value)), n)
	baseDelta.Mul(baseDelta, tDelta).Mod(baseDelta, n)
	td, err := cl.ModPow(baseDelta, negCH, n)
	if err != nil {
		return nil, err
	}
	td.Mul(td, new(big.Int).Exp(pk.Z, ge.Mj, n)).Mod(td, n)
	td.Mul(td, new(big.Int).Exp(pk.S, rHatDelta, n)).Mod(td, n)
	taus = append(taus, td)

	// TDelta^-cH * prod T_i^u^_i * S^alpha^
	q, err := cl.ModPow(tDelta, negCH, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 4; i++ {
		key := strconv.Itoa(i)
		q.Mul(q, new(big.Int).Exp(ge.T[key], ge.U[key], n)).Mod(q, n)
	}
	alphaTerm, err := cl.ModPow(pk.S, ge.Alpha, n)
	if err != nil {
		return nil, err
	}
	q.Mul(q, alphaTerm).Mod(q, n)
	taus = append(taus, q)

	return taus, nil
}
