// Copyright 2025 MRJCrunch
//
// Non-revocation proof construction: witness refresh against the
// current accumulator and the Sigma-protocol over the pairing
// commitments E, D, A, G, W, S, U.

package prover

import (
	"context"
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

type nonRevocInitProof struct {
	cList         *types.NonRevocProofCList
	tauList       *types.NonRevocProofTauList
	cListParams   *types.NonRevocProofXList
	tauListParams *types.NonRevocProofXList
}

// UpdateWitness synchronizes the claim's witness with the current
// accumulator. A claim whose index has been revoked yields a
// RevokedError; a witness already in sync is returned unchanged.
func (p *Prover) UpdateWitness(ctx context.Context, key types.SchemaKey, claim *types.NonRevocationClaim) (*types.NonRevocationClaim, error) {
	acc, err := p.wallet.GetAccumulator(ctx, key)
	if err != nil {
		return nil, err
	}
	if claim.Witness.V.Equal(acc.V) {
		return claim, nil
	}
	if !acc.V.Contains(claim.I) {
		return nil, errors.Revoked("index %d has been removed from accumulator %s", claim.I, acc.IA)
	}
	tails, err := p.wallet.GetTails(ctx, key)
	if err != nil {
		return nil, err
	}

	// omega_new = omega_old * prod(added tails) / prod(removed tails)
	omega := claim.Witness.Omega
	for _, j := range acc.V.Sorted() {
		if j == claim.I || claim.Witness.V.Contains(j) {
			continue
		}
		tail, ok := tails.GDashAt(acc.L + 1 - j + claim.I)
		if !ok {
			return nil, errors.Crypto("tails carry no entry for index %d", acc.L+1-j+claim.I)
		}
		omega = omega.Mul(tail)
	}
	for _, j := range claim.Witness.V.Sorted() {
		if j == claim.I || acc.V.Contains(j) {
			continue
		}
		tail, ok := tails.GDashAt(acc.L + 1 - j + claim.I)
		if !ok {
			return nil, errors.Crypto("tails carry no entry for index %d", acc.L+1-j+claim.I)
		}
		omega = omega.Mul(tail.Inverse())
	}

	updated := &types.NonRevocationClaim{
		IA:    claim.IA,
		Sigma: claim.Sigma,
		C:     claim.C,
		V:     claim.V,
		Witness: &types.WitnessCredential{
			SigmaI: claim.Witness.SigmaI,
			UI:     claim.Witness.UI,
			GI:     claim.Witness.GI,
			Omega:  omega,
			V:      acc.V.Copy(),
		},
		GI: claim.GI,
		I:  claim.I,
		M2: claim.M2,
	}
	if err := p.wallet.SubmitNonRevocClaim(ctx, key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// initNonRevocProof refreshes the witness and commits to it.
func (p *Prover) initNonRevocProof(ctx context.Context, key types.SchemaKey, claim *types.NonRevocationClaim) (*nonRevocInitProof, error) {
	claim, err := p.UpdateWitness(ctx, key, claim)
	if err != nil {
		return nil, err
	}
	pk, err := p.wallet.GetRevocationPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	acc, err := p.wallet.GetAccumulator(ctx, key)
	if err != nil {
		return nil, err
	}

	cListParams, err := newCListParams(claim)
	if err != nil {
		return nil, err
	}
	cList := createCListValues(pk, claim, cListParams)

	tauListParams, err := newTauListParams()
	if err != nil {
		return nil, err
	}
	tauList := types.CreateTauListValues(pk, acc, tauListParams, cList)

	return &nonRevocInitProof{
		cList:         cList,
		tauList:       tauList,
		cListParams:   cListParams,
		tauListParams: tauListParams,
	}, nil
}

// newCListParams samples the commitment blinds and derives the product
// terms the tau relations prove consistent.
func newCListParams(claim *types.NonRevocationClaim) (*types.NonRevocProofXList, error) {
	order := pairing.GroupOrder()
	sample := func() (*big.Int, error) { return pairing.RandomScalar() }

	rho, err := sample()
	if err != nil {
		return nil, err
	}
	r, err := sample()
	if err != nil {
		return nil, err
	}
	rPrime, err := sample()
	if err != nil {
		return nil, err
	}
	rPrimePrime, err := sample()
	if err != nil {
		return nil, err
	}
	rPrimePrimePrime, err := sample()
	if err != nil {
		return nil, err
	}
	o, err := sample()
	if err != nil {
		return nil, err
	}
	oPrime, err := sample()
	if err != nil {
		return nil, err
	}

	mul := func(a, b *big.Int) *big.Int {
		v := new(big.Int).Mul(a, b)
		return v.Mod(v, order)
	}
	return &types.NonRevocProofXList{
		Rho:              rho,
		O:                o,
		C:                claim.C,
		OPrime:           oPrime,
		M:                mul(rho, claim.C),
		MPrime:           mul(r, rPrimePrime),
		T:                mul(o, claim.C),
		TPrime:           mul(oPrime, rPrimePrime),
		M2:               claim.M2,
		S:                claim.V,
		R:                r,
		RPrime:           rPrime,
		RPrimePrime:      rPrimePrime,
		RPrimePrimePrime: rPrimePrimePrime,
	}, nil
}

func createCListValues(pk *types.RevocationPublicKey, claim *types.NonRevocationClaim,
	params *types.NonRevocProofXList) *types.NonRevocProofCList {
	return &types.NonRevocProofCList{
		E: pk.H.Exp(params.Rho).Mul(pk.HTilde.Exp(params.O)),
		D: pk.G.Exp(params.R).Mul(pk.HTilde.Exp(params.OPrime)),
		A: claim.Sigma.Mul(pk.HTilde.Exp(params.Rho)),
		G: claim.GI.Mul(pk.HTilde.Exp(params.R)),
		W: claim.Witness.Omega.Mul(pk.HCap.Exp(params.RPrime)),
		S: claim.Witness.SigmaI.Mul(pk.HCap.Exp(params.RPrimePrime)),
		U: claim.Witness.UI.Mul(pk.HCap.Exp(params.RPrimePrimePrime)),
	}
}

// newTauListParams samples one blind per scalar of the x-list.
func newTauListParams() (*types.NonRevocProofXList, error) {
	vals := make([]*big.Int, 14)
	for i := range vals {
		v, err := pairing.RandomScalar()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return types.XListFromList(vals), nil
}

// finalizeNonRevocProof computes the responses s = blind + cH*secret
// over the group order.
func finalizeNonRevocProof(init *nonRevocInitProof, cH *big.Int) *types.NonRevocProof {
	order := pairing.GroupOrder()
	tilde := init.tauListParams.AsList()
	secret := init.cListParams.AsList()
	responses := make([]*big.Int, len(tilde))
	for i := range tilde {
		v := new(big.Int).Mul(cH, secret[i])
		v.Add(v, tilde[i])
		responses[i] = v.Mod(v, order)
	}
	return &types.NonRevocProof{
		XList: types.XListFromList(responses),
		CList: init.cList,
	}
}
