// Copyright 2025 MRJCrunch
//
// Primary proof construction: re-randomization of the CL signature,
// the equality commitment over the hidden witnesses, and the >=
// predicate proofs via four-square decomposition of the gap.

package prover

import (
	"context"
	"math/big"
	"strconv"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

const deltaKey = "DELTA"

type primaryEqualInitProof struct {
	pk      *types.PublicKey
	claim   *types.PrimaryClaim
	aPrime  *big.Int
	t       *big.Int
	eTilde  *big.Int
	ePrime  *big.Int
	vTilde  *big.Int
	vPrime  *big.Int
	mTilde  map[string]*big.Int
	m1Tilde *big.Int
	m2Tilde *big.Int

	revealed   []string
	unrevealed []string
	attrs      types.Attributes
}

type primaryPredicateGEInitProof struct {
	cList      []*big.Int // T1..T4, TDelta
	tauList    []*big.Int // TBar1..TBar4, TBarDelta, Q
	u          map[string]*big.Int
	uTilde     map[string]*big.Int
	r          map[string]*big.Int
	rTilde     map[string]*big.Int
	alphaTilde *big.Int
	predicate  types.PredicateGE
	t          map[string]*big.Int
}

type primaryInitProof struct {
	eq  *primaryEqualInitProof
	ges []*primaryPredicateGEInitProof
}

func (p *primaryInitProof) asCList() []*big.Int {
	out := []*big.Int{p.eq.aPrime}
	for _, ge := range p.ges {
		out = append(out, ge.cList...)
	}
	return out
}

func (p *primaryInitProof) asTauList() []*big.Int {
	out := []*big.Int{p.eq.t}
	for _, ge := range p.ges {
		out = append(out, ge.tauList...)
	}
	return out
}

// initPrimaryProof builds the commitments of one schema's primary
// subproof. m2Tilde arrives from the non-revocation companion when one
// exists, binding the context attribute across the pair.
func (p *Prover) initPrimaryProof(ctx context.Context, key types.SchemaKey, schema *types.Schema,
	pc *types.ProofClaims, attrs types.Attributes, m1Tilde, m2Tilde *big.Int) (*primaryInitProof, error) {

	pk, err := p.wallet.GetPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	claim := pc.Claims.Primary

	eqInit, err := initEqProof(pk, schema, claim, pc.RevealedAttrs, attrs, m1Tilde, m2Tilde)
	if err != nil {
		return nil, err
	}

	ges := make([]*primaryPredicateGEInitProof, 0, len(pc.Predicates))
	for _, predicate := range pc.Predicates {
		ge, err := initGEProof(pk, eqInit, attrs, predicate)
		if err != nil {
			return nil, err
		}
		ges = append(ges, ge)
	}
	return &primaryInitProof{eq: eqInit, ges: ges}, nil
}

func initEqProof(pk *types.PublicKey, schema *types.Schema, claim *types.PrimaryClaim,
	revealedAttrs []types.AttributeInfo, attrs types.Attributes,
	m1Tilde, m2Tilde *big.Int) (*primaryEqualInitProof, error) {

	n := pk.N

	revealedSet := map[string]bool{}
	for _, info := range revealedAttrs {
		revealedSet[info.Name] = true
	}
	var revealed, unrevealed []string
	for _, name := range schema.AttrNames {
		if revealedSet[name] {
			revealed = append(revealed, name)
		} else {
			unrevealed = append(unrevealed, name)
		}
	}

	// fresh signature of equivalent message: A' = A*S^r, v' = v - e*r
	rPrime, err := cl.RandomInRange(big.NewInt(0), n)
	if err != nil {
		return nil, err
	}
	aPrime := new(big.Int).Exp(pk.S, rPrime, n)
	aPrime.Mul(aPrime, claim.A).Mod(aPrime, n)
	vPrime := new(big.Int).Mul(claim.E, rPrime)
	vPrime.Sub(claim.V, vPrime)
	ePrime := new(big.Int).Lsh(big.NewInt(1), cl.LargeEStart)
	ePrime.Sub(claim.E, ePrime)

	eTilde, err := cl.RandomBits(cl.LargeETilde)
	if err != nil {
		return nil, err
	}
	vTilde, err := cl.RandomBits(cl.LargeVTilde)
	if err != nil {
		return nil, err
	}
	if m2Tilde == nil {
		if m2Tilde, err = cl.RandomBits(cl.LargeM2Tilde); err != nil {
			return nil, err
		}
	}
	mTilde := map[string]*big.Int{}
	for _, name := range unrevealed {
		if mTilde[name], err = cl.RandomBits(cl.LargeMTilde); err != nil {
			return nil, err
		}
	}

	// T = A'^e~ * Rms^m1~ * Rctxt^m2~ * prod R_k^m~_k * S^v~ mod N
	t := new(big.Int).Exp(aPrime, eTilde, n)
	t.Mul(t, new(big.Int).Exp(pk.Rms, m1Tilde, n)).Mod(t, n)
	t.Mul(t, new(big.Int).Exp(pk.Rctxt, m2Tilde, n)).Mod(t, n)
	for _, name := range unrevealed {
		base, ok := pk.R[name]
		if !ok {
			return nil, errors.Input("attribute %q has no base in the public key", name)
		}
		t.Mul(t, new(big.Int).Exp(base, mTilde[name], n)).Mod(t, n)
	}
	t.Mul(t, new(big.Int).Exp(pk.S, vTilde, n)).Mod(t, n)

	return &primaryEqualInitProof{
		pk:         pk,
		claim:      claim,
		aPrime:     aPrime,
		t:          t,
		eTilde:     eTilde,
		ePrime:     ePrime,
		vTilde:     vTilde,
		vPrime:     vPrime,
		mTilde:     mTilde,
		m1Tilde:    m1Tilde,
		m2Tilde:    m2Tilde,
		revealed:   revealed,
		unrevealed: unrevealed,
		attrs:      attrs,
	}, nil
}

func initGEProof(pk *types.PublicKey, eq *primaryEqualInitProof,
	attrs types.Attributes, predicate types.PredicateGE) (*primaryPredicateGEInitProof, error) {

	n := pk.N
	av, ok := attrs[predicate.AttrName]
	if !ok {
		return nil, errors.NotFound("claim carries no attribute %q", predicate.AttrName)
	}
	mjTilde, ok := eq.mTilde[predicate.AttrName]
	if !ok {
		return nil, errors.Input("predicate attribute %q is revealed; a range proof over it is meaningless", predicate.AttrName)
	}

	delta := new(big.Int).Sub(av.Encoded, big.NewInt(int64(predicate.Value)))
	us, err := cl.FourSquares(delta)
	if err != nil {
		return nil, err
	}

	u := map[string]*big.Int{}
	r := map[string]*big.Int{}
	tVals := map[string]*big.Int{}
	cList := make([]*big.Int, 0, 5)
	for i, ui := range us {
		key := strconv.Itoa(i)
		u[key] = ui
		ri, err := cl.RandomBits(cl.LargeVPrime)
		if err != nil {
			return nil, err
		}
		r[key] = ri
		ti := new(big.Int).Exp(pk.Z, ui, n)
		ti.Mul(ti, new(big.Int).Exp(pk.S, ri, n)).Mod(ti, n)
		tVals[key] = ti
		cList = append(cList, ti)
	}
	rDelta, err := cl.RandomBits(cl.LargeVPrime)
	if err != nil {
		return nil, err
	}
	r[deltaKey] = rDelta
	tDelta := new(big.Int).Exp(pk.Z, delta, n)
	tDelta.Mul(tDelta, new(big.Int).Exp(pk.S, rDelta, n)).Mod(tDelta, n)
	tVals[deltaKey] = tDelta
	cList = append(cList, tDelta)

	uTilde := map[string]*big.Int{}
	rTilde := map[string]*big.Int{}
	for i := 0; i < 4; i++ {
		key := strconv.Itoa(i)
		if uTilde[key], err = cl.RandomBits(cl.LargeUTilde); err != nil {
			return nil, err
		}
		if rTilde[key], err = cl.RandomBits(cl.LargeRTilde); err != nil {
			return nil, err
		}
	}
	if rTilde[deltaKey], err = cl.RandomBits(cl.LargeRTilde); err != nil {
		return nil, err
	}
	alphaTilde, err := cl.RandomBits(cl.LargeAlphaTilde)
	if err != nil {
		return nil, err
	}

	tauList := make([]*big.Int, 0, 6)
	for i := 0; i < 4; i++ {
		key := strconv.Itoa(i)
		tb := new(big.Int).Exp(pk.Z, uTilde[key], n)
		tb.Mul(tb, new(big.Int).Exp(pk.S, rTilde[key], n)).Mod(tb, n)
		tauList = append(tauList, tb)
	}
	tbDelta := new(big.Int).Exp(pk.Z, mjTilde, n)
	tbDelta.Mul(tbDelta, new(big.Int).Exp(pk.S, rTilde[deltaKey], n)).Mod(tbDelta, n)
	tauList = append(tauList, tbDelta)

	q := new(big.Int).Exp(pk.S, alphaTilde, n)
	for i := 0; i < 4; i++ {
		key := strconv.Itoa(i)
		q.Mul(q, new(big.Int).Exp(tVals[key], uTilde[key], n)).Mod(q, n)
	}
	tauList = append(tauList, q)

	return &primaryPredicateGEInitProof{
		cList:      cList,
		tauList:    tauList,
		u:          u,
		uTilde:     uTilde,
		r:          r,
		rTilde:     rTilde,
		alphaTilde: alphaTilde,
		predicate:  predicate,
		t:          tVals,
	}, nil
}

// finalizePrimaryProof turns commitments into responses under cH.
func finalizePrimaryProof(init *primaryInitProof, cH, ms *big.Int) (*types.PrimaryProof, error) {
	eq := init.eq

	eHat := new(big.Int).Mul(cH, eq.ePrime)
	eHat.Add(eq.eTilde, eHat)
	vHat := new(big.Int).Mul(cH, eq.vPrime)
	vHat.Add(eq.vTilde, vHat)

	mHat := map[string]*big.Int{}
	for _, name := range eq.unrevealed {
		av, ok := eq.attrs[name]
		if !ok {
			return nil, errors.NotFound("claim carries no attribute %q", name)
		}
		h := new(big.Int).Mul(cH, av.Encoded)
		mHat[name] = h.Add(eq.mTilde[name], h)
	}
	m1Hat := new(big.Int).Mul(cH, ms)
	m1Hat.Add(eq.m1Tilde, m1Hat)
	m2Hat := new(big.Int).Mul(cH, eq.claim.M2)
	m2Hat.Add(eq.m2Tilde, m2Hat)

	eqProof := &types.PrimaryEqualProof{
		APrime:        eq.aPrime,
		E:             eHat,
		V:             vHat,
		M:             mHat,
		M1:            m1Hat,
		M2:            m2Hat,
		RevealedAttrs: eq.revealed,
	}

	ges := make([]*types.PrimaryPredicateGEProof, 0, len(init.ges))
	for _, ge := range init.ges {
		uHat := map[string]*big.Int{}
		rHat := map[string]*big.Int{}
		for i := 0; i < 4; i++ {
			key := strconv.Itoa(i)
			h := new(big.Int).Mul(cH, ge.u[key])
			uHat[key] = h.Add(ge.uTilde[key], h)
			rh := new(big.Int).Mul(cH, ge.r[key])
			rHat[key] = rh.Add(ge.rTilde[key], rh)
		}
		rhd := new(big.Int).Mul(cH, ge.r[deltaKey])
		rHat[deltaKey] = rhd.Add(ge.rTilde[deltaKey], rhd)

		// alpha = rDelta - sum u_i * r_i
		alpha := new(big.Int).Set(ge.r[deltaKey])
		for i := 0; i < 4; i++ {
			key := strconv.Itoa(i)
			alpha.Sub(alpha, new(big.Int).Mul(ge.u[key], ge.r[key]))
		}
		alphaHat := new(big.Int).Mul(cH, alpha)
		alphaHat.Add(ge.alphaTilde, alphaHat)

		mjHat, ok := mHat[ge.predicate.AttrName]
		if !ok {
			return nil, errors.Input("predicate attribute %q has no equality response", ge.predicate.AttrName)
		}

		ges = append(ges, &types.PrimaryPredicateGEProof{
			U:         uHat,
			R:         rHat,
			Mj:        mjHat,
			Alpha:     alphaHat,
			T:         ge.t,
			Predicate: ge.predicate,
		})
	}

	return &types.PrimaryProof{EqProof: eqProof, GEProofs: ges}, nil
}
