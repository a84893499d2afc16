// Copyright 2025 MRJCrunch
//
// Revocation side of issuance: pairing key generation, accumulator and
// tails setup, witness issuance and revocation updates. The accumulator
// maintains acc = prod over j in V of tails.GDash[L+1-j].

package issuer

import (
	"context"
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

// GenRevocationKeys generates and publishes the pairing-group key
// material backing non-revocation claims for a schema.
func (i *Issuer) GenRevocationKeys(ctx context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error) {
	lock := i.schemaLock(key)
	lock.Lock()
	defer lock.Unlock()

	h, err := pairing.RandomG1()
	if err != nil {
		return nil, err
	}
	h0, err := pairing.RandomG1()
	if err != nil {
		return nil, err
	}
	h1, err := pairing.RandomG1()
	if err != nil {
		return nil, err
	}
	h2, err := pairing.RandomG1()
	if err != nil {
		return nil, err
	}
	hTilde, err := pairing.RandomG1()
	if err != nil {
		return nil, err
	}
	hCap, err := pairing.RandomG2()
	if err != nil {
		return nil, err
	}
	u, err := pairing.RandomG2()
	if err != nil {
		return nil, err
	}
	x, err := pairing.RandomScalar()
	if err != nil {
		return nil, err
	}
	sk, err := pairing.RandomScalar()
	if err != nil {
		return nil, err
	}

	pk := &types.RevocationPublicKey{
		G:      pairing.GenG1(),
		GDash:  pairing.GenG2(),
		H:      h,
		H0:     h0,
		H1:     h1,
		H2:     h2,
		HTilde: hTilde,
		HCap:   hCap,
		U:      u,
		PK:     pairing.GenG1().Exp(sk),
		Y:      hCap.Exp(x),
	}

	if pk, err = i.repo.PublishRevocationPublicKey(ctx, key, pk); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitRevocationPublicKey(ctx, key, pk); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitRevocationSecretKey(ctx, key, &types.RevocationSecretKey{X: x, Sk: sk}); err != nil {
		return nil, err
	}
	i.log.Info("revocation keys generated", "name", key.Name)
	return pk, nil
}

// IssueAccumulator publishes an empty accumulator of capacity l with its
// precomputed tails and pairing constant, retaining the trapdoor gamma.
func (i *Issuer) IssueAccumulator(ctx context.Context, key types.SchemaKey, iA string, l int) (*types.Accumulator, error) {
	lock := i.schemaLock(key)
	lock.Lock()
	defer lock.Unlock()

	if l < 1 {
		return nil, errors.Input("accumulator capacity must be positive, got %d", l)
	}
	pk, err := i.wallet.GetRevocationPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}

	gamma, err := pairing.RandomScalar()
	if err != nil {
		return nil, err
	}
	order := pairing.GroupOrder()

	tails := &types.Tails{
		L:     l,
		G:     map[int]*pairing.PointG1{},
		GDash: map[int]*pairing.PointG2{},
	}
	gammaPow := new(big.Int).Set(gamma)
	for idx := 1; idx <= 2*l; idx++ {
		// the power at L+1 never ships; it only appears inside z
		if idx != l+1 {
			tails.G[idx] = pk.G.Exp(gammaPow)
			tails.GDash[idx] = pk.GDash.Exp(gammaPow)
		}
		gammaPow = gammaPow.Mul(gammaPow, gamma)
		gammaPow.Mod(gammaPow, order)
	}

	// z = e(g, gDash)^(gamma^(L+1))
	gammaL1 := new(big.Int).Exp(gamma, big.NewInt(int64(l+1)), order)
	z := pairing.Pair(pk.G, pk.GDash).Exp(gammaL1)

	acc := &types.Accumulator{
		IA:           iA,
		Acc:          pairing.IdentityG2(),
		V:            types.NewIndexSet(),
		L:            l,
		CurrentIndex: 0,
	}

	if err := i.repo.PublishAccumulator(ctx, key, acc); err != nil {
		return nil, err
	}
	if err := i.repo.PublishAccumulatorPublicKey(ctx, key, &types.AccumulatorPublicKey{Z: z}); err != nil {
		return nil, err
	}
	if err := i.repo.PublishTails(ctx, key, tails); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitAccumulator(ctx, key, acc); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitAccumulatorPublicKey(ctx, key, &types.AccumulatorPublicKey{Z: z}); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitTails(ctx, key, tails); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitAccumulatorSecretKey(ctx, key, &types.AccumulatorSecretKey{Gamma: gamma}); err != nil {
		return nil, err
	}
	i.log.Info("accumulator issued", "name", key.Name, "id", iA, "capacity", l)
	return acc, nil
}

// issueNonRevocClaim hands out the next free accumulator index with the
// witness material proving its membership.
func (i *Issuer) issueNonRevocClaim(ctx context.Context, key types.SchemaKey, ur *pairing.PointG1, m2 *big.Int) (*types.NonRevocationClaim, error) {
	pk, err := i.wallet.GetRevocationPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	sk, err := i.wallet.GetRevocationSecretKey(ctx, key)
	if err != nil {
		return nil, err
	}
	accSK, err := i.wallet.GetAccumulatorSecretKey(ctx, key)
	if err != nil {
		return nil, err
	}
	acc, err := i.wallet.GetAccumulator(ctx, key)
	if err != nil {
		return nil, err
	}
	tails, err := i.wallet.GetTails(ctx, key)
	if err != nil {
		return nil, err
	}

	if acc.IsFull() {
		return nil, errors.Input("accumulator %s is full (capacity %d)", acc.IA, acc.L)
	}
	idx := acc.CurrentIndex + 1
	order := pairing.GroupOrder()

	gi, ok := tails.GAt(idx)
	if !ok {
		return nil, errors.Crypto("tails carry no entry for index %d", idx)
	}

	vrPrimePrime, err := pairing.RandomScalar()
	if err != nil {
		return nil, err
	}
	c, err := pairing.RandomScalar()
	if err != nil {
		return nil, err
	}
	m2s := new(big.Int).Mod(m2, order)

	// sigma = (h0 * h1^m2 * Ur * g_i * h2^v'')^(1/(x+c))
	base := pk.H0.Mul(pk.H1.Exp(m2s)).Mul(ur).Mul(gi).Mul(pk.H2.Exp(vrPrimePrime))
	xc := new(big.Int).Add(sk.X, c)
	xcInv := new(big.Int).ModInverse(xc.Mod(xc, order), order)
	if xcInv == nil {
		return nil, errors.Crypto("x + c is not invertible mod the group order")
	}
	sigma := base.Exp(xcInv)

	// omega over the members already accumulated; i itself is excluded.
	omega := pairing.IdentityG2()
	for _, j := range acc.V.Sorted() {
		tail, ok := tails.GDashAt(acc.L + 1 - j + idx)
		if !ok {
			return nil, errors.Crypto("tails carry no entry for index %d", acc.L+1-j+idx)
		}
		omega = omega.Mul(tail)
	}

	// sigma_i = gDash^(1/(sk + gamma^i)), u_i = u^(gamma^i)
	gammaI := new(big.Int).Exp(accSK.Gamma, big.NewInt(int64(idx)), order)
	den := new(big.Int).Add(sk.Sk, gammaI)
	denInv := new(big.Int).ModInverse(den.Mod(den, order), order)
	if denInv == nil {
		return nil, errors.Crypto("sk + gamma^i is not invertible mod the group order")
	}
	sigmaI := pk.GDash.Exp(denInv)
	uI := pk.U.Exp(gammaI)

	accTail, ok := tails.GDashAt(acc.L + 1 - idx)
	if !ok {
		return nil, errors.Crypto("tails carry no entry for index %d", acc.L+1-idx)
	}
	acc.Acc = acc.Acc.Mul(accTail)
	acc.V.Add(idx)
	acc.CurrentIndex = idx

	if err := i.repo.PublishAccumulator(ctx, key, acc); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitAccumulator(ctx, key, acc); err != nil {
		return nil, err
	}

	witness := &types.WitnessCredential{
		SigmaI: sigmaI,
		UI:     uI,
		GI:     gi,
		Omega:  omega,
		V:      acc.V.Copy(),
	}
	return &types.NonRevocationClaim{
		IA:      acc.IA,
		Sigma:   sigma,
		C:       c,
		V:       vrPrimePrime,
		Witness: witness,
		GI:      gi,
		I:       idx,
		M2:      m2s,
	}, nil
}

// Revoke removes index idx from the accumulator and republishes it.
// Holders of other indices repair their witnesses on next use; the
// holder of idx can no longer prove membership.
func (i *Issuer) Revoke(ctx context.Context, key types.SchemaKey, idx int) error {
	lock := i.schemaLock(key)
	lock.Lock()
	defer lock.Unlock()

	acc, err := i.wallet.GetAccumulator(ctx, key)
	if err != nil {
		return err
	}
	if !acc.V.Contains(idx) {
		return errors.Input("index %d is not in the accumulator", idx)
	}
	tails, err := i.wallet.GetTails(ctx, key)
	if err != nil {
		return err
	}
	tail, ok := tails.GDashAt(acc.L + 1 - idx)
	if !ok {
		return errors.Crypto("tails carry no entry for index %d", acc.L+1-idx)
	}

	acc.V.Remove(idx)
	acc.Acc = acc.Acc.Mul(tail.Inverse())

	if err := i.repo.PublishAccumulator(ctx, key, acc); err != nil {
		return err
	}
	if err := i.wallet.SubmitAccumulator(ctx, key, acc); err != nil {
		return err
	}
	i.metrics.RecordRevocation()
	i.log.Info("index revoked", "name", key.Name, "index", idx, "active", len(acc.V))
	return nil
}
