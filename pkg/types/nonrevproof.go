// Copyright 2025 MRJCrunch
//
// The tau-list algebra of the accumulator membership proof. The same
// linear map evaluates the prover's blinds into commitments and the
// verifier's responses into tau-hat values; the expected values are the
// map at the true secrets, expressed through the published C values.

package types

import (
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
)

// NonRevocProofCList holds the Pedersen-style commitments of the
// accumulator proof: E, D, A, G in G1; W, S, U in G2.
type NonRevocProofCList struct {
	E *pairing.PointG1
	D *pairing.PointG1
	A *pairing.PointG1
	G *pairing.PointG1
	W *pairing.PointG2
	S *pairing.PointG2
	U *pairing.PointG2
}

// AsBytesList returns the commitments as canonical encodings, in the
// order they enter the aggregated C list.
func (c *NonRevocProofCList) AsBytesList() [][]byte {
	return [][]byte{
		c.E.Bytes(), c.D.Bytes(), c.A.Bytes(), c.G.Bytes(),
		c.W.Bytes(), c.S.Bytes(), c.U.Bytes(),
	}
}

// NonRevocProofTauList is the 8-entry commitment vector of the proof:
// T1, T2, T5, T6 in G1 and T3, T4, T7, T8 in GT.
type NonRevocProofTauList struct {
	T1 *pairing.PointG1
	T2 *pairing.PointG1
	T3 *pairing.PointGT
	T4 *pairing.PointGT
	T5 *pairing.PointG1
	T6 *pairing.PointG1
	T7 *pairing.PointGT
	T8 *pairing.PointGT
}

// AsIntList returns the tau values as transcript integers in order.
func (t *NonRevocProofTauList) AsIntList() []*big.Int {
	enc := [][]byte{
		t.T1.Bytes(), t.T2.Bytes(), t.T3.Bytes(), t.T4.Bytes(),
		t.T5.Bytes(), t.T6.Bytes(), t.T7.Bytes(), t.T8.Bytes(),
	}
	out := make([]*big.Int, len(enc))
	for i, e := range enc {
		out[i] = new(big.Int).SetBytes(e)
	}
	return out
}

// CreateTauListValues evaluates the proof's linear map at the scalar
// vector x. With x the blinds it yields the prover's tau list; with
// x the responses it is the first factor of the verifier's tau-hat.
func CreateTauListValues(pk *RevocationPublicKey, accum *Accumulator,
	x *NonRevocProofXList, c *NonRevocProofCList) *NonRevocProofTauList {

	negM := new(big.Int).Neg(x.M)
	negT := new(big.Int).Neg(x.T)
	negMPrime := new(big.Int).Neg(x.MPrime)
	negTPrime := new(big.Int).Neg(x.TPrime)
	negM2 := new(big.Int).Neg(x.M2)
	negS := new(big.Int).Neg(x.S)
	negRho := new(big.Int).Neg(x.Rho)
	negRPrime := new(big.Int).Neg(x.RPrime)
	negR3Prime := new(big.Int).Neg(x.RPrimePrimePrime)

	t1 := pk.H.Exp(x.Rho).Mul(pk.HTilde.Exp(x.O))
	t2 := c.E.Exp(x.C).Mul(pk.H.Exp(negM)).Mul(pk.HTilde.Exp(negT))

	t3 := pairing.Pair(c.A, pk.HCap).Exp(x.C).
		Mul(pairing.Pair(pk.HTilde, pk.HCap).Exp(x.R)).
		Mul(pairing.Pair(pk.HTilde, pk.Y).Exp(negRho)).
		Mul(pairing.Pair(pk.HTilde, pk.HCap).Exp(negM)).
		Mul(pairing.Pair(pk.H1, pk.HCap).Exp(negM2)).
		Mul(pairing.Pair(pk.H2, pk.HCap).Exp(negS))

	t4 := pairing.Pair(pk.HTilde, accum.Acc).Exp(x.R).
		Mul(pairing.Pair(pk.G, pk.HCap).Exp(negRPrime))

	t5 := pk.G.Exp(x.R).Mul(pk.HTilde.Exp(x.OPrime))
	t6 := c.D.Exp(x.RPrimePrime).Mul(pk.G.Exp(negMPrime)).Mul(pk.HTilde.Exp(negTPrime))

	t7 := pairing.Pair(pk.PK.Mul(c.G), pk.HCap).Exp(x.RPrimePrime).
		Mul(pairing.Pair(pk.HTilde, pk.HCap).Exp(negMPrime)).
		Mul(pairing.Pair(pk.HTilde, c.S).Exp(x.R))

	t8 := pairing.Pair(pk.HTilde, pk.U).Exp(x.R).
		Mul(pairing.Pair(pk.G, pk.HCap).Exp(negR3Prime))

	return &NonRevocProofTauList{T1: t1, T2: t2, T3: t3, T4: t4, T5: t5, T6: t6, T7: t7, T8: t8}
}

// CreateTauListExpectedValues evaluates the linear map at the true
// secrets, written in terms of the published commitments, the current
// accumulator and its public key.
func CreateTauListExpectedValues(pk *RevocationPublicKey, accum *Accumulator,
	accumPK *AccumulatorPublicKey, c *NonRevocProofCList) *NonRevocProofTauList {

	t1 := c.E
	t2 := pairing.IdentityG1()
	t3 := pairing.Pair(pk.H0.Mul(c.G), pk.HCap).
		Mul(pairing.Pair(c.A, pk.Y).Inverse())
	t4 := pairing.Pair(c.G, accum.Acc).
		Mul(pairing.Pair(pk.G, c.W).Inverse()).
		Mul(accumPK.Z.Inverse())
	t5 := c.D
	t6 := pairing.IdentityG1()
	t7 := pairing.Pair(pk.PK.Mul(c.G), c.S).
		Mul(pairing.Pair(pk.G, pk.GDash).Inverse())
	t8 := pairing.Pair(c.G, pk.U).
		Mul(pairing.Pair(pk.G, c.U).Inverse())

	return &NonRevocProofTauList{T1: t1, T2: t2, T3: t3, T4: t4, T5: t5, T6: t6, T7: t7, T8: t8}
}
