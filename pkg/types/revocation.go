// Copyright 2025 MRJCrunch

package types

import (
	"math/big"
	"sort"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
)

// RevocationPublicKey holds the pairing-group generators of the
// revocation accumulator scheme. g, h, h0..h2 and htilde live in G1;
// gDash, hCap, u and y live in G2; pk = g^sk and y = hCap^x.
type RevocationPublicKey struct {
	G      *pairing.PointG1
	GDash  *pairing.PointG2
	H      *pairing.PointG1
	H0     *pairing.PointG1
	H1     *pairing.PointG1
	H2     *pairing.PointG1
	HTilde *pairing.PointG1
	HCap   *pairing.PointG2
	U      *pairing.PointG2
	PK     *pairing.PointG1
	Y      *pairing.PointG2
	SeqID  int
}

// RevocationSecretKey holds the issuer exponents behind PK and Y.
type RevocationSecretKey struct {
	X  *big.Int
	Sk *big.Int
}

// IndexSet is the set V of active accumulator indices.
type IndexSet map[int]bool

// NewIndexSet returns an empty index set.
func NewIndexSet() IndexSet { return IndexSet{} }

// Contains reports membership of i.
func (v IndexSet) Contains(i int) bool { return v[i] }

// Add inserts i.
func (v IndexSet) Add(i int) { v[i] = true }

// Remove deletes i.
func (v IndexSet) Remove(i int) { delete(v, i) }

// Copy returns an independent copy.
func (v IndexSet) Copy() IndexSet {
	out := make(IndexSet, len(v))
	for i := range v {
		out[i] = true
	}
	return out
}

// Equal reports whether two sets hold the same indices.
func (v IndexSet) Equal(o IndexSet) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if !o[i] {
			return false
		}
	}
	return true
}

// Sorted returns the indices in ascending order.
func (v IndexSet) Sorted() []int {
	out := make([]int, 0, len(v))
	for i := range v {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Accumulator is the issuer-published revocation state. The invariant
// acc = prod over i in V of tails.GDash[L+1-i] holds after every update;
// an empty V leaves acc at the identity of G2.
type Accumulator struct {
	IA           string
	Acc          *pairing.PointG2
	V            IndexSet
	L            int
	CurrentIndex int
}

// IsFull reports whether every index has been handed out.
func (a *Accumulator) IsFull() bool { return a.CurrentIndex >= a.L }

// AccumulatorPublicKey carries z = e(g, gDash)^(gamma^(L+1)), the pairing
// constant of the membership relation.
type AccumulatorPublicKey struct {
	Z *pairing.PointGT
}

// AccumulatorSecretKey is the tails trapdoor.
type AccumulatorSecretKey struct {
	Gamma *big.Int
}

// Tails is the deterministic generator-power sequence
// tails[i] = g^(gamma^i), i in [1, 2L] without L+1, carried in both
// source groups: G for witness material, GDash for accumulator updates.
type Tails struct {
	L     int
	G     map[int]*pairing.PointG1
	GDash map[int]*pairing.PointG2
}

// GAt returns the G1 tail at index i.
func (t *Tails) GAt(i int) (*pairing.PointG1, bool) {
	p, ok := t.G[i]
	return p, ok
}

// GDashAt returns the G2 tail at index i.
func (t *Tails) GDashAt(i int) (*pairing.PointG2, bool) {
	p, ok := t.GDash[i]
	return p, ok
}

// WitnessCredential is the holder's membership evidence: sigmaI and uI
// are the issuer-derived G2 values, gI the holder's tail, omega the
// product of the other members' tails, and V the accumulator state the
// witness was last synchronized against.
type WitnessCredential struct {
	SigmaI *pairing.PointG2
	UI     *pairing.PointG2
	GI     *pairing.PointG1
	Omega  *pairing.PointG2
	V      IndexSet
}

// NonRevocationClaim is the revocable half of an issued claim.
type NonRevocationClaim struct {
	IA      string
	Sigma   *pairing.PointG1
	C       *big.Int
	V       *big.Int
	Witness *WitnessCredential
	GI      *pairing.PointG1
	I       int
	M2      *big.Int
}
