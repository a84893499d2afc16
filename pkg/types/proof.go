// Copyright 2025 MRJCrunch

package types

import (
	"math/big"
	"sort"
)

// PrimaryEqualProof proves knowledge of a CL signature with selective
// disclosure: responses for e and v, one response per unrevealed
// attribute in M, and the master-secret and context responses M1, M2.
type PrimaryEqualProof struct {
	APrime        *big.Int
	E             *big.Int
	V             *big.Int
	M             map[string]*big.Int
	M1            *big.Int
	M2            *big.Int
	RevealedAttrs []string
}

// PrimaryPredicateGEProof proves attr >= value via the four-square
// decomposition of the gap. U and R are keyed "0".."3" plus "DELTA" in R
// and T; Mj is the attribute response shared with the equality proof.
type PrimaryPredicateGEProof struct {
	U         map[string]*big.Int
	R         map[string]*big.Int
	Mj        *big.Int
	Alpha     *big.Int
	T         map[string]*big.Int
	Predicate PredicateGE
}

// PrimaryProof is the strong-RSA half of a subproof.
type PrimaryProof struct {
	EqProof  *PrimaryEqualProof
	GEProofs []*PrimaryPredicateGEProof
}

// NonRevocProofXList is the scalar vector of the accumulator
// Sigma-protocol. During initialization it carries blinds; after
// finalization it carries the responses s_i = blind_i + cH*secret_i.
type NonRevocProofXList struct {
	Rho              *big.Int
	O                *big.Int
	C                *big.Int
	OPrime           *big.Int
	M                *big.Int
	MPrime           *big.Int
	T                *big.Int
	TPrime           *big.Int
	M2               *big.Int
	S                *big.Int
	R                *big.Int
	RPrime           *big.Int
	RPrimePrime      *big.Int
	RPrimePrimePrime *big.Int
}

// AsList returns the scalars in canonical order.
func (x *NonRevocProofXList) AsList() []*big.Int {
	return []*big.Int{x.Rho, x.O, x.C, x.OPrime, x.M, x.MPrime, x.T, x.TPrime,
		x.M2, x.S, x.R, x.RPrime, x.RPrimePrime, x.RPrimePrimePrime}
}

// XListFromList rebuilds an x-list from canonical order.
func XListFromList(vals []*big.Int) *NonRevocProofXList {
	return &NonRevocProofXList{
		Rho: vals[0], O: vals[1], C: vals[2], OPrime: vals[3],
		M: vals[4], MPrime: vals[5], T: vals[6], TPrime: vals[7],
		M2: vals[8], S: vals[9], R: vals[10], RPrime: vals[11],
		RPrimePrime: vals[12], RPrimePrimePrime: vals[13],
	}
}

// NonRevocProof is the finalized accumulator subproof.
type NonRevocProof struct {
	XList *NonRevocProofXList
	CList *NonRevocProofCList
}

// Proof pairs the primary subproof with its optional non-revocation
// companion for one schema.
type Proof struct {
	Primary  *PrimaryProof
	NonRevoc *NonRevocProof
}

// ProofInfo wraps a subproof with the schema it proves against.
type ProofInfo struct {
	Proof       *Proof
	SchemaSeqNo int
	IssuerDid   string
}

// AggregatedProof carries the Fiat-Shamir challenge and the C values it
// was computed over, as minimal big-endian encodings.
type AggregatedProof struct {
	CHash *big.Int
	CList [][]byte
}

// RequestedProof echoes the request back with the revealed raw values.
// revealed_attrs maps uuid to [schema_seq_no, raw, encoded].
type RequestedProof struct {
	RevealedAttrs     map[string][3]string
	Predicates        map[string]string
	SelfAttestedAttrs map[string]string
	UnrevealedAttrs   map[string]string
}

// NewRequestedProof returns an empty requested-proof echo.
func NewRequestedProof() *RequestedProof {
	return &RequestedProof{
		RevealedAttrs:     map[string][3]string{},
		Predicates:        map[string]string{},
		SelfAttestedAttrs: map[string]string{},
		UnrevealedAttrs:   map[string]string{},
	}
}

// FullProof is the prover's complete answer: per-schema subproofs keyed
// by stringified schema sequence id, the aggregated challenge, and the
// echoed request.
type FullProof struct {
	Proofs          map[string]*ProofInfo
	AggregatedProof *AggregatedProof
	RequestedProof  *RequestedProof
}

// SchemaSeqNos returns the subproof sequence numbers in ascending order,
// the canonical aggregation order shared by prover and verifier.
func (f *FullProof) SchemaSeqNos() []int {
	out := make([]int, 0, len(f.Proofs))
	for _, p := range f.Proofs {
		out = append(out, p.SchemaSeqNo)
	}
	sort.Ints(out)
	return out
}
