// Copyright 2025 MRJCrunch
//
// Package types defines the protocol records exchanged between issuer,
// prover and verifier, together with their canonical string-dictionary
// forms used on the wire. Integers travel as decimal strings; pairing
// points travel as compressed hex. Every record round-trips:
// decode(encode(x)) == x.
package types

import (
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
)

// SchemaKey globally identifies a credential definition.
type SchemaKey struct {
	Name     string
	Version  string
	IssuerID string
}

// Schema is a published credential definition: its key, the ordered
// attribute names it signs, and the sequence id assigned on publication.
type Schema struct {
	SchemaKey
	AttrNames []string
	SeqID     int
}

// ContainsAttr reports whether the schema signs the given attribute name.
func (s *Schema) ContainsAttr(name string) bool {
	for _, a := range s.AttrNames {
		if a == name {
			return true
		}
	}
	return false
}

// PublicKey is the issuer's CL public key. N is a product of two safe
// primes; S, Z, Rms, Rctxt and every R value lie in QR(N). R maps each
// attribute name of the schema to its base.
type PublicKey struct {
	N     *big.Int
	S     *big.Int
	Z     *big.Int
	Rms   *big.Int
	Rctxt *big.Int
	R     map[string]*big.Int
	SeqID int
}

// SecretKey is the issuer's CL secret key: the Sophie Germain halves of
// the safe primes. Their product is the order of QR(N).
type SecretKey struct {
	PPrime *big.Int
	QPrime *big.Int
}

// Order returns p'q', the order of the quadratic-residue subgroup.
func (sk *SecretKey) Order() *big.Int {
	return new(big.Int).Mul(sk.PPrime, sk.QPrime)
}

// AttributeValues carries an attribute in both its raw form and the
// encoded integer the signature binds.
type AttributeValues struct {
	Raw     string
	Encoded *big.Int
}

// Attributes maps attribute names to their values for one claim.
type Attributes map[string]AttributeValues

// ClaimRequest is the prover's blinded request: U commits to the master
// secret in the primary group, Ur (optional) in the pairing group.
type ClaimRequest struct {
	UserID string
	U      *big.Int
	Ur     *pairing.PointG1
}

// ClaimInitData is the prover-side state kept between request and claim:
// the commitment U and the blind vPrime folded into the final signature.
type ClaimInitData struct {
	U      *big.Int
	VPrime *big.Int
}

// NonRevocClaimInitData is the pairing-group analogue of ClaimInitData.
type NonRevocClaimInitData struct {
	U      *pairing.PointG1
	VPrime *big.Int
}

// PrimaryClaim is a CL signature on the attribute vector, the master
// secret and the context attribute m2.
type PrimaryClaim struct {
	M2 *big.Int
	A  *big.Int
	E  *big.Int
	V  *big.Int
}

// Claims is the signature pair returned by issuance: the primary claim is
// always present, the non-revocation claim only when requested.
type Claims struct {
	Primary  *PrimaryClaim
	NonRevoc *NonRevocationClaim
}

// AttributeInfo names a revealed attribute in a proof request, optionally
// pinned to a schema or claim definition sequence number.
type AttributeInfo struct {
	Name          string
	SchemaSeqNo   *int
	ClaimDefSeqNo *int
}

// PredicateGE requests a proof that an attribute is at least Value.
type PredicateGE struct {
	AttrName      string
	Value         int
	SchemaSeqNo   *int
	ClaimDefSeqNo *int
}

// ProofInput is the verifier's challenge: a nonce, revealed attributes
// and predicates, each keyed by a request-scoped uuid.
type ProofInput struct {
	Name          string
	Version       string
	Nonce         *big.Int
	RevealedAttrs map[string]AttributeInfo
	Predicates    map[string]PredicateGE
}

// ProofClaims groups, per schema, the claims selected for a proof and
// the parts of the request they satisfy.
type ProofClaims struct {
	Claims        *Claims
	RevealedAttrs []AttributeInfo
	Predicates    []PredicateGE
}
