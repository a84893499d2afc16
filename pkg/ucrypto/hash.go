// Copyright 2025 MRJCrunch
//
// Package ucrypto carries the canonical hash and encoding contracts of the
// protocol: the Fiat-Shamir challenge hash, minimal big-endian integer
// encoding, and attribute-to-integer encoding. Every value here is part of
// the wire-level contract; deviations break interoperability.
package ucrypto

import (
	"crypto/sha256"
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
)

// IntToBytes returns the minimal big-endian encoding of a non-negative
// integer: no leading zero byte, except the single zero byte for 0 itself.
func IntToBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	return v.Bytes()
}

// HashAsInt hashes the given integers in order with SHA-256 over their
// minimal big-endian encodings, folded into an integer below 2^LargeNonce.
func HashAsInt(values ...*big.Int) *big.Int {
	h := sha256.New()
	for _, v := range values {
		h.Write(IntToBytes(v))
	}
	digest := new(big.Int).SetBytes(h.Sum(nil))
	bound := new(big.Int).Lsh(big.NewInt(1), cl.LargeNonce)
	return digest.Mod(digest, bound)
}

// ChallengeTranscript accumulates the commitment contributions of every
// subproof. Builders append opaque tau and C values; the orchestrator
// derives the single challenge binding them all. Only group-element
// encodings enter the transcript; witness bookkeeping never does.
type ChallengeTranscript struct {
	tau []*big.Int
	c   []*big.Int
}

// NewTranscript returns an empty transcript.
func NewTranscript() *ChallengeTranscript {
	return &ChallengeTranscript{}
}

// AppendTau appends tau (commitment) values in order.
func (t *ChallengeTranscript) AppendTau(values ...*big.Int) {
	t.tau = append(t.tau, values...)
}

// AppendC appends C (common) values in order.
func (t *ChallengeTranscript) AppendC(values ...*big.Int) {
	t.c = append(t.c, values...)
}

// AppendCBytes appends a C value given as a group-element encoding.
func (t *ChallengeTranscript) AppendCBytes(encodings ...[]byte) {
	for _, enc := range encodings {
		t.c = append(t.c, new(big.Int).SetBytes(enc))
	}
}

// Challenge folds the nonce, the tau list and the C list into the
// Fiat-Shamir challenge. Tau values hash before C values.
func (t *ChallengeTranscript) Challenge(nonce *big.Int) *big.Int {
	values := make([]*big.Int, 0, 1+len(t.tau)+len(t.c))
	values = append(values, nonce)
	values = append(values, t.tau...)
	values = append(values, t.c...)
	return HashAsInt(values...)
}

// CList returns the accumulated C values as minimal big-endian encodings,
// in append order. This is what the aggregated proof publishes.
func (t *ChallengeTranscript) CList() [][]byte {
	out := make([][]byte, len(t.c))
	for i, v := range t.c {
		out[i] = IntToBytes(v)
	}
	return out
}
