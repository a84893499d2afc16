// Copyright 2025 MRJCrunch
//
// Package pairing is the bilinear-group capability layer of the revocation
// accumulator. It wraps gnark-crypto's BLS12-381 so that accumulator and
// proof code works with opaque G1/G2/GT points and never touches concrete
// curve types. All exponents are taken mod the group order; negative
// exponents act through the point inverse.
package pairing

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
)

// PointG1 is an element of G1.
type PointG1 struct {
	p bls12381.G1Affine
}

// PointG2 is an element of G2.
type PointG2 struct {
	p bls12381.G2Affine
}

// PointGT is an element of the target group GT.
type PointGT struct {
	p bls12381.GT
}

// GroupOrder returns the prime order r of G1, G2 and GT.
func GroupOrder() *big.Int {
	return fr.Modulus()
}

// GenG1 returns the canonical generator of G1.
func GenG1() *PointG1 {
	_, _, g1, _ := bls12381.Generators()
	return &PointG1{p: g1}
}

// GenG2 returns the canonical generator of G2.
func GenG2() *PointG2 {
	_, _, _, g2 := bls12381.Generators()
	return &PointG2{p: g2}
}

// IdentityG1 returns the neutral element of G1.
func IdentityG1() *PointG1 {
	return &PointG1{}
}

// IdentityG2 returns the neutral element of G2.
func IdentityG2() *PointG2 {
	return &PointG2{}
}

// IdentityGT returns the neutral element of GT.
func IdentityGT() *PointGT {
	var one bls12381.GT
	one.SetOne()
	return &PointGT{p: one}
}

// RandomScalar returns a uniformly random scalar in [1, r).
func RandomScalar() (*big.Int, error) {
	max := new(big.Int).Sub(GroupOrder(), big.NewInt(1))
	s, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCrypto, err, "randomness source failed")
	}
	return s.Add(s, big.NewInt(1)), nil
}

// RandomG1 returns a uniformly random element of G1.
func RandomG1() (*PointG1, error) {
	s, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	return GenG1().Exp(s), nil
}

// RandomG2 returns a uniformly random element of G2.
func RandomG2() (*PointG2, error) {
	s, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	return GenG2().Exp(s), nil
}

func reduce(k *big.Int) *big.Int {
	return new(big.Int).Mod(k, GroupOrder())
}

// --- G1 ---

// Mul returns a*b (the group operation, written multiplicatively).
func (a *PointG1) Mul(b *PointG1) *PointG1 {
	var jac, other bls12381.G1Jac
	jac.FromAffine(&a.p)
	other.FromAffine(&b.p)
	jac.AddAssign(&other)
	var out PointG1
	out.p.FromJacobian(&jac)
	return &out
}

// Exp returns a^k.
func (a *PointG1) Exp(k *big.Int) *PointG1 {
	var out PointG1
	out.p.ScalarMultiplication(&a.p, reduce(k))
	return &out
}

// Inverse returns a^-1.
func (a *PointG1) Inverse() *PointG1 {
	var out PointG1
	out.p.Neg(&a.p)
	return &out
}

// Equal reports whether two points are the same element.
func (a *PointG1) Equal(b *PointG1) bool {
	return a.p.Equal(&b.p)
}

// IsIdentity reports whether a is the neutral element.
func (a *PointG1) IsIdentity() bool {
	return a.p.IsInfinity()
}

// Bytes returns the canonical compressed encoding.
func (a *PointG1) Bytes() []byte {
	b := a.p.Bytes()
	return b[:]
}

// Hex returns the compressed encoding as a hex string.
func (a *PointG1) Hex() string {
	return hex.EncodeToString(a.Bytes())
}

// G1FromBytes decodes a compressed G1 point.
func G1FromBytes(data []byte) (*PointG1, error) {
	var out PointG1
	if _, err := out.p.SetBytes(data); err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "invalid G1 point encoding")
	}
	return &out, nil
}

// G1FromHex decodes a compressed G1 point from hex.
func G1FromHex(s string) (*PointG1, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "invalid G1 hex encoding")
	}
	return G1FromBytes(data)
}

// --- G2 ---

// Mul returns a*b.
func (a *PointG2) Mul(b *PointG2) *PointG2 {
	var jac, other bls12381.G2Jac
	jac.FromAffine(&a.p)
	other.FromAffine(&b.p)
	jac.AddAssign(&other)
	var out PointG2
	out.p.FromJacobian(&jac)
	return &out
}

// Exp returns a^k.
func (a *PointG2) Exp(k *big.Int) *PointG2 {
	var out PointG2
	out.p.ScalarMultiplication(&a.p, reduce(k))
	return &out
}

// Inverse returns a^-1.
func (a *PointG2) Inverse() *PointG2 {
	var out PointG2
	out.p.Neg(&a.p)
	return &out
}

// Equal reports whether two points are the same element.
func (a *PointG2) Equal(b *PointG2) bool {
	return a.p.Equal(&b.p)
}

// IsIdentity reports whether a is the neutral element.
func (a *PointG2) IsIdentity() bool {
	return a.p.IsInfinity()
}

// Bytes returns the canonical compressed encoding.
func (a *PointG2) Bytes() []byte {
	b := a.p.Bytes()
	return b[:]
}

// Hex returns the compressed encoding as a hex string.
func (a *PointG2) Hex() string {
	return hex.EncodeToString(a.Bytes())
}

// G2FromBytes decodes a compressed G2 point.
func G2FromBytes(data []byte) (*PointG2, error) {
	var out PointG2
	if _, err := out.p.SetBytes(data); err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "invalid G2 point encoding")
	}
	return &out, nil
}

// G2FromHex decodes a compressed G2 point from hex.
func G2FromHex(s string) (*PointG2, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "invalid G2 hex encoding")
	}
	return G2FromBytes(data)
}

// --- GT ---

// Mul returns a*b.
func (a *PointGT) Mul(b *PointGT) *PointGT {
	var out PointGT
	out.p.Mul(&a.p, &b.p)
	return &out
}

// Exp returns a^k.
func (a *PointGT) Exp(k *big.Int) *PointGT {
	var out PointGT
	out.p.Exp(a.p, reduce(k))
	return &out
}

// Inverse returns a^-1.
func (a *PointGT) Inverse() *PointGT {
	var out PointGT
	out.p.Inverse(&a.p)
	return &out
}

// Equal reports whether two elements are the same.
func (a *PointGT) Equal(b *PointGT) bool {
	return a.p.Equal(&b.p)
}

// Bytes returns the canonical encoding.
func (a *PointGT) Bytes() []byte {
	return a.p.Marshal()
}

// Hex returns the canonical encoding as a hex string.
func (a *PointGT) Hex() string {
	return hex.EncodeToString(a.Bytes())
}

// GTFromHex decodes a GT element from hex.
func GTFromHex(s string) (*PointGT, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "invalid GT hex encoding")
	}
	var out PointGT
	if err := out.p.Unmarshal(data); err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "invalid GT encoding")
	}
	return &out, nil
}

// Pair computes the bilinear map e(a, b).
func Pair(a *PointG1, b *PointG2) *PointGT {
	gt, err := bls12381.Pair([]bls12381.G1Affine{a.p}, []bls12381.G2Affine{b.p})
	if err != nil {
		// Pair only errors on mismatched slice lengths.
		panic(err)
	}
	return &PointGT{p: gt}
}
