// Copyright 2025 MRJCrunch
//
// Package cl implements the big-integer arithmetic of the
// Camenisch-Lysyanskaya signature scheme over a strong-RSA group:
// safe-prime generation, sampling in the quadratic-residue subgroup,
// prime selection for the signature exponent, and the four-square
// decomposition backing the >= predicate proofs.
package cl

import (
	"crypto/rand"
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
)

var (
	bigONE = big.NewInt(1)
	bigTWO = big.NewInt(2)
)

// RandomBits returns a uniformly random non-negative integer below 2^bits.
func RandomBits(bits uint) (*big.Int, error) {
	max := new(big.Int).Lsh(bigONE, bits)
	r, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCrypto, err, "randomness source failed")
	}
	return r, nil
}

// RandomExactBits returns a random integer of exactly the given bit length:
// the top bit is always set.
func RandomExactBits(bits uint) (*big.Int, error) {
	r, err := RandomBits(bits - 1)
	if err != nil {
		return nil, err
	}
	high := new(big.Int).Lsh(bigONE, bits-1)
	return r.Add(r, high), nil
}

// RandomInRange returns a uniformly random integer in [min, max).
func RandomInRange(min, max *big.Int) (*big.Int, error) {
	width := new(big.Int).Sub(max, min)
	if width.Sign() <= 0 {
		return nil, errors.Crypto("empty sampling range [%v, %v)", min, max)
	}
	r, err := rand.Int(rand.Reader, width)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCrypto, err, "randomness source failed")
	}
	return r.Add(r, min), nil
}

// RandomQR samples a uniformly random element of QR(n) by squaring a
// random unit mod n.
func RandomQR(n *big.Int) (*big.Int, error) {
	for {
		r, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, errors.Wrap(errors.CodeCrypto, err, "randomness source failed")
		}
		if r.Sign() == 0 {
			continue
		}
		if new(big.Int).GCD(nil, nil, r, n).Cmp(bigONE) != 0 {
			continue
		}
		return r.Mul(r, r).Mod(r, n), nil
	}
}

// RandomSafePrime produces a safe prime p = 2p'+1 of the requested number
// of bits. confidence is the number of Miller-Rabin rounds applied to p'.
func RandomSafePrime(bits int, confidence int) (*big.Int, error) {
	p2 := new(big.Int)
	for {
		p, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			return nil, errors.Wrap(errors.CodeCrypto, err, "prime generation failed")
		}
		p2.Rsh(p, 1) // p2 = (p - 1)/2
		if p2.ProbablyPrime(confidence) {
			return p, nil
		}
	}
}

// RandomPrimeInRange returns a random prime in [2^start, 2^start + 2^end).
func RandomPrimeInRange(start, end uint) (*big.Int, error) {
	low := new(big.Int).Lsh(bigONE, start)
	width := new(big.Int).Lsh(bigONE, end)
	high := new(big.Int).Add(low, width)
	for {
		e, err := RandomInRange(low, high)
		if err != nil {
			return nil, err
		}
		// make it odd before probing upward
		if e.Bit(0) == 0 {
			e.Add(e, bigONE)
		}
		for ; e.Cmp(high) < 0; e.Add(e, bigTWO) {
			if e.ProbablyPrime(40) {
				return e, nil
			}
		}
	}
}

// ModInverse returns the inverse of a mod n and whether it exists.
func ModInverse(a, n *big.Int) (*big.Int, bool) {
	inv := new(big.Int).ModInverse(a, n)
	if inv == nil {
		return nil, false
	}
	return inv, true
}

// ModPow computes base^exp mod n, handling negative exponents via the
// modular inverse of the base.
func ModPow(base, exp, n *big.Int) (*big.Int, error) {
	if exp.Sign() >= 0 {
		return new(big.Int).Exp(base, exp, n), nil
	}
	inv, ok := ModInverse(base, n)
	if !ok {
		return nil, errors.Crypto("element is not invertible mod n")
	}
	return new(big.Int).Exp(inv, new(big.Int).Neg(exp), n), nil
}

// FourSquares returns a deterministic Lagrange decomposition
// delta = u0^2 + u1^2 + u2^2 + u3^2. delta must be non-negative; predicate
// deltas are small, so the descending search terminates quickly.
func FourSquares(delta *big.Int) ([4]*big.Int, error) {
	var us [4]*big.Int
	if delta.Sign() < 0 {
		return us, errors.Crypto("cannot decompose negative delta %v into four squares", delta)
	}

	u0 := new(big.Int).Sqrt(delta)
	for ; u0.Sign() >= 0; u0.Sub(u0, bigONE) {
		rem0 := new(big.Int).Mul(u0, u0)
		rem0.Sub(delta, rem0)
		u1 := new(big.Int).Sqrt(rem0)
		for ; u1.Sign() >= 0; u1.Sub(u1, bigONE) {
			rem1 := new(big.Int).Mul(u1, u1)
			rem1.Sub(rem0, rem1)
			u2 := new(big.Int).Sqrt(rem1)
			for ; u2.Sign() >= 0; u2.Sub(u2, bigONE) {
				rem2 := new(big.Int).Mul(u2, u2)
				rem2.Sub(rem1, rem2)
				u3 := new(big.Int).Sqrt(rem2)
				check := new(big.Int).Mul(u3, u3)
				if check.Cmp(rem2) == 0 {
					us[0] = new(big.Int).Set(u0)
					us[1] = new(big.Int).Set(u1)
					us[2] = new(big.Int).Set(u2)
					us[3] = u3
					return us, nil
				}
			}
		}
	}
	return us, errors.Crypto("no four-square decomposition found for %v", delta)
}
