// Copyright 2025 MRJCrunch

package cl

import (
	"math/big"
	"testing"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
)

func TestRandomExactBits(t *testing.T) {
	for i := 0; i < 16; i++ {
		v, err := RandomExactBits(256)
		if err != nil {
			t.Fatal(err)
		}
		if v.BitLen() != 256 {
			t.Fatalf("expected exactly 256 bits, got %d", v.BitLen())
		}
	}
}

func TestRandomBitsBound(t *testing.T) {
	bound := new(big.Int).Lsh(big.NewInt(1), 80)
	for i := 0; i < 16; i++ {
		v, err := RandomBits(80)
		if err != nil {
			t.Fatal(err)
		}
		if v.Cmp(bound) >= 0 {
			t.Fatalf("value %v exceeds 2^80", v)
		}
	}
}

func TestRandomPrimeInRange(t *testing.T) {
	low := new(big.Int).Lsh(big.NewInt(1), 64)
	width := new(big.Int).Lsh(big.NewInt(1), 16)
	high := new(big.Int).Add(low, width)

	e, err := RandomPrimeInRange(64, 16)
	if err != nil {
		t.Fatal(err)
	}
	if e.Cmp(low) < 0 || e.Cmp(high) >= 0 {
		t.Fatalf("prime %v outside [2^64, 2^64+2^16)", e)
	}
	if !e.ProbablyPrime(40) {
		t.Fatalf("%v is not prime", e)
	}
}

func TestRandomSafePrime(t *testing.T) {
	p, err := RandomSafePrime(128, 16)
	if err != nil {
		t.Fatal(err)
	}
	if p.BitLen() != 128 {
		t.Fatalf("expected 128 bits, got %d", p.BitLen())
	}
	pPrime := new(big.Int).Rsh(p, 1)
	if !p.ProbablyPrime(40) || !pPrime.ProbablyPrime(40) {
		t.Fatal("p and (p-1)/2 must both be prime")
	}
}

func TestTestPrimesAreSafe(t *testing.T) {
	for _, p := range []*big.Int{TestPrimes1P, TestPrimes1Q, TestPrimes2P, TestPrimes2Q} {
		if p.BitLen() != 1024 {
			t.Fatalf("fixture prime has %d bits", p.BitLen())
		}
		if !p.ProbablyPrime(20) {
			t.Fatal("fixture prime is not prime")
		}
		half := new(big.Int).Rsh(p, 1)
		if !half.ProbablyPrime(20) {
			t.Fatal("fixture prime is not safe")
		}
	}
}

func TestRandomQR(t *testing.T) {
	p := big.NewInt(11)
	q := big.NewInt(23)
	n := new(big.Int).Mul(p, q)

	for i := 0; i < 8; i++ {
		r, err := RandomQR(n)
		if err != nil {
			t.Fatal(err)
		}
		// a residue has a square root mod both factors
		for _, f := range []*big.Int{p, q} {
			exp := new(big.Int).Rsh(new(big.Int).Sub(f, big.NewInt(1)), 1)
			leg := new(big.Int).Exp(new(big.Int).Mod(r, f), exp, f)
			if leg.Cmp(big.NewInt(1)) != 0 && new(big.Int).Mod(r, f).Sign() != 0 {
				t.Fatalf("%v is not a quadratic residue mod %v", r, f)
			}
		}
	}
}

func TestModPow(t *testing.T) {
	n := big.NewInt(101)

	t.Run("positive exponent", func(t *testing.T) {
		got, err := ModPow(big.NewInt(2), big.NewInt(10), n)
		if err != nil {
			t.Fatal(err)
		}
		if got.Int64() != 1024%101 {
			t.Fatalf("expected %d, got %v", 1024%101, got)
		}
	})

	t.Run("negative exponent inverts", func(t *testing.T) {
		pos, _ := ModPow(big.NewInt(2), big.NewInt(10), n)
		neg, err := ModPow(big.NewInt(2), big.NewInt(-10), n)
		if err != nil {
			t.Fatal(err)
		}
		prod := new(big.Int).Mul(pos, neg)
		if prod.Mod(prod, n).Int64() != 1 {
			t.Fatal("x^10 * x^-10 must be 1 mod n")
		}
	})
}

func TestFourSquares(t *testing.T) {
	cases := []int64{0, 1, 2, 7, 10, 25, 107, 112, 1000, 12345}
	for _, delta := range cases {
		us, err := FourSquares(big.NewInt(delta))
		if err != nil {
			t.Fatalf("delta %d: %v", delta, err)
		}
		sum := new(big.Int)
		for _, u := range us {
			sum.Add(sum, new(big.Int).Mul(u, u))
		}
		if sum.Int64() != delta {
			t.Fatalf("delta %d: squares sum to %v", delta, sum)
		}
	}

	t.Run("negative delta fails with a crypto error", func(t *testing.T) {
		_, err := FourSquares(big.NewInt(-2))
		if err == nil {
			t.Fatal("expected an error")
		}
		if !errors.IsCrypto(err) {
			t.Fatalf("expected a CRYPTO error, got %v", err)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _ := FourSquares(big.NewInt(107))
		b, _ := FourSquares(big.NewInt(107))
		for i := range a {
			if a[i].Cmp(b[i]) != 0 {
				t.Fatal("decomposition must be deterministic")
			}
		}
	})
}
