// Copyright 2025 MRJCrunch

package pairing

import (
	"math/big"
	"testing"
)

func TestBilinearity(t *testing.T) {
	a, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	b, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}

	// e(g^a, h^b) == e(g, h)^(ab)
	left := Pair(GenG1().Exp(a), GenG2().Exp(b))
	ab := new(big.Int).Mul(a, b)
	right := Pair(GenG1(), GenG2()).Exp(ab)
	if !left.Equal(right) {
		t.Fatal("pairing is not bilinear")
	}
}

func TestGroupOps(t *testing.T) {
	g := GenG1()
	x, _ := RandomScalar()

	t.Run("inverse cancels", func(t *testing.T) {
		p := g.Exp(x)
		if !p.Mul(p.Inverse()).IsIdentity() {
			t.Fatal("p * p^-1 must be the identity")
		}
	})

	t.Run("identity is neutral", func(t *testing.T) {
		p := g.Exp(x)
		if !p.Mul(IdentityG1()).Equal(p) {
			t.Fatal("p * 1 must equal p")
		}
	})

	t.Run("negative exponents act through the inverse", func(t *testing.T) {
		neg := g.Exp(new(big.Int).Neg(x))
		if !neg.Equal(g.Exp(x).Inverse()) {
			t.Fatal("g^-x must equal (g^x)^-1")
		}
	})

	t.Run("exponent additivity", func(t *testing.T) {
		y, _ := RandomScalar()
		sum := new(big.Int).Add(x, y)
		if !g.Exp(x).Mul(g.Exp(y)).Equal(g.Exp(sum)) {
			t.Fatal("g^x * g^y must equal g^(x+y)")
		}
	})
}

func TestGTOps(t *testing.T) {
	x, _ := RandomScalar()
	e := Pair(GenG1(), GenG2())

	if !e.Exp(x).Mul(e.Exp(x).Inverse()).Equal(IdentityGT()) {
		t.Fatal("t * t^-1 must be the GT identity")
	}
	if !e.Mul(IdentityGT()).Equal(e) {
		t.Fatal("t * 1 must equal t")
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	t.Run("G1", func(t *testing.T) {
		p, err := RandomG1()
		if err != nil {
			t.Fatal(err)
		}
		back, err := G1FromHex(p.Hex())
		if err != nil {
			t.Fatal(err)
		}
		if !p.Equal(back) {
			t.Fatal("G1 hex round trip failed")
		}
	})

	t.Run("G2", func(t *testing.T) {
		p, err := RandomG2()
		if err != nil {
			t.Fatal(err)
		}
		back, err := G2FromHex(p.Hex())
		if err != nil {
			t.Fatal(err)
		}
		if !p.Equal(back) {
			t.Fatal("G2 hex round trip failed")
		}
	})

	t.Run("GT", func(t *testing.T) {
		x, _ := RandomScalar()
		e := Pair(GenG1(), GenG2()).Exp(x)
		back, err := GTFromHex(e.Hex())
		if err != nil {
			t.Fatal(err)
		}
		if !e.Equal(back) {
			t.Fatal("GT hex round trip failed")
		}
	})

	t.Run("garbage rejects", func(t *testing.T) {
		if _, err := G1FromHex("zz"); err == nil {
			t.Fatal("invalid hex must fail")
		}
		if _, err := G1FromBytes([]byte{1, 2, 3}); err == nil {
			t.Fatal("invalid point bytes must fail")
		}
	})
}
