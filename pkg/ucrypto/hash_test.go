// Copyright 2025 MRJCrunch

package ucrypto

import (
	"math/big"
	"testing"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
)

func TestIntToBytes(t *testing.T) {
	t.Run("zero encodes as a single zero byte", func(t *testing.T) {
		got := IntToBytes(big.NewInt(0))
		if len(got) != 1 || got[0] != 0 {
			t.Errorf("expected [0], got %v", got)
		}
	})

	t.Run("no leading zero bytes", func(t *testing.T) {
		got := IntToBytes(big.NewInt(256))
		if len(got) != 2 || got[0] != 1 || got[1] != 0 {
			t.Errorf("expected [1 0], got %v", got)
		}
	})

	t.Run("big-endian ordering", func(t *testing.T) {
		got := IntToBytes(big.NewInt(0x0102))
		if got[0] != 1 || got[1] != 2 {
			t.Errorf("expected [1 2], got %v", got)
		}
	})
}

func TestHashAsInt(t *testing.T) {
	a := big.NewInt(12345)
	b := big.NewInt(67890)

	t.Run("deterministic", func(t *testing.T) {
		if HashAsInt(a, b).Cmp(HashAsInt(a, b)) != 0 {
			t.Error("same inputs must hash identically")
		}
	})

	t.Run("order sensitive", func(t *testing.T) {
		if HashAsInt(a, b).Cmp(HashAsInt(b, a)) == 0 {
			t.Error("reordered inputs must not collide")
		}
	})

	t.Run("folded below the nonce bound", func(t *testing.T) {
		bound := new(big.Int).Lsh(big.NewInt(1), cl.LargeNonce)
		for i := int64(0); i < 32; i++ {
			h := HashAsInt(big.NewInt(i))
			if h.Cmp(bound) >= 0 {
				t.Fatalf("hash %v exceeds 2^%d", h, cl.LargeNonce)
			}
		}
	})
}

func TestChallengeTranscript(t *testing.T) {
	nonce := big.NewInt(42)

	t.Run("tau values hash before C values", func(t *testing.T) {
		tr := NewTranscript()
		tr.AppendTau(big.NewInt(1))
		tr.AppendC(big.NewInt(2))

		direct := HashAsInt(nonce, big.NewInt(1), big.NewInt(2))
		if tr.Challenge(nonce).Cmp(direct) != 0 {
			t.Error("transcript challenge must equal the direct hash")
		}
	})

	t.Run("C list preserves append order", func(t *testing.T) {
		tr := NewTranscript()
		tr.AppendC(big.NewInt(300), big.NewInt(5))
		clist := tr.CList()
		if len(clist) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(clist))
		}
		if new(big.Int).SetBytes(clist[0]).Int64() != 300 {
			t.Error("first entry must be 300")
		}
		if new(big.Int).SetBytes(clist[1]).Int64() != 5 {
			t.Error("second entry must be 5")
		}
	})

	t.Run("byte encodings survive the int round trip", func(t *testing.T) {
		tr := NewTranscript()
		tr.AppendCBytes([]byte{0, 1, 2})
		clist := tr.CList()
		// the leading zero byte is not canonical and drops out
		if new(big.Int).SetBytes(clist[0]).Int64() != 258 {
			t.Errorf("expected 258, got %v", clist[0])
		}
	})
}

func TestEncodeAttr(t *testing.T) {
	t.Run("numeric attributes pass through", func(t *testing.T) {
		if EncodeAttr("28").Int64() != 28 {
			t.Error("numeric attribute must encode to itself")
		}
	})

	t.Run("string attributes hash", func(t *testing.T) {
		enc := EncodeAttr("Alex")
		if enc.BitLen() < 200 {
			t.Error("hashed attribute should be close to 256 bits")
		}
		if enc.Cmp(EncodeAttr("Alex")) != 0 {
			t.Error("encoding must be deterministic")
		}
		if enc.Cmp(EncodeAttr("Bob")) == 0 {
			t.Error("distinct strings must not collide")
		}
	})

	t.Run("negative numbers hash instead of passing through", func(t *testing.T) {
		if EncodeAttr("-5").Sign() <= 0 {
			t.Error("negative raw values must encode via the hash")
		}
	})
}
