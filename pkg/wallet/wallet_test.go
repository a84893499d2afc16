// Copyright 2025 MRJCrunch
//
// Tests for the in-memory and KV wallet backends: the persistence
// contract, NotFound behavior, and repository read-through.

package wallet

import (
	"context"
	"math/big"
	"testing"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/repository"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

var testKey = types.SchemaKey{Name: "GVT", Version: "1.0", IssuerID: "issuer1"}

func testWallets(t *testing.T) map[string]ProverWallet {
	t.Helper()
	return map[string]ProverWallet{
		"memory": NewInMemoryWallet("BzfFCYk", nil),
		"kv":     NewKVWallet("BzfFCYk", dbm.NewMemDB(), nil),
	}
}

func TestWalletMasterSecret(t *testing.T) {
	ctx := context.Background()
	for name, w := range testWallets(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := w.GetMasterSecret(ctx, testKey); !errors.IsNotFound(err) {
				t.Fatalf("expected NotFound before submit, got %v", err)
			}
			ms := big.NewInt(123456789)
			if err := w.SubmitMasterSecret(ctx, testKey, ms); err != nil {
				t.Fatal(err)
			}
			got, err := w.GetMasterSecret(ctx, testKey)
			if err != nil {
				t.Fatal(err)
			}
			if got.Cmp(ms) != 0 {
				t.Fatalf("expected %v, got %v", ms, got)
			}
		})
	}
}

func TestWalletClaimInitData(t *testing.T) {
	ctx := context.Background()
	for name, w := range testWallets(t) {
		t.Run(name, func(t *testing.T) {
			data := &types.ClaimInitData{U: big.NewInt(42), VPrime: big.NewInt(77)}
			if err := w.SubmitPrimaryClaimInitData(ctx, testKey, data); err != nil {
				t.Fatal(err)
			}
			got, err := w.GetPrimaryClaimInitData(ctx, testKey)
			if err != nil {
				t.Fatal(err)
			}
			if got.U.Cmp(data.U) != 0 || got.VPrime.Cmp(data.VPrime) != 0 {
				t.Fatal("init data did not round trip")
			}
		})
	}
}

func TestWalletClaimAttributes(t *testing.T) {
	ctx := context.Background()
	for name, w := range testWallets(t) {
		t.Run(name, func(t *testing.T) {
			attrs := types.Attributes{
				"name": {Raw: "Alex", Encoded: big.NewInt(11)},
				"age":  {Raw: "28", Encoded: big.NewInt(28)},
			}
			if err := w.SubmitClaimAttributes(ctx, testKey, attrs); err != nil {
				t.Fatal(err)
			}
			got, err := w.GetClaimAttributes(ctx, testKey)
			if err != nil {
				t.Fatal(err)
			}
			if got["name"].Raw != "Alex" || got["age"].Encoded.Int64() != 28 {
				t.Fatal("attributes did not round trip")
			}

			all, err := w.GetAllClaimAttributes(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 1 {
				t.Fatalf("expected one claim, got %d", len(all))
			}
			if _, ok := all[testKey]; !ok {
				t.Fatal("enumeration is missing the schema key")
			}
		})
	}
}

func TestWalletClaimSignature(t *testing.T) {
	ctx := context.Background()
	for name, w := range testWallets(t) {
		t.Run(name, func(t *testing.T) {
			// the KV backend normalizes A against the stored public key
			pk := &types.PublicKey{
				N: big.NewInt(1000003), S: big.NewInt(2), Z: big.NewInt(3),
				Rms: big.NewInt(4), Rctxt: big.NewInt(5),
				R: map[string]*big.Int{"name": big.NewInt(6)},
			}
			if err := w.SubmitPublicKey(ctx, testKey, pk); err != nil {
				t.Fatal(err)
			}
			claim := &types.PrimaryClaim{
				M2: big.NewInt(9), A: big.NewInt(100), E: big.NewInt(3), V: big.NewInt(55),
			}
			if err := w.SubmitPrimaryClaim(ctx, testKey, claim); err != nil {
				t.Fatal(err)
			}
			sig, err := w.GetClaimSignature(ctx, testKey)
			if err != nil {
				t.Fatal(err)
			}
			if sig.Primary.A.Cmp(claim.A) != 0 {
				t.Fatal("primary claim did not round trip")
			}
			if sig.NonRevoc != nil {
				t.Fatal("unexpected non-revocation claim")
			}
		})
	}
}

func TestWalletRepositoryReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	schema := &types.Schema{SchemaKey: testKey, AttrNames: []string{"name", "age"}}
	if _, err := repo.PublishSchema(ctx, schema); err != nil {
		t.Fatal(err)
	}

	for name, w := range map[string]Wallet{
		"memory": NewInMemoryWallet("p1", repo),
		"kv":     NewKVWallet("p1", dbm.NewMemDB(), repo),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := w.GetSchema(ctx, testKey)
			if err != nil {
				t.Fatal(err)
			}
			if got.SeqID != schema.SeqID {
				t.Fatal("read-through returned the wrong schema")
			}
			bySeq, err := w.GetSchemaBySeqNo(ctx, schema.SeqID)
			if err != nil {
				t.Fatal(err)
			}
			if bySeq.Name != "GVT" {
				t.Fatal("sequence lookup returned the wrong schema")
			}
		})
	}
}

func TestWalletAccumulatorPrefersPublished(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	w := NewInMemoryWallet("p1", repo)

	stale := &types.Accumulator{IA: "110", Acc: nil, V: types.NewIndexSet(), L: 5}
	stale.V.Add(1)
	if err := w.SubmitAccumulator(ctx, testKey, stale); err != nil {
		t.Fatal(err)
	}

	fresh := &types.Accumulator{IA: "110", Acc: nil, V: types.NewIndexSet(), L: 5}
	if err := repo.PublishAccumulator(ctx, testKey, fresh); err != nil {
		t.Fatal(err)
	}

	got, err := w.GetAccumulator(ctx, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if got.V.Contains(1) {
		t.Fatal("wallet must serve the published accumulator, not the local copy")
	}
}
