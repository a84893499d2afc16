// Copyright 2025 MRJCrunch

package repository

import (
	"context"
	"math/big"
	"testing"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

func TestMemoryRepositorySchemas(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	key := types.SchemaKey{Name: "GVT", Version: "1.0", IssuerID: "issuer1"}

	if _, err := repo.GetSchema(ctx, key); !errors.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	schema, err := repo.PublishSchema(ctx, &types.Schema{SchemaKey: key, AttrNames: []string{"name"}})
	if err != nil {
		t.Fatal(err)
	}
	if schema.SeqID == 0 {
		t.Fatal("publication must assign a sequence id")
	}

	got, err := repo.GetSchema(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got.SeqID != schema.SeqID {
		t.Fatal("fetched schema differs from the published one")
	}

	bySeq, err := repo.GetSchemaBySeqNo(ctx, schema.SeqID)
	if err != nil {
		t.Fatal(err)
	}
	if bySeq.Name != "GVT" {
		t.Fatal("sequence lookup returned the wrong schema")
	}
}

func TestMemoryRepositorySeqIDsAreDistinct(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	k1 := types.SchemaKey{Name: "GVT", Version: "1.0", IssuerID: "i"}
	k2 := types.SchemaKey{Name: "XYZCorp", Version: "1.0", IssuerID: "i"}

	s1, _ := repo.PublishSchema(ctx, &types.Schema{SchemaKey: k1})
	s2, _ := repo.PublishSchema(ctx, &types.Schema{SchemaKey: k2})
	pk, _ := repo.PublishPublicKey(ctx, k1, &types.PublicKey{N: big.NewInt(1)})

	if s1.SeqID == s2.SeqID || s1.SeqID == pk.SeqID || s2.SeqID == pk.SeqID {
		t.Fatalf("sequence ids must be distinct: %d %d %d", s1.SeqID, s2.SeqID, pk.SeqID)
	}
}

func TestMemoryRepositoryAccumulator(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	key := types.SchemaKey{Name: "GVT", Version: "1.0", IssuerID: "issuer1"}

	acc := &types.Accumulator{IA: "110", V: types.NewIndexSet(), L: 5}
	if err := repo.PublishAccumulator(ctx, key, acc); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetAccumulator(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got.IA != "110" || got.L != 5 {
		t.Fatal("accumulator did not round trip")
	}
}
