// Copyright 2025 MRJCrunch
//
// KVWallet persists a prover's state in any cometbft-db backend. Records
// are stored as canonical string-dict JSON under kind-prefixed keys, so
// the wallet survives restarts with goleveldb and runs tests on memdb.

package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"strconv"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/repository"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

const (
	kvSchema        = "schema"
	kvPublicKey     = "public_key"
	kvRevPK         = "revocation_key"
	kvAccumulator   = "accumulator"
	kvAccumulatorPK = "accumulator_pk"
	kvTails         = "tails"
	kvMasterSecret  = "master_secret"
	kvPrimaryInit   = "primary_init"
	kvNonRevocInit  = "non_revoc_init"
	kvContextAttr   = "context_attr"
	kvClaimAttrs    = "claim_attrs"
	kvPrimaryClaim  = "primary_claim"
	kvNonRevocClaim = "non_revoc_claim"
)

// KVWallet is a ProverWallet over a cometbft-db database.
type KVWallet struct {
	walletID string
	db       dbm.DB
	repo     repository.Repository
}

// NewKVWallet wraps the given database. repo may be nil.
func NewKVWallet(walletID string, db dbm.DB, repo repository.Repository) *KVWallet {
	return &KVWallet{walletID: walletID, db: db, repo: repo}
}

// WalletID returns the owning party's identifier.
func (w *KVWallet) WalletID() string { return w.walletID }

func kvKey(kind string, key types.SchemaKey) []byte {
	raw, _ := json.Marshal([]string{kind, key.Name, key.Version, key.IssuerID})
	return raw
}

func (w *KVWallet) put(kind string, key types.SchemaKey, dict types.StrDict) error {
	payload, err := json.Marshal(dict)
	if err != nil {
		return errors.Wrap(errors.CodeInput, err, "failed to marshal %s record", kind)
	}
	if err := w.db.SetSync(kvKey(kind, key), payload); err != nil {
		return errors.Wrap(errors.CodeInput, err, "failed to store %s record", kind)
	}
	return nil
}

func (w *KVWallet) get(kind string, key types.SchemaKey) (types.StrDict, error) {
	payload, err := w.db.Get(kvKey(kind, key))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "failed to load %s record", kind)
	}
	if payload == nil {
		return nil, errors.NotFound("no %s record for schema %s/%s", kind, key.Name, key.Version)
	}
	var dict types.StrDict
	if err := json.Unmarshal(payload, &dict); err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "failed to decode %s record", kind)
	}
	return dict, nil
}

func schemaKeyDict(key types.SchemaKey) types.StrDict {
	return key.ToStrDict()
}

// --- shared-read records ---

// SubmitSchema stores the schema.
func (w *KVWallet) SubmitSchema(_ context.Context, schema *types.Schema) error {
	return w.put(kvSchema, schema.SchemaKey, schema.ToStrDict())
}

// GetSchema returns the schema, reading through the repository on a miss.
func (w *KVWallet) GetSchema(ctx context.Context, key types.SchemaKey) (*types.Schema, error) {
	dict, err := w.get(kvSchema, key)
	if err == nil {
		return types.SchemaFromStrDict(dict)
	}
	if w.repo != nil && errors.IsNotFound(err) {
		s, rerr := w.repo.GetSchema(ctx, key)
		if rerr != nil {
			return nil, rerr
		}
		if err := w.SubmitSchema(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, err
}

// GetSchemaBySeqNo scans stored schemas for the given sequence id.
func (w *KVWallet) GetSchemaBySeqNo(ctx context.Context, seqNo int) (*types.Schema, error) {
	it, err := w.db.Iterator(nil, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "failed to iterate wallet")
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		var parts []string
		if json.Unmarshal(it.Key(), &parts) != nil || len(parts) != 4 || parts[0] != kvSchema {
			continue
		}
		var dict types.StrDict
		if err := json.Unmarshal(it.Value(), &dict); err != nil {
			continue
		}
		s, err := types.SchemaFromStrDict(dict)
		if err == nil && s.SeqID == seqNo {
			return s, nil
		}
	}
	if w.repo != nil {
		s, err := w.repo.GetSchemaBySeqNo(ctx, seqNo)
		if err != nil {
			return nil, err
		}
		if err := w.SubmitSchema(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.NotFound("no schema with sequence id %d in wallet", seqNo)
}

// SubmitPublicKey stores the issuer public key.
func (w *KVWallet) SubmitPublicKey(_ context.Context, key types.SchemaKey, pk *types.PublicKey) error {
	dict := pk.ToStrDict()
	dict["seq_no"] = strconv.Itoa(pk.SeqID)
	return w.put(kvPublicKey, key, dict)
}

// GetPublicKey returns the issuer public key.
func (w *KVWallet) GetPublicKey(ctx context.Context, key types.SchemaKey) (*types.PublicKey, error) {
	dict, err := w.get(kvPublicKey, key)
	if err == nil {
		pk, perr := types.PublicKeyFromStrDict(dict)
		if perr != nil {
			return nil, perr
		}
		if raw, ok := dict["seq_no"].(string); ok {
			if n, err := strconv.Atoi(raw); err == nil {
				pk.SeqID = n
			}
		}
		return pk, nil
	}
	if w.repo != nil && errors.IsNotFound(err) {
		pk, rerr := w.repo.GetPublicKey(ctx, key)
		if rerr != nil {
			return nil, rerr
		}
		if err := w.SubmitPublicKey(ctx, key, pk); err != nil {
			return nil, err
		}
		return pk, nil
	}
	return nil, err
}

// SubmitRevocationPublicKey stores the revocation public key.
func (w *KVWallet) SubmitRevocationPublicKey(_ context.Context, key types.SchemaKey, pk *types.RevocationPublicKey) error {
	return w.put(kvRevPK, key, pk.ToStrDict())
}

// GetRevocationPublicKey returns the revocation public key.
func (w *KVWallet) GetRevocationPublicKey(ctx context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error) {
	dict, err := w.get(kvRevPK, key)
	if err == nil {
		return types.RevocationPublicKeyFromStrDict(dict)
	}
	if w.repo != nil && errors.IsNotFound(err) {
		pk, rerr := w.repo.GetRevocationPublicKey(ctx, key)
		if rerr != nil {
			return nil, rerr
		}
		if err := w.SubmitRevocationPublicKey(ctx, key, pk); err != nil {
			return nil, err
		}
		return pk, nil
	}
	return nil, err
}

// SubmitAccumulator stores the accumulator snapshot.
func (w *KVWallet) SubmitAccumulator(_ context.Context, key types.SchemaKey, acc *types.Accumulator) error {
	return w.put(kvAccumulator, key, acc.ToStrDict())
}

// GetAccumulator returns the accumulator; the published snapshot wins
// when a repository is attached.
func (w *KVWallet) GetAccumulator(ctx context.Context, key types.SchemaKey) (*types.Accumulator, error) {
	if w.repo != nil {
		acc, err := w.repo.GetAccumulator(ctx, key)
		if err == nil {
			return acc, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	dict, err := w.get(kvAccumulator, key)
	if err != nil {
		return nil, err
	}
	return types.AccumulatorFromStrDict(dict)
}

// SubmitAccumulatorPublicKey stores the accumulator public key.
func (w *KVWallet) SubmitAccumulatorPublicKey(_ context.Context, key types.SchemaKey, accPK *types.AccumulatorPublicKey) error {
	return w.put(kvAccumulatorPK, key, accPK.ToStrDict())
}

// GetAccumulatorPublicKey returns the accumulator public key, preferring
// the published value.
func (w *KVWallet) GetAccumulatorPublicKey(ctx context.Context, key types.SchemaKey) (*types.AccumulatorPublicKey, error) {
	if w.repo != nil {
		pk, err := w.repo.GetAccumulatorPublicKey(ctx, key)
		if err == nil {
			return pk, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	dict, err := w.get(kvAccumulatorPK, key)
	if err != nil {
		return nil, err
	}
	return types.AccumulatorPublicKeyFromStrDict(dict)
}

// SubmitTails stores the tails sequence.
func (w *KVWallet) SubmitTails(_ context.Context, key types.SchemaKey, tails *types.Tails) error {
	return w.put(kvTails, key, tails.ToStrDict())
}

// GetTails returns the tails sequence.
func (w *KVWallet) GetTails(ctx context.Context, key types.SchemaKey) (*types.Tails, error) {
	dict, err := w.get(kvTails, key)
	if err == nil {
		return types.TailsFromStrDict(dict)
	}
	if w.repo != nil && errors.IsNotFound(err) {
		t, rerr := w.repo.GetTails(ctx, key)
		if rerr != nil {
			return nil, rerr
		}
		if err := w.SubmitTails(ctx, key, t); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, err
}

// --- prover records ---

// SubmitMasterSecret stores the master secret.
func (w *KVWallet) SubmitMasterSecret(_ context.Context, key types.SchemaKey, ms *big.Int) error {
	return w.put(kvMasterSecret, key, types.StrDict{"ms": ms.Text(10)})
}

// GetMasterSecret returns the master secret.
func (w *KVWallet) GetMasterSecret(_ context.Context, key types.SchemaKey) (*big.Int, error) {
	dict, err := w.get(kvMasterSecret, key)
	if err != nil {
		return nil, err
	}
	return dictInt(dict, "ms")
}

// SubmitPrimaryClaimInitData stores the primary claim blinds.
func (w *KVWallet) SubmitPrimaryClaimInitData(_ context.Context, key types.SchemaKey, data *types.ClaimInitData) error {
	return w.put(kvPrimaryInit, key, types.StrDict{
		"u":       data.U.Text(10),
		"v_prime": data.VPrime.Text(10),
	})
}

// GetPrimaryClaimInitData returns the primary claim blinds.
func (w *KVWallet) GetPrimaryClaimInitData(_ context.Context, key types.SchemaKey) (*types.ClaimInitData, error) {
	dict, err := w.get(kvPrimaryInit, key)
	if err != nil {
		return nil, err
	}
	u, err := dictInt(dict, "u")
	if err != nil {
		return nil, err
	}
	vPrime, err := dictInt(dict, "v_prime")
	if err != nil {
		return nil, err
	}
	return &types.ClaimInitData{U: u, VPrime: vPrime}, nil
}

// SubmitNonRevocClaimInitData stores the non-revocation blinds.
func (w *KVWallet) SubmitNonRevocClaimInitData(_ context.Context, key types.SchemaKey, data *types.NonRevocClaimInitData) error {
	return w.put(kvNonRevocInit, key, types.StrDict{
		"ur":       data.U.Hex(),
		"vr_prime": data.VPrime.Text(10),
	})
}

// GetNonRevocClaimInitData returns the non-revocation blinds.
func (w *KVWallet) GetNonRevocClaimInitData(_ context.Context, key types.SchemaKey) (*types.NonRevocClaimInitData, error) {
	dict, err := w.get(kvNonRevocInit, key)
	if err != nil {
		return nil, err
	}
	raw, ok := dict["ur"].(string)
	if !ok {
		return nil, errors.Input("non-revocation init record is missing \"ur\"")
	}
	u, err := pairing.G1FromHex(raw)
	if err != nil {
		return nil, err
	}
	vPrime, err := dictInt(dict, "vr_prime")
	if err != nil {
		return nil, err
	}
	return &types.NonRevocClaimInitData{U: u, VPrime: vPrime}, nil
}

// SubmitContextAttr stores the context attribute m2.
func (w *KVWallet) SubmitContextAttr(_ context.Context, key types.SchemaKey, m2 *big.Int) error {
	return w.put(kvContextAttr, key, types.StrDict{"m2": m2.Text(10)})
}

// GetContextAttr returns the context attribute m2.
func (w *KVWallet) GetContextAttr(_ context.Context, key types.SchemaKey) (*big.Int, error) {
	dict, err := w.get(kvContextAttr, key)
	if err != nil {
		return nil, err
	}
	return dictInt(dict, "m2")
}

// SubmitClaimAttributes stores a claim's attribute values.
func (w *KVWallet) SubmitClaimAttributes(_ context.Context, key types.SchemaKey, attrs types.Attributes) error {
	values := types.StrDict{}
	for name, av := range attrs {
		pair := av.ToStrList()
		values[name] = []interface{}{pair[0], pair[1]}
	}
	return w.put(kvClaimAttrs, key, types.StrDict{
		"schema": schemaKeyDict(key),
		"attrs":  values,
	})
}

func decodeClaimAttrs(dict types.StrDict) (types.Attributes, error) {
	values, ok := dict["attrs"].(map[string]interface{})
	if !ok {
		return nil, errors.Input("claim attributes record is malformed")
	}
	attrs := types.Attributes{}
	for name, raw := range values {
		pair, ok := raw.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, errors.Input("attribute %q is not a [raw, encoded] pair", name)
		}
		rawVal, ok1 := pair[0].(string)
		encVal, ok2 := pair[1].(string)
		if !ok1 || !ok2 {
			return nil, errors.Input("attribute %q entries are not strings", name)
		}
		av, err := types.AttributeValuesFromStrList([]string{rawVal, encVal})
		if err != nil {
			return nil, err
		}
		attrs[name] = av
	}
	return attrs, nil
}

// GetClaimAttributes returns a claim's attribute values.
func (w *KVWallet) GetClaimAttributes(_ context.Context, key types.SchemaKey) (types.Attributes, error) {
	dict, err := w.get(kvClaimAttrs, key)
	if err != nil {
		return nil, err
	}
	return decodeClaimAttrs(dict)
}

// GetAllClaimAttributes enumerates every claim's attribute values.
func (w *KVWallet) GetAllClaimAttributes(_ context.Context) (map[types.SchemaKey]types.Attributes, error) {
	it, err := w.db.Iterator(nil, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInput, err, "failed to iterate wallet")
	}
	defer it.Close()
	out := map[types.SchemaKey]types.Attributes{}
	for ; it.Valid(); it.Next() {
		var parts []string
		if json.Unmarshal(it.Key(), &parts) != nil || len(parts) != 4 || parts[0] != kvClaimAttrs {
			continue
		}
		var dict types.StrDict
		if err := json.Unmarshal(it.Value(), &dict); err != nil {
			return nil, errors.Wrap(errors.CodeInput, err, "failed to decode claim attributes")
		}
		attrs, err := decodeClaimAttrs(dict)
		if err != nil {
			return nil, err
		}
		out[types.SchemaKey{Name: parts[1], Version: parts[2], IssuerID: parts[3]}] = attrs
	}
	return out, nil
}

// SubmitPrimaryClaim stores the processed primary claim.
func (w *KVWallet) SubmitPrimaryClaim(_ context.Context, key types.SchemaKey, claim *types.PrimaryClaim) error {
	return w.put(kvPrimaryClaim, key, claim.ToStrDict())
}

// SubmitNonRevocClaim stores the processed non-revocation claim.
func (w *KVWallet) SubmitNonRevocClaim(_ context.Context, key types.SchemaKey, claim *types.NonRevocationClaim) error {
	return w.put(kvNonRevocClaim, key, claim.ToStrDict())
}

// GetClaimSignature returns the stored claim pair for a schema.
func (w *KVWallet) GetClaimSignature(ctx context.Context, key types.SchemaKey) (*types.Claims, error) {
	pkDict, err := w.get(kvPrimaryClaim, key)
	if err != nil {
		return nil, err
	}
	pub, err := w.GetPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	primary, err := types.PrimaryClaimFromStrDict(pkDict, pub.N)
	if err != nil {
		return nil, err
	}
	claims := &types.Claims{Primary: primary}
	nrDict, err := w.get(kvNonRevocClaim, key)
	if err == nil {
		if claims.NonRevoc, err = types.NonRevocationClaimFromStrDict(nrDict); err != nil {
			return nil, err
		}
	} else if !errors.IsNotFound(err) {
		return nil, err
	}
	return claims, nil
}

func dictInt(dict types.StrDict, key string) (*big.Int, error) {
	raw, ok := dict[key].(string)
	if !ok {
		return nil, errors.Input("record is missing field %q", key)
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.Input("field %q is not a decimal integer", key)
	}
	return v, nil
}
