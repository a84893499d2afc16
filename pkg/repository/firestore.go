// Copyright 2025 MRJCrunch
//
// Firestore-backed public repository. One document per (kind, schema key)
// under a single collection, holding the canonical string-dict payload.

package repository

import (
	"context"
	"fmt"

	gcpfirestore "cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

// FirestoreRepository is a Repository backed by Cloud Firestore.
type FirestoreRepository struct {
	client     *gcpfirestore.Client
	collection string
}

// FirestoreConfig holds connection settings for the firestore backend.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string // optional; ADC applies when empty
	Collection      string
}

// NewFirestoreRepository connects to Firestore.
func NewFirestoreRepository(ctx context.Context, cfg FirestoreConfig) (*FirestoreRepository, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "anoncreds_artifacts"
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcpfirestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreRepository{client: client, collection: collection}, nil
}

// Close releases the firestore client.
func (r *FirestoreRepository) Close() error {
	return r.client.Close()
}

func (r *FirestoreRepository) docID(kind, key string) string {
	return kind + "__" + key
}

func (r *FirestoreRepository) put(ctx context.Context, kind, key string, seqNo int, dict types.StrDict) error {
	doc := r.client.Collection(r.collection).Doc(r.docID(kind, key))
	_, err := doc.Set(ctx, map[string]interface{}{
		"kind":       kind,
		"schema_key": key,
		"seq_no":     seqNo,
		"payload":    dict,
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", kind, err)
	}
	return nil
}

func (r *FirestoreRepository) get(ctx context.Context, kind, key string) (types.StrDict, int, error) {
	snap, err := r.client.Collection(r.collection).Doc(r.docID(kind, key)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, 0, errors.NotFound("%s not published for %s", kind, key)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	data := snap.Data()
	payload, ok := data["payload"].(map[string]interface{})
	if !ok {
		return nil, 0, errors.Input("malformed %s document for %s", kind, key)
	}
	seqNo := 0
	if raw, ok := data["seq_no"].(int64); ok {
		seqNo = int(raw)
	}
	return payload, seqNo, nil
}

func (r *FirestoreRepository) nextSeqNo(ctx context.Context) (int, error) {
	docs, err := r.client.Collection(r.collection).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sequence id: %w", err)
	}
	max := 0
	for _, d := range docs {
		if raw, ok := d.Data()["seq_no"].(int64); ok && int(raw) > max {
			max = int(raw)
		}
	}
	return max + 1, nil
}

// PublishSchema stores the schema, assigning a sequence id if unset.
func (r *FirestoreRepository) PublishSchema(ctx context.Context, schema *types.Schema) (*types.Schema, error) {
	if schema.SeqID == 0 {
		seq, err := r.nextSeqNo(ctx)
		if err != nil {
			return nil, err
		}
		schema.SeqID = seq
	}
	if err := r.put(ctx, kindSchema, schemaKeyString(schema.SchemaKey), schema.SeqID, schema.ToStrDict()); err != nil {
		return nil, err
	}
	return schema, nil
}

// GetSchema fetches a schema by key.
func (r *FirestoreRepository) GetSchema(ctx context.Context, key types.SchemaKey) (*types.Schema, error) {
	dict, _, err := r.get(ctx, kindSchema, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.SchemaFromStrDict(dict)
}

// GetSchemaBySeqNo fetches a schema by its assigned sequence id.
func (r *FirestoreRepository) GetSchemaBySeqNo(ctx context.Context, seqNo int) (*types.Schema, error) {
	iter := r.client.Collection(r.collection).
		Where("kind", "==", kindSchema).
		Where("seq_no", "==", seqNo).
		Limit(1).Documents(ctx)
	docs, err := iter.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query schema: %w", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("no schema with sequence id %d", seqNo)
	}
	payload, ok := docs[0].Data()["payload"].(map[string]interface{})
	if !ok {
		return nil, errors.Input("malformed schema document for sequence id %d", seqNo)
	}
	return types.SchemaFromStrDict(payload)
}

// PublishPublicKey stores the issuer public key.
func (r *FirestoreRepository) PublishPublicKey(ctx context.Context, key types.SchemaKey, pk *types.PublicKey) (*types.PublicKey, error) {
	if pk.SeqID == 0 {
		seq, err := r.nextSeqNo(ctx)
		if err != nil {
			return nil, err
		}
		pk.SeqID = seq
	}
	if err := r.put(ctx, kindPublicKey, schemaKeyString(key), pk.SeqID, pk.ToStrDict()); err != nil {
		return nil, err
	}
	return pk, nil
}

// GetPublicKey fetches the issuer public key.
func (r *FirestoreRepository) GetPublicKey(ctx context.Context, key types.SchemaKey) (*types.PublicKey, error) {
	dict, seqNo, err := r.get(ctx, kindPublicKey, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	pk, err := types.PublicKeyFromStrDict(dict)
	if err != nil {
		return nil, err
	}
	pk.SeqID = seqNo
	return pk, nil
}

// PublishRevocationPublicKey stores the revocation public key.
func (r *FirestoreRepository) PublishRevocationPublicKey(ctx context.Context, key types.SchemaKey, pk *types.RevocationPublicKey) (*types.RevocationPublicKey, error) {
	if pk.SeqID == 0 {
		seq, err := r.nextSeqNo(ctx)
		if err != nil {
			return nil, err
		}
		pk.SeqID = seq
	}
	if err := r.put(ctx, kindRevocationKey, schemaKeyString(key), pk.SeqID, pk.ToStrDict()); err != nil {
		return nil, err
	}
	return pk, nil
}

// GetRevocationPublicKey fetches the revocation public key.
func (r *FirestoreRepository) GetRevocationPublicKey(ctx context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error) {
	dict, seqNo, err := r.get(ctx, kindRevocationKey, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	pk, err := types.RevocationPublicKeyFromStrDict(dict)
	if err != nil {
		return nil, err
	}
	pk.SeqID = seqNo
	return pk, nil
}

// PublishAccumulator stores the current accumulator snapshot.
func (r *FirestoreRepository) PublishAccumulator(ctx context.Context, key types.SchemaKey, acc *types.Accumulator) error {
	return r.put(ctx, kindAccumulator, schemaKeyString(key), 0, acc.ToStrDict())
}

// GetAccumulator fetches the current accumulator snapshot.
func (r *FirestoreRepository) GetAccumulator(ctx context.Context, key types.SchemaKey) (*types.Accumulator, error) {
	dict, _, err := r.get(ctx, kindAccumulator, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.AccumulatorFromStrDict(dict)
}

// PublishAccumulatorPublicKey stores the accumulator public key.
func (r *FirestoreRepository) PublishAccumulatorPublicKey(ctx context.Context, key types.SchemaKey, accPK *types.AccumulatorPublicKey) error {
	return r.put(ctx, kindAccumulatorPK, schemaKeyString(key), 0, accPK.ToStrDict())
}

// GetAccumulatorPublicKey fetches the accumulator public key.
func (r *FirestoreRepository) GetAccumulatorPublicKey(ctx context.Context, key types.SchemaKey) (*types.AccumulatorPublicKey, error) {
	dict, _, err := r.get(ctx, kindAccumulatorPK, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.AccumulatorPublicKeyFromStrDict(dict)
}

// PublishTails stores the tails sequence.
func (r *FirestoreRepository) PublishTails(ctx context.Context, key types.SchemaKey, tails *types.Tails) error {
	return r.put(ctx, kindTails, schemaKeyString(key), 0, tails.ToStrDict())
}

// GetTails fetches the tails sequence.
func (r *FirestoreRepository) GetTails(ctx context.Context, key types.SchemaKey) (*types.Tails, error) {
	dict, _, err := r.get(ctx, kindTails, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.TailsFromStrDict(dict)
}
