// Copyright 2025 MRJCrunch
//
// Postgres-backed public repository. Artifacts live in a single
// published_artifacts table as canonical string-dict JSON; sequence ids
// are assigned on first publication.

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

const (
	kindSchema        = "schema"
	kindPublicKey     = "public_key"
	kindRevocationKey = "revocation_key"
	kindAccumulator   = "accumulator"
	kindAccumulatorPK = "accumulator_pk"
	kindTails         = "tails"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS published_artifacts (
    kind        TEXT NOT NULL,
    schema_key  TEXT NOT NULL,
    seq_no      INTEGER NOT NULL DEFAULT 0,
    payload     JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (kind, schema_key)
)`

func schemaKeyString(key types.SchemaKey) string {
	return fmt.Sprintf("%s:%s:%s", key.Name, key.Version, key.IssuerID)
}

// PostgresRepository is a Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository connects to the database and ensures the
// artifacts table exists.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create artifacts table: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

// Close releases the database connection pool.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) nextSeqNo(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM published_artifacts`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sequence id: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) put(ctx context.Context, kind, key string, seqNo int, dict types.StrDict) error {
	payload, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO published_artifacts (kind, schema_key, seq_no, payload, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (kind, schema_key)
		DO UPDATE SET seq_no = $3, payload = $4, updated_at = NOW()`,
		kind, key, seqNo, payload)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", kind, err)
	}
	return nil
}

func (r *PostgresRepository) get(ctx context.Context, kind, key string) (types.StrDict, int, error) {
	var payload []byte
	var seqNo int
	err := r.db.QueryRowContext(ctx, `
		SELECT payload, seq_no FROM published_artifacts
		WHERE kind = $1 AND schema_key = $2`, kind, key).Scan(&payload, &seqNo)
	if err == sql.ErrNoRows {
		return nil, 0, errors.NotFound("%s not published for %s", kind, key)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	var dict types.StrDict
	if err := json.Unmarshal(payload, &dict); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return dict, seqNo, nil
}

// PublishSchema stores the schema, assigning a sequence id if unset.
func (r *PostgresRepository) PublishSchema(ctx context.Context, schema *types.Schema) (*types.Schema, error) {
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
func (r *PostgresRepository) GetSchema(ctx context.Context, key types.SchemaKey) (*types.Schema, error) {
	dict, _, err := r.get(ctx, kindSchema, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.SchemaFromStrDict(dict)
}

// GetSchemaBySeqNo fetches a schema by its assigned sequence id.
func (r *PostgresRepository) GetSchemaBySeqNo(ctx context.Context, seqNo int) (*types.Schema, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload FROM published_artifacts
		WHERE kind = $1 AND seq_no = $2`, kindSchema, seqNo).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("no schema with sequence id %d", seqNo)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	var dict types.StrDict
	if err := json.Unmarshal(payload, &dict); err != nil {
		return nil, fmt.Errorf("failed to decode schema payload: %w", err)
	}
	return types.SchemaFromStrDict(dict)
}

// PublishPublicKey stores the issuer public key.
func (r *PostgresRepository) PublishPublicKey(ctx context.Context, key types.SchemaKey, pk *types.PublicKey) (*types.PublicKey, error) {
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
func (r *PostgresRepository) GetPublicKey(ctx context.Context, key types.SchemaKey) (*types.PublicKey, error) {
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
func (r *PostgresRepository) PublishRevocationPublicKey(ctx context.Context, key types.SchemaKey, pk *types.RevocationPublicKey) (*types.RevocationPublicKey, error) {
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
func (r *PostgresRepository) GetRevocationPublicKey(ctx context.Context, key types.SchemaKey) (*types.RevocationPublicKey, error) {
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
func (r *PostgresRepository) PublishAccumulator(ctx context.Context, key types.SchemaKey, acc *types.Accumulator) error {
	return r.put(ctx, kindAccumulator, schemaKeyString(key), 0, acc.ToStrDict())
}

// GetAccumulator fetches the current accumulator snapshot.
func (r *PostgresRepository) GetAccumulator(ctx context.Context, key types.SchemaKey) (*types.Accumulator, error) {
	dict, _, err := r.get(ctx, kindAccumulator, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.AccumulatorFromStrDict(dict)
}

// PublishAccumulatorPublicKey stores the accumulator public key.
func (r *PostgresRepository) PublishAccumulatorPublicKey(ctx context.Context, key types.SchemaKey, accPK *types.AccumulatorPublicKey) error {
	return r.put(ctx, kindAccumulatorPK, schemaKeyString(key), 0, accPK.ToStrDict())
}

// GetAccumulatorPublicKey fetches the accumulator public key.
func (r *PostgresRepository) GetAccumulatorPublicKey(ctx context.Context, key types.SchemaKey) (*types.AccumulatorPublicKey, error) {
	dict, _, err := r.get(ctx, kindAccumulatorPK, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.AccumulatorPublicKeyFromStrDict(dict)
}

// PublishTails stores the tails sequence.
func (r *PostgresRepository) PublishTails(ctx context.Context, key types.SchemaKey, tails *types.Tails) error {
	return r.put(ctx, kindTails, schemaKeyString(key), 0, tails.ToStrDict())
}

// GetTails fetches the tails sequence.
func (r *PostgresRepository) GetTails(ctx context.Context, key types.SchemaKey) (*types.Tails, error) {
	dict, _, err := r.get(ctx, kindTails, schemaKeyString(key))
	if err != nil {
		return nil, err
	}
	return types.TailsFromStrDict(dict)
}
