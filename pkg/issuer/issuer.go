// Copyright 2025 MRJCrunch
//
// Package issuer implements the credential-issuing role: CL key
// generation over a strong-RSA group, blind signing of attribute vectors
// against the prover's hidden master secret, and dynamic revocation via
// a pairing-based accumulator.
package issuer

import (
	"context"
	"sync"

	"github.com/MRJCrunch/anoncreds/pkg/logging"
	"github.com/MRJCrunch/anoncreds/pkg/metrics"
	"github.com/MRJCrunch/anoncreds/pkg/repository"
	"github.com/MRJCrunch/anoncreds/pkg/types"
	"github.com/MRJCrunch/anoncreds/pkg/ucrypto"
	"github.com/MRJCrunch/anoncreds/pkg/wallet"
)

// Issuer signs attribute vectors and manages revocation state. Writes
// are serialized per schema: key generation, IssueClaim and Revoke form
// a critical section for each schema key.
type Issuer struct {
	wallet  wallet.IssuerWallet
	repo    repository.Repository
	log     *logging.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	locks map[types.SchemaKey]*sync.Mutex
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(i *Issuer) { i.log = l.Component("issuer") }
}

// WithMetrics attaches operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Issuer) { i.metrics = m }
}

// New creates an issuer over the given wallet and public repository.
func New(w wallet.IssuerWallet, repo repository.Repository, opts ...Option) *Issuer {
	i := &Issuer{
		wallet: w,
		repo:   repo,
		log:    logging.Default().Component("issuer"),
		locks:  map[types.SchemaKey]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) schemaLock(key types.SchemaKey) *sync.Mutex {
	i.mu.Lock()
	defer i.mu.Unlock()
	l, ok := i.locks[key]
	if !ok {
		l = &sync.Mutex{}
		i.locks[key] = l
	}
	return l
}

// CreateSchema publishes a schema and stores it in the issuer wallet.
func (i *Issuer) CreateSchema(ctx context.Context, key types.SchemaKey, attrNames []string) (*types.Schema, error) {
	schema := &types.Schema{SchemaKey: key, AttrNames: attrNames}
	schema, err := i.repo.PublishSchema(ctx, schema)
	if err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitSchema(ctx, schema); err != nil {
		return nil, err
	}
	i.log.Info("schema published", "name", key.Name, "version", key.Version, "seq_no", schema.SeqID)
	return schema, nil
}

// AddAttributes encodes and stores the attribute vector to sign for a
// user. String values hash to integers; numeric values pass through.
func (i *Issuer) AddAttributes(ctx context.Context, key types.SchemaKey, userID string, raw map[string]string) (types.Attributes, error) {
	attrs := types.Attributes{}
	for name, value := range raw {
		attrs[name] = types.AttributeValues{Raw: value, Encoded: ucrypto.EncodeAttr(value)}
	}
	if err := i.wallet.SubmitAttributes(ctx, key, userID, attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
