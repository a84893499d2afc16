// Copyright 2025 MRJCrunch
//
// Package verifier checks aggregated proofs against issuer public keys
// and the current accumulator state. Verification is stateless per
// call; a failed proof is a boolean false, not an error.
package verifier

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/logging"
	"github.com/MRJCrunch/anoncreds/pkg/metrics"
	"github.com/MRJCrunch/anoncreds/pkg/types"
	"github.com/MRJCrunch/anoncreds/pkg/ucrypto"
	"github.com/MRJCrunch/anoncreds/pkg/wallet"
)

// Verifier recomputes tau values and checks the aggregated challenge.
type Verifier struct {
	wallet  wallet.Wallet
	log     *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *Verifier) { v.log = l.Component("verifier") }
}

// WithMetrics attaches operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) { v.metrics = m }
}

// New creates a verifier over the given wallet.
func New(w wallet.Wallet, opts ...Option) *Verifier {
	v := &Verifier{wallet: w, log: logging.Default().Component("verifier")}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// GenerateNonce returns a fresh challenge nonce.
func (v *Verifier) GenerateNonce() (*big.Int, error) {
	return cl.RandomBits(cl.LargeNonce)
}

// NewProofInput assembles a proof request, assigning a uuid to every
// revealed attribute and predicate.
func (v *Verifier) NewProofInput(name, version string,
	revealed []types.AttributeInfo, predicates []types.PredicateGE) (*types.ProofInput, error) {

	nonce, err := v.GenerateNonce()
	if err != nil {
		return nil, err
	}
	input := &types.ProofInput{
		Name:          name,
		Version:       version,
		Nonce:         nonce,
		RevealedAttrs: map[string]types.AttributeInfo{},
		Predicates:    map[string]types.PredicateGE{},
	}
	for _, info := range revealed {
		input.RevealedAttrs[uuid.New().String()] = info
	}
	for _, pred := range predicates {
		input.Predicates[uuid.New().String()] = pred
	}
	return input, nil
}

// Verify checks a full proof against the request it answers.
func (v *Verifier) Verify(ctx context.Context, input *types.ProofInput, proof *types.FullProof) (bool, error) {
	start := time.Now()
	ok, err := v.verify(ctx, input, proof)
	if err == nil {
		v.metrics.RecordVerification(ok, time.Since(start))
		v.log.Info("proof verified", "accepted", ok, "schemas", len(proof.Proofs))
	}
	return ok, err
}

func (v *Verifier) verify(ctx context.Context, input *types.ProofInput, proof *types.FullProof) (bool, error) {
	if err := checkUUIDSets(input, proof.RequestedProof); err != nil {
		return false, err
	}

	transcript := ucrypto.NewTranscript()

	for _, seqNo := range proof.SchemaSeqNos() {
		info := proof.Proofs[strconv.Itoa(seqNo)]
		if info == nil || info.Proof == nil || info.Proof.Primary == nil {
			return false, errors.Input("proof for schema %d is malformed", seqNo)
		}
		schema, err := v.wallet.GetSchemaBySeqNo(ctx, seqNo)
		if err != nil {
			return false, err
		}

		if !predicatesSatisfied(input, proof.RequestedProof, info.Proof.Primary, seqNo) {
			return false, nil
		}

		if info.Proof.NonRevoc != nil {
			taus, err := v.verifyNonRevocation(ctx, schema.SchemaKey, proof.AggregatedProof.CHash, info.Proof.NonRevoc)
			if err != nil {
				return false, err
			}
			transcript.AppendTau(taus...)
		}

		taus, err := v.verifyPrimary(ctx, schema, proof.AggregatedProof.CHash, info.Proof.Primary, input, proof.RequestedProof, seqNo)
		if err != nil {
			return false, err
		}
		transcript.AppendTau(taus...)
	}

	for _, enc := range proof.AggregatedProof.CList {
		transcript.AppendCBytes(enc)
	}

	cHver := transcript.Challenge(input.Nonce)
	return cHver.Cmp(proof.AggregatedProof.CHash) == 0, nil
}

// checkUUIDSets rejects a proof whose echoed request does not answer
// exactly the uuids that were asked.
func checkUUIDSets(input *types.ProofInput, requested *types.RequestedProof) error {
	if requested == nil {
		return errors.Input("proof carries no requested-proof echo")
	}
	if len(input.RevealedAttrs) != len(requested.RevealedAttrs) {
		return errors.Input("revealed attribute uuids do not match the request")
	}
	for id := range input.RevealedAttrs {
		if _, ok := requested.RevealedAttrs[id]; !ok {
			return errors.Input("revealed attribute uuid %q missing from the proof", id)
		}
	}
	if len(input.Predicates) != len(requested.Predicates) {
		return errors.Input("predicate uuids do not match the request")
	}
	for id := range input.Predicates {
		if _, ok := requested.Predicates[id]; !ok {
			return errors.Input("predicate uuid %q missing from the proof", id)
		}
	}
	return nil
}

// predicatesSatisfied checks that every predicate routed to this schema
// appears in its subproof with the requested threshold.
func predicatesSatisfied(input *types.ProofInput, requested *types.RequestedProof,
	primary *types.PrimaryProof, seqNo int) bool {

	for id, pred := range input.Predicates {
		if requested.Predicates[id] != strconv.Itoa(seqNo) {
			continue
		}
		found := false
		for _, ge := range primary.GEProofs {
			if ge.Predicate.AttrName == pred.AttrName && ge.Predicate.Value == pred.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
