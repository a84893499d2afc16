// Copyright 2025 MRJCrunch
//
// Package prover implements the credential-holding role: blinded claim
// requests against a hidden master secret, post-processing of issued
// signatures, and construction of aggregated zero-knowledge proofs with
// selective disclosure, >= predicates and non-revocation companions.
package prover

import (
	"context"
	"math/big"
	"sort"
	"strconv"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/logging"
	"github.com/MRJCrunch/anoncreds/pkg/metrics"
	"github.com/MRJCrunch/anoncreds/pkg/types"
	"github.com/MRJCrunch/anoncreds/pkg/ucrypto"
	"github.com/MRJCrunch/anoncreds/pkg/wallet"
)

// Prover holds claims and produces proofs. Two concurrent PresentProof
// calls on the same wallet are safe; each samples its own randomness.
type Prover struct {
	wallet  wallet.ProverWallet
	log     *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Prover.
type Option func(*Prover)

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Prover) { p.log = l.Component("prover") }
}

// WithMetrics attaches operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Prover) { p.metrics = m }
}

// New creates a prover over the given wallet.
func New(w wallet.ProverWallet, opts ...Option) *Prover {
	p := &Prover{wallet: w, log: logging.Default().Component("prover")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProverID returns the prover's identifier.
func (p *Prover) ProverID() string { return p.wallet.WalletID() }

// CreateClaimRequest mints the schema's master secret and blinds, and
// returns the commitment pair the issuer signs against.
func (p *Prover) CreateClaimRequest(ctx context.Context, key types.SchemaKey, proverID string, reqNonRevoc bool) (*types.ClaimRequest, error) {
	if proverID == "" {
		proverID = p.ProverID()
	}

	ms, err := cl.RandomBits(cl.LargeMasterSecret)
	if err != nil {
		return nil, err
	}
	if err := p.wallet.SubmitMasterSecret(ctx, key, ms); err != nil {
		return nil, err
	}

	u, err := p.genU(ctx, key, ms)
	if err != nil {
		return nil, err
	}

	req := &types.ClaimRequest{UserID: proverID, U: u}
	if reqNonRevoc {
		if req.Ur, err = p.genUr(ctx, key); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// CreateClaimRequests creates one request per schema.
func (p *Prover) CreateClaimRequests(ctx context.Context, keys []types.SchemaKey, proverID string, reqNonRevoc bool) (map[types.SchemaKey]*types.ClaimRequest, error) {
	out := make(map[types.SchemaKey]*types.ClaimRequest, len(keys))
	for _, key := range keys {
		req, err := p.CreateClaimRequest(ctx, key, proverID, reqNonRevoc)
		if err != nil {
			return nil, err
		}
		out[key] = req
	}
	return out, nil
}

// genU commits to the master secret: U = S^v' * Rms^ms mod N.
func (p *Prover) genU(ctx context.Context, key types.SchemaKey, ms *big.Int) (*big.Int, error) {
	pk, err := p.wallet.GetPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	vPrime, err := cl.RandomBits(cl.LargeVPrime)
	if err != nil {
		return nil, err
	}
	u := new(big.Int).Exp(pk.S, vPrime, pk.N)
	u.Mul(u, new(big.Int).Exp(pk.Rms, ms, pk.N)).Mod(u, pk.N)

	if err := p.wallet.SubmitPrimaryClaimInitData(ctx, key, &types.ClaimInitData{U: u, VPrime: vPrime}); err != nil {
		return nil, err
	}
	return u, nil
}

// genUr commits in the pairing group: Ur = h2^vr'.
func (p *Prover) genUr(ctx context.Context, key types.SchemaKey) (*pairing.PointG1, error) {
	pk, err := p.wallet.GetRevocationPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	vrPrime, err := pairing.RandomScalar()
	if err != nil {
		return nil, err
	}
	ur := pk.H2.Exp(vrPrime)

	if err := p.wallet.SubmitNonRevocClaimInitData(ctx, key, &types.NonRevocClaimInitData{U: ur, VPrime: vrPrime}); err != nil {
		return nil, err
	}
	return ur, nil
}

// ProcessClaim folds the stored blinds into a received signature and
// persists the result. The write order keeps any failed run a valid
// prefix, and replays land on the same keys.
func (p *Prover) ProcessClaim(ctx context.Context, key types.SchemaKey, attrs types.Attributes, signature *types.Claims) error {
	if signature == nil || signature.Primary == nil {
		return errors.Input("signature carries no primary claim")
	}
	if err := p.wallet.SubmitContextAttr(ctx, key, signature.Primary.M2); err != nil {
		return err
	}
	if err := p.wallet.SubmitClaimAttributes(ctx, key, attrs); err != nil {
		return err
	}

	initData, err := p.wallet.GetPrimaryClaimInitData(ctx, key)
	if err != nil {
		return err
	}
	primary := &types.PrimaryClaim{
		M2: signature.Primary.M2,
		A:  signature.Primary.A,
		E:  signature.Primary.E,
		V:  new(big.Int).Add(initData.VPrime, signature.Primary.V),
	}
	if err := p.wallet.SubmitPrimaryClaim(ctx, key, primary); err != nil {
		return err
	}

	if signature.NonRevoc != nil {
		nrInit, err := p.wallet.GetNonRevocClaimInitData(ctx, key)
		if err != nil {
			return err
		}
		src := signature.NonRevoc
		v := new(big.Int).Add(nrInit.VPrime, src.V)
		v.Mod(v, pairing.GroupOrder())
		nonRevoc := &types.NonRevocationClaim{
			IA:      src.IA,
			Sigma:   src.Sigma,
			C:       src.C,
			V:       v,
			Witness: src.Witness,
			GI:      src.GI,
			I:       src.I,
			M2:      src.M2,
		}
		if err := p.wallet.SubmitNonRevocClaim(ctx, key, nonRevoc); err != nil {
			return err
		}
	}
	return nil
}

// ReceivedClaim pairs an issued signature with its attribute values.
type ReceivedClaim struct {
	Signature *types.Claims
	Attrs     types.Attributes
}

// ProcessClaims processes a batch of received claims.
func (p *Prover) ProcessClaims(ctx context.Context, all map[types.SchemaKey]ReceivedClaim) error {
	for key, entry := range all {
		if err := p.ProcessClaim(ctx, key, entry.Attrs, entry.Signature); err != nil {
			return err
		}
	}
	return nil
}

// PresentProof selects claims satisfying the request and produces the
// aggregated proof.
func (p *Prover) PresentProof(ctx context.Context, input *types.ProofInput) (*types.FullProof, error) {
	claims, requested, err := p.findClaims(ctx, input)
	if err != nil {
		p.metrics.RecordProofFailure()
		return nil, err
	}
	proof, err := p.prepareProof(ctx, claims, input.Nonce, requested)
	if err != nil {
		p.metrics.RecordProofFailure()
		return nil, err
	}
	p.metrics.RecordProofBuilt()
	return proof, nil
}

type selectedClaims struct {
	key    types.SchemaKey
	schema *types.Schema
	claims *types.ProofClaims
}

// findClaims scans stored claims for ones matching every requested
// attribute and predicate. Predicates match against their own schema
// pins, never a leftover attribute's.
func (p *Prover) findClaims(ctx context.Context, input *types.ProofInput) ([]*selectedClaims, *types.RequestedProof, error) {
	allClaims, err := p.wallet.GetAllClaimAttributes(ctx)
	if err != nil {
		return nil, nil, err
	}

	requested := types.NewRequestedProof()
	selected := map[types.SchemaKey]*selectedClaims{}

	addProof := func(key types.SchemaKey, schema *types.Schema, attrs types.Attributes) (*selectedClaims, error) {
		if sel, ok := selected[key]; ok {
			return sel, nil
		}
		sig, err := p.wallet.GetClaimSignature(ctx, key)
		if err != nil {
			return nil, err
		}
		sel := &selectedClaims{key: key, schema: schema, claims: &types.ProofClaims{Claims: sig}}
		selected[key] = sel
		return sel, nil
	}

	for uuid, attrInfo := range input.RevealedAttrs {
		found := false
		for key, attrs := range allClaims {
			av, ok := attrs[attrInfo.Name]
			if !ok {
				continue
			}
			schema, err := p.wallet.GetSchema(ctx, key)
			if err != nil {
				return nil, nil, err
			}
			pk, err := p.wallet.GetPublicKey(ctx, key)
			if err != nil {
				return nil, nil, err
			}
			if attrInfo.SchemaSeqNo != nil && schema.SeqID != *attrInfo.SchemaSeqNo {
				continue
			}
			if attrInfo.ClaimDefSeqNo != nil && pk.SeqID != *attrInfo.ClaimDefSeqNo {
				continue
			}
			sel, err := addProof(key, schema, attrs)
			if err != nil {
				return nil, nil, err
			}
			sel.claims.RevealedAttrs = append(sel.claims.RevealedAttrs, attrInfo)
			requested.RevealedAttrs[uuid] = [3]string{
				strconv.Itoa(schema.SeqID), av.Raw, av.Encoded.Text(10),
			}
			found = true
			break
		}
		if !found {
			return nil, nil, errors.NotFound("no claim satisfies revealed attribute %q", attrInfo.Name)
		}
	}

	for uuid, predicate := range input.Predicates {
		found := false
		for key, attrs := range allClaims {
			if _, ok := attrs[predicate.AttrName]; !ok {
				continue
			}
			schema, err := p.wallet.GetSchema(ctx, key)
			if err != nil {
				return nil, nil, err
			}
			pk, err := p.wallet.GetPublicKey(ctx, key)
			if err != nil {
				return nil, nil, err
			}
			if predicate.SchemaSeqNo != nil && schema.SeqID != *predicate.SchemaSeqNo {
				continue
			}
			if predicate.ClaimDefSeqNo != nil && pk.SeqID != *predicate.ClaimDefSeqNo {
				continue
			}
			sel, err := addProof(key, schema, attrs)
			if err != nil {
				return nil, nil, err
			}
			sel.claims.Predicates = append(sel.claims.Predicates, predicate)
			requested.Predicates[uuid] = strconv.Itoa(schema.SeqID)
			found = true
			break
		}
		if !found {
			return nil, nil, errors.NotFound("no claim satisfies predicate %s >= %d", predicate.AttrName, predicate.Value)
		}
	}

	// canonical aggregation order: ascending schema sequence id
	out := make([]*selectedClaims, 0, len(selected))
	for _, sel := range selected {
		out = append(out, sel)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].schema.SeqID < out[b].schema.SeqID })
	return out, requested, nil
}

type initProof struct {
	primary  *primaryInitProof
	nonRevoc *nonRevocInitProof
}

func (p *Prover) prepareProof(ctx context.Context, selected []*selectedClaims,
	nonce *big.Int, requested *types.RequestedProof) (*types.FullProof, error) {

	// m1~ is sampled once and shared by every primary subproof; it is
	// what binds the master secret across schemas.
	m1Tilde, err := cl.RandomBits(cl.LargeM2Tilde)
	if err != nil {
		return nil, err
	}

	transcript := ucrypto.NewTranscript()
	initProofs := make([]*initProof, len(selected))

	for i, sel := range selected {
		ip := &initProof{}

		var m2Tilde *big.Int
		if sel.claims.Claims.NonRevoc != nil {
			nrInit, err := p.initNonRevocProof(ctx, sel.key, sel.claims.Claims.NonRevoc)
			if err != nil {
				return nil, err
			}
			for _, enc := range nrInit.cList.AsBytesList() {
				transcript.AppendCBytes(enc)
			}
			transcript.AppendTau(nrInit.tauList.AsIntList()...)
			m2Tilde = new(big.Int).Set(nrInit.tauListParams.M2)
			ip.nonRevoc = nrInit
		}

		attrs, err := p.wallet.GetClaimAttributes(ctx, sel.key)
		if err != nil {
			return nil, err
		}
		primaryInit, err := p.initPrimaryProof(ctx, sel.key, sel.schema, sel.claims,
			attrs, m1Tilde, m2Tilde)
		if err != nil {
			return nil, err
		}
		transcript.AppendC(primaryInit.asCList()...)
		transcript.AppendTau(primaryInit.asTauList()...)
		ip.primary = primaryInit
		initProofs[i] = ip
	}

	cH := transcript.Challenge(nonce)

	proofs := map[string]*types.ProofInfo{}
	for i, sel := range selected {
		ip := initProofs[i]

		var nonRevocProof *types.NonRevocProof
		if ip.nonRevoc != nil {
			nonRevocProof = finalizeNonRevocProof(ip.nonRevoc, cH)
		}

		ms, err := p.wallet.GetMasterSecret(ctx, sel.key)
		if err != nil {
			return nil, err
		}
		primaryProof, err := finalizePrimaryProof(ip.primary, cH, ms)
		if err != nil {
			return nil, err
		}

		proofs[strconv.Itoa(sel.schema.SeqID)] = &types.ProofInfo{
			Proof:       &types.Proof{Primary: primaryProof, NonRevoc: nonRevocProof},
			SchemaSeqNo: sel.schema.SeqID,
			IssuerDid:   sel.schema.IssuerID,
		}
	}

	return &types.FullProof{
		Proofs:          proofs,
		AggregatedProof: &types.AggregatedProof{CHash: cH, CList: transcript.CList()},
		RequestedProof:  requested,
	}, nil
}
