// Copyright 2025 MRJCrunch
//
// Package metrics provides counters for monitoring protocol operations:
// claim issuance, proof construction and verification outcomes. A snapshot
// struct backs quick JSON inspection; prometheus collectors back scraping.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides simple counters for monitoring protocol operations.
type Metrics struct {
	ClaimsIssued       int64 `json:"claims_issued"`
	Revocations        int64 `json:"revocations"`
	ProofsBuilt        int64 `json:"proofs_built"`
	ProofBuildFailures int64 `json:"proof_build_failures"`
	ProofsAccepted     int64 `json:"proofs_accepted"`
	ProofsRejected     int64 `json:"proofs_rejected"`

	StartTime time.Time `json:"start_time"`

	claimsIssued   prometheus.Counter
	revocations    prometheus.Counter
	proofsBuilt    prometheus.Counter
	proofFailures  prometheus.Counter
	verifyOutcomes *prometheus.CounterVec
	verifyDuration prometheus.Histogram
}

// New creates a metrics instance and registers its collectors with the
// given registerer. A nil registerer keeps the collectors unregistered,
// which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StartTime: time.Now(),
		claimsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anoncreds_claims_issued_total",
			Help: "Number of claims issued (primary, with optional non-revocation).",
		}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anoncreds_revocations_total",
			Help: "Number of accumulator revocations performed.",
		}),
		proofsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anoncreds_proofs_built_total",
			Help: "Number of full proofs successfully constructed.",
		}),
		proofFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anoncreds_proof_build_failures_total",
			Help: "Number of proof constructions that failed.",
		}),
		verifyOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anoncreds_verifications_total",
			Help: "Number of proof verifications by outcome.",
		}, []string{"outcome"}),
		verifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "anoncreds_verification_duration_seconds",
			Help:    "Wall time of proof verification.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.claimsIssued, m.revocations, m.proofsBuilt,
			m.proofFailures, m.verifyOutcomes, m.verifyDuration)
	}
	return m
}

// RecordClaimIssued increments the issuance counters.
func (m *Metrics) RecordClaimIssued() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.ClaimsIssued, 1)
	m.claimsIssued.Inc()
}

// RecordRevocation increments the revocation counters.
func (m *Metrics) RecordRevocation() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.Revocations, 1)
	m.revocations.Inc()
}

// RecordProofBuilt increments the proof construction counters.
func (m *Metrics) RecordProofBuilt() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.ProofsBuilt, 1)
	m.proofsBuilt.Inc()
}

// RecordProofFailure increments the failed-construction counters.
func (m *Metrics) RecordProofFailure() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.ProofBuildFailures, 1)
	m.proofFailures.Inc()
}

// RecordVerification records a verification outcome and its duration.
func (m *Metrics) RecordVerification(accepted bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	if accepted {
		atomic.AddInt64(&m.ProofsAccepted, 1)
		m.verifyOutcomes.WithLabelValues("accepted").Inc()
	} else {
		atomic.AddInt64(&m.ProofsRejected, 1)
		m.verifyOutcomes.WithLabelValues("rejected").Inc()
	}
	m.verifyDuration.Observe(elapsed.Seconds())
}
