// Copyright 2025 MRJCrunch

package types

import (
	"math/big"
	"strconv"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
)

func encIntMap(m map[string]*big.Int) StrDict {
	out := StrDict{}
	for k, v := range m {
		out[k] = encInt(v)
	}
	return out
}

func decIntMap(d StrDict, key string) (map[string]*big.Int, error) {
	sub, err := getDict(d, key)
	if err != nil {
		return nil, err
	}
	out := map[string]*big.Int{}
	for k, raw := range sub {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Input("entry %q of %q is not a string", k, key)
		}
		v, err := decIntStr(s)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// --- PrimaryEqualProof ---

// ToStrDict encodes the equality proof.
func (p *PrimaryEqualProof) ToStrDict() StrDict {
	revealed := make([]interface{}, len(p.RevealedAttrs))
	for i, a := range p.RevealedAttrs {
		revealed[i] = a
	}
	return StrDict{
		"a_prime":        encInt(p.APrime),
		"e":              encInt(p.E),
		"v":              encInt(p.V),
		"m":              encIntMap(p.M),
		"m1":             encInt(p.M1),
		"m2":             encInt(p.M2),
		"revealed_attrs": revealed,
	}
}

// PrimaryEqualProofFromStrDict decodes the equality proof.
func PrimaryEqualProofFromStrDict(d StrDict) (*PrimaryEqualProof, error) {
	var p PrimaryEqualProof
	var err error
	if p.APrime, err = getInt(d, "a_prime"); err != nil {
		return nil, err
	}
	if p.E, err = getInt(d, "e"); err != nil {
		return nil, err
	}
	if p.V, err = getInt(d, "v"); err != nil {
		return nil, err
	}
	if p.M, err = decIntMap(d, "m"); err != nil {
		return nil, err
	}
	if p.M1, err = getInt(d, "m1"); err != nil {
		return nil, err
	}
	if p.M2, err = getInt(d, "m2"); err != nil {
		return nil, err
	}
	raw, ok := d["revealed_attrs"].([]interface{})
	if !ok {
		return nil, errors.Input("field \"revealed_attrs\" is not a list")
	}
	p.RevealedAttrs = make([]string, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, errors.Input("revealed attribute %d is not a string", i)
		}
		p.RevealedAttrs[i] = s
	}
	return &p, nil
}

// --- PrimaryPredicateGEProof ---

// ToStrDict encodes a >= predicate proof.
func (p *PrimaryPredicateGEProof) ToStrDict() StrDict {
	pred := StrDict{
		"attr_name": p.Predicate.AttrName,
		"value":     strconv.Itoa(p.Predicate.Value),
	}
	return StrDict{
		"u":         encIntMap(p.U),
		"r":         encIntMap(p.R),
		"mj":        encInt(p.Mj),
		"alpha":     encInt(p.Alpha),
		"t":         encIntMap(p.T),
		"predicate": pred,
	}
}

// PrimaryPredicateGEProofFromStrDict decodes a >= predicate proof.
func PrimaryPredicateGEProofFromStrDict(d StrDict) (*PrimaryPredicateGEProof, error) {
	var p PrimaryPredicateGEProof
	var err error
	if p.U, err = decIntMap(d, "u"); err != nil {
		return nil, err
	}
	if p.R, err = decIntMap(d, "r"); err != nil {
		return nil, err
	}
	if p.Mj, err = getInt(d, "mj"); err != nil {
		return nil, err
	}
	if p.Alpha, err = getInt(d, "alpha"); err != nil {
		return nil, err
	}
	if p.T, err = decIntMap(d, "t"); err != nil {
		return nil, err
	}
	pred, err := getDict(d, "predicate")
	if err != nil {
		return nil, err
	}
	if p.Predicate.AttrName, err = getStr(pred, "attr_name"); err != nil {
		return nil, err
	}
	if p.Predicate.Value, err = getSeqNo(pred, "value"); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- PrimaryProof ---

// ToStrDict encodes the primary proof.
func (p *PrimaryProof) ToStrDict() StrDict {
	ges := make([]interface{}, len(p.GEProofs))
	for i, ge := range p.GEProofs {
		ges[i] = ge.ToStrDict()
	}
	return StrDict{"eq_proof": p.EqProof.ToStrDict(), "ge_proofs": ges}
}

// PrimaryProofFromStrDict decodes the primary proof.
func PrimaryProofFromStrDict(d StrDict) (*PrimaryProof, error) {
	eqDict, err := getDict(d, "eq_proof")
	if err != nil {
		return nil, err
	}
	eq, err := PrimaryEqualProofFromStrDict(eqDict)
	if err != nil {
		return nil, err
	}
	rawGEs, ok := d["ge_proofs"].([]interface{})
	if !ok {
		return nil, errors.Input("field \"ge_proofs\" is not a list")
	}
	ges := make([]*PrimaryPredicateGEProof, len(rawGEs))
	for i, raw := range rawGEs {
		sub, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Input("ge proof %d is not a dictionary", i)
		}
		if ges[i], err = PrimaryPredicateGEProofFromStrDict(sub); err != nil {
			return nil, err
		}
	}
	return &PrimaryProof{EqProof: eq, GEProofs: ges}, nil
}

// --- NonRevocProof ---

// ToStrDict encodes the accumulator subproof.
func (p *NonRevocProof) ToStrDict() StrDict {
	x := p.XList
	c := p.CList
	return StrDict{
		"x_list": StrDict{
			"rho": encInt(x.Rho), "o": encInt(x.O), "c": encInt(x.C),
			"o_prime": encInt(x.OPrime), "m": encInt(x.M), "m_prime": encInt(x.MPrime),
			"t": encInt(x.T), "t_prime": encInt(x.TPrime), "m2": encInt(x.M2),
			"s": encInt(x.S), "r": encInt(x.R), "r_prime": encInt(x.RPrime),
			"r_prime_prime": encInt(x.RPrimePrime), "r_prime_prime_prime": encInt(x.RPrimePrimePrime),
		},
		"c_list": StrDict{
			"e": c.E.Hex(), "d": c.D.Hex(), "a": c.A.Hex(), "g": c.G.Hex(),
			"w": c.W.Hex(), "s": c.S.Hex(), "u": c.U.Hex(),
		},
	}
}

// NonRevocProofFromStrDict decodes the accumulator subproof.
func NonRevocProofFromStrDict(d StrDict) (*NonRevocProof, error) {
	xd, err := getDict(d, "x_list")
	if err != nil {
		return nil, err
	}
	keys := []string{"rho", "o", "c", "o_prime", "m", "m_prime", "t", "t_prime",
		"m2", "s", "r", "r_prime", "r_prime_prime", "r_prime_prime_prime"}
	vals := make([]*big.Int, len(keys))
	for i, k := range keys {
		if vals[i], err = getInt(xd, k); err != nil {
			return nil, err
		}
	}
	cd, err := getDict(d, "c_list")
	if err != nil {
		return nil, err
	}
	g1 := func(key string) (*pairing.PointG1, error) {
		s, err := getStr(cd, key)
		if err != nil {
			return nil, err
		}
		return pairing.G1FromHex(s)
	}
	g2 := func(key string) (*pairing.PointG2, error) {
		s, err := getStr(cd, key)
		if err != nil {
			return nil, err
		}
		return pairing.G2FromHex(s)
	}
	c := &NonRevocProofCList{}
	if c.E, err = g1("e"); err != nil {
		return nil, err
	}
	if c.D, err = g1("d"); err != nil {
		return nil, err
	}
	if c.A, err = g1("a"); err != nil {
		return nil, err
	}
	if c.G, err = g1("g"); err != nil {
		return nil, err
	}
	if c.W, err = g2("w"); err != nil {
		return nil, err
	}
	if c.S, err = g2("s"); err != nil {
		return nil, err
	}
	if c.U, err = g2("u"); err != nil {
		return nil, err
	}
	return &NonRevocProof{XList: XListFromList(vals), CList: c}, nil
}

// --- Proof / ProofInfo / FullProof ---

// ToStrDict encodes one schema's subproof pair.
func (p *Proof) ToStrDict() StrDict {
	d := StrDict{
		"primary_proof":   p.Primary.ToStrDict(),
		"non_revoc_proof": nil,
	}
	if p.NonRevoc != nil {
		d["non_revoc_proof"] = p.NonRevoc.ToStrDict()
	}
	return d
}

// ProofFromStrDict decodes one schema's subproof pair.
func ProofFromStrDict(d StrDict) (*Proof, error) {
	pd, err := getDict(d, "primary_proof")
	if err != nil {
		return nil, err
	}
	primary, err := PrimaryProofFromStrDict(pd)
	if err != nil {
		return nil, err
	}
	p := &Proof{Primary: primary}
	if raw, ok := d["non_revoc_proof"]; ok && raw != nil {
		sub, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Input("field \"non_revoc_proof\" is not a dictionary")
		}
		if p.NonRevoc, err = NonRevocProofFromStrDict(sub); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ToStrDict encodes the proof with its schema binding.
func (p *ProofInfo) ToStrDict() StrDict {
	return StrDict{
		"proof":         p.Proof.ToStrDict(),
		"schema_seq_no": strconv.Itoa(p.SchemaSeqNo),
		"issuer_did":    p.IssuerDid,
	}
}

// ProofInfoFromStrDict decodes the proof with its schema binding.
func ProofInfoFromStrDict(d StrDict) (*ProofInfo, error) {
	pd, err := getDict(d, "proof")
	if err != nil {
		return nil, err
	}
	proof, err := ProofFromStrDict(pd)
	if err != nil {
		return nil, err
	}
	seq, err := getSeqNo(d, "schema_seq_no")
	if err != nil {
		return nil, err
	}
	did, err := getStr(d, "issuer_did")
	if err != nil {
		return nil, err
	}
	return &ProofInfo{Proof: proof, SchemaSeqNo: seq, IssuerDid: did}, nil
}

// ToStrDict encodes the full aggregated proof.
func (f *FullProof) ToStrDict() StrDict {
	proofs := StrDict{}
	for seq, info := range f.Proofs {
		proofs[seq] = info.ToStrDict()
	}
	return StrDict{
		"proofs":           proofs,
		"aggregated_proof": f.AggregatedProof.ToStrDict(),
		"requested_proof":  f.RequestedProof.ToStrDict(),
	}
}

// FullProofFromStrDict decodes the full aggregated proof.
func FullProofFromStrDict(d StrDict) (*FullProof, error) {
	rawProofs, err := getDict(d, "proofs")
	if err != nil {
		return nil, err
	}
	proofs := map[string]*ProofInfo{}
	for seq, raw := range rawProofs {
		sub, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Input("proof %q is not a dictionary", seq)
		}
		if proofs[seq], err = ProofInfoFromStrDict(sub); err != nil {
			return nil, err
		}
	}
	ad, err := getDict(d, "aggregated_proof")
	if err != nil {
		return nil, err
	}
	agg, err := AggregatedProofFromStrDict(ad)
	if err != nil {
		return nil, err
	}
	rd, err := getDict(d, "requested_proof")
	if err != nil {
		return nil, err
	}
	req, err := RequestedProofFromStrDict(rd)
	if err != nil {
		return nil, err
	}
	return &FullProof{Proofs: proofs, AggregatedProof: agg, RequestedProof: req}, nil
}

// --- Claims / NonRevocationClaim / revocation records ---

// ToStrDict encodes the issued signature pair.
func (c *Claims) ToStrDict() StrDict {
	d := StrDict{
		"primary_claim":        c.Primary.ToStrDict(),
		"non_revocation_claim": nil,
	}
	if c.NonRevoc != nil {
		d["non_revocation_claim"] = c.NonRevoc.ToStrDict()
	}
	return d
}

// ClaimsFromStrDict decodes the issued signature pair; N normalizes the
// primary signature element.
func ClaimsFromStrDict(d StrDict, n *big.Int) (*Claims, error) {
	pd, err := getDict(d, "primary_claim")
	if err != nil {
		return nil, err
	}
	primary, err := PrimaryClaimFromStrDict(pd, n)
	if err != nil {
		return nil, err
	}
	c := &Claims{Primary: primary}
	if raw, ok := d["non_revocation_claim"]; ok && raw != nil {
		sub, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Input("field \"non_revocation_claim\" is not a dictionary")
		}
		if c.NonRevoc, err = NonRevocationClaimFromStrDict(sub); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func encIndexSet(v IndexSet) []interface{} {
	sorted := v.Sorted()
	out := make([]interface{}, len(sorted))
	for i, idx := range sorted {
		out[i] = strconv.Itoa(idx)
	}
	return out
}

func decIndexSet(d StrDict, key string) (IndexSet, error) {
	raw, ok := d[key].([]interface{})
	if !ok {
		return nil, errors.Input("field %q is not a list", key)
	}
	v := NewIndexSet()
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, errors.Input("index %d of %q is not a string", i, key)
		}
		idx, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Input("index %d of %q is not an integer: %v", i, key, err)
		}
		v.Add(idx)
	}
	return v, nil
}

// ToStrDict encodes the witness.
func (w *WitnessCredential) ToStrDict() StrDict {
	return StrDict{
		"sigma_i": w.SigmaI.Hex(),
		"u_i":     w.UI.Hex(),
		"g_i":     w.GI.Hex(),
		"omega":   w.Omega.Hex(),
		"v":       encIndexSet(w.V),
	}
}

// WitnessCredentialFromStrDict decodes the witness.
func WitnessCredentialFromStrDict(d StrDict) (*WitnessCredential, error) {
	w := &WitnessCredential{}
	var err error
	var s string
	if s, err = getStr(d, "sigma_i"); err != nil {
		return nil, err
	}
	if w.SigmaI, err = pairing.G2FromHex(s); err != nil {
		return nil, err
	}
	if s, err = getStr(d, "u_i"); err != nil {
		return nil, err
	}
	if w.UI, err = pairing.G2FromHex(s); err != nil {
		return nil, err
	}
	if s, err = getStr(d, "g_i"); err != nil {
		return nil, err
	}
	if w.GI, err = pairing.G1FromHex(s); err != nil {
		return nil, err
	}
	if s, err = getStr(d, "omega"); err != nil {
		return nil, err
	}
	if w.Omega, err = pairing.G2FromHex(s); err != nil {
		return nil, err
	}
	if w.V, err = decIndexSet(d, "v"); err != nil {
		return nil, err
	}
	return w, nil
}

// ToStrDict encodes the non-revocation claim.
func (c *NonRevocationClaim) ToStrDict() StrDict {
	return StrDict{
		"i_a":     c.IA,
		"sigma":   c.Sigma.Hex(),
		"c":       encInt(c.C),
		"v":       encInt(c.V),
		"witness": c.Witness.ToStrDict(),
		"g_i":     c.GI.Hex(),
		"i":       strconv.Itoa(c.I),
		"m2":      encInt(c.M2),
	}
}

// NonRevocationClaimFromStrDict decodes the non-revocation claim.
func NonRevocationClaimFromStrDict(d StrDict) (*NonRevocationClaim, error) {
	c := &NonRevocationClaim{}
	var err error
	if c.IA, err = getStr(d, "i_a"); err != nil {
		return nil, err
	}
	s, err := getStr(d, "sigma")
	if err != nil {
		return nil, err
	}
	if c.Sigma, err = pairing.G1FromHex(s); err != nil {
		return nil, err
	}
	if c.C, err = getInt(d, "c"); err != nil {
		return nil, err
	}
	if c.V, err = getInt(d, "v"); err != nil {
		return nil, err
	}
	wd, err := getDict(d, "witness")
	if err != nil {
		return nil, err
	}
	if c.Witness, err = WitnessCredentialFromStrDict(wd); err != nil {
		return nil, err
	}
	if s, err = getStr(d, "g_i"); err != nil {
		return nil, err
	}
	if c.GI, err = pairing.G1FromHex(s); err != nil {
		return nil, err
	}
	if c.I, err = getSeqNo(d, "i"); err != nil {
		return nil, err
	}
	if c.M2, err = getInt(d, "m2"); err != nil {
		return nil, err
	}
	return c, nil
}

// ToStrDict encodes the accumulator.
func (a *Accumulator) ToStrDict() StrDict {
	return StrDict{
		"i_a":           a.IA,
		"acc":           a.Acc.Hex(),
		"v":             encIndexSet(a.V),
		"max":           strconv.Itoa(a.L),
		"current_index": strconv.Itoa(a.CurrentIndex),
	}
}

// AccumulatorFromStrDict decodes the accumulator.
func AccumulatorFromStrDict(d StrDict) (*Accumulator, error) {
	a := &Accumulator{}
	var err error
	if a.IA, err = getStr(d, "i_a"); err != nil {
		return nil, err
	}
	s, err := getStr(d, "acc")
	if err != nil {
		return nil, err
	}
	if a.Acc, err = pairing.G2FromHex(s); err != nil {
		return nil, err
	}
	if a.V, err = decIndexSet(d, "v"); err != nil {
		return nil, err
	}
	if a.L, err = getSeqNo(d, "max"); err != nil {
		return nil, err
	}
	if a.CurrentIndex, err = getSeqNo(d, "current_index"); err != nil {
		return nil, err
	}
	return a, nil
}

// ToStrDict encodes the accumulator public key.
func (a *AccumulatorPublicKey) ToStrDict() StrDict {
	return StrDict{"z": a.Z.Hex()}
}

// AccumulatorPublicKeyFromStrDict decodes the accumulator public key.
func AccumulatorPublicKeyFromStrDict(d StrDict) (*AccumulatorPublicKey, error) {
	s, err := getStr(d, "z")
	if err != nil {
		return nil, err
	}
	z, err := pairing.GTFromHex(s)
	if err != nil {
		return nil, err
	}
	return &AccumulatorPublicKey{Z: z}, nil
}

// ToStrDict encodes the revocation public key.
func (pk *RevocationPublicKey) ToStrDict() StrDict {
	return StrDict{
		"g": pk.G.Hex(), "g_dash": pk.GDash.Hex(),
		"h": pk.H.Hex(), "h0": pk.H0.Hex(), "h1": pk.H1.Hex(), "h2": pk.H2.Hex(),
		"htilde": pk.HTilde.Hex(), "h_cap": pk.HCap.Hex(),
		"u": pk.U.Hex(), "pk": pk.PK.Hex(), "y": pk.Y.Hex(),
	}
}

// RevocationPublicKeyFromStrDict decodes the revocation public key.
func RevocationPublicKeyFromStrDict(d StrDict) (*RevocationPublicKey, error) {
	pk := &RevocationPublicKey{}
	g1 := func(key string, dst **pairing.PointG1) error {
		s, err := getStr(d, key)
		if err != nil {
			return err
		}
		*dst, err = pairing.G1FromHex(s)
		return err
	}
	g2 := func(key string, dst **pairing.PointG2) error {
		s, err := getStr(d, key)
		if err != nil {
			return err
		}
		*dst, err = pairing.G2FromHex(s)
		return err
	}
	for _, step := range []error{
		g1("g", &pk.G), g2("g_dash", &pk.GDash),
		g1("h", &pk.H), g1("h0", &pk.H0), g1("h1", &pk.H1), g1("h2", &pk.H2),
		g1("htilde", &pk.HTilde), g2("h_cap", &pk.HCap),
		g2("u", &pk.U), g1("pk", &pk.PK), g2("y", &pk.Y),
	} {
		if step != nil {
			return nil, step
		}
	}
	return pk, nil
}

// ToStrDict encodes the tails sequence.
func (t *Tails) ToStrDict() StrDict {
	g := StrDict{}
	for i, p := range t.G {
		g[strconv.Itoa(i)] = p.Hex()
	}
	gDash := StrDict{}
	for i, p := range t.GDash {
		gDash[strconv.Itoa(i)] = p.Hex()
	}
	return StrDict{"l": strconv.Itoa(t.L), "g": g, "g_dash": gDash}
}

// TailsFromStrDict decodes the tails sequence.
func TailsFromStrDict(d StrDict) (*Tails, error) {
	l, err := getSeqNo(d, "l")
	if err != nil {
		return nil, err
	}
	t := &Tails{L: l, G: map[int]*pairing.PointG1{}, GDash: map[int]*pairing.PointG2{}}
	gd, err := getDict(d, "g")
	if err != nil {
		return nil, err
	}
	for k, raw := range gd {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, errors.Input("tails index %q is not an integer", k)
		}
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Input("tails entry %q is not a string", k)
		}
		if t.G[i], err = pairing.G1FromHex(s); err != nil {
			return nil, err
		}
	}
	gdd, err := getDict(d, "g_dash")
	if err != nil {
		return nil, err
	}
	for k, raw := range gdd {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, errors.Input("tails index %q is not an integer", k)
		}
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Input("tails entry %q is not a string", k)
		}
		if t.GDash[i], err = pairing.G2FromHex(s); err != nil {
			return nil, err
		}
	}
	return t, nil
}
