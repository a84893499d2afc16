// Copyright 2025 MRJCrunch
//
// Canonical string-dictionary forms. Integers encode as decimal strings,
// pairing points as compressed hex, optional fields as nil. Decoding a
// primary group element requires the modulus N out of band and normalizes
// the element mod N.

package types

import (
	"math/big"
	"strconv"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/pairing"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
)

// StrDict is the generic wire dictionary.
type StrDict = map[string]interface{}

func encInt(v *big.Int) string {
	return v.Text(10)
}

func decIntStr(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Input("invalid decimal integer %q", s)
	}
	return v, nil
}

func getStr(d StrDict, key string) (string, error) {
	raw, ok := d[key]
	if !ok {
		return "", errors.Input("missing field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.Input("field %q is not a string", key)
	}
	return s, nil
}

func getInt(d StrDict, key string) (*big.Int, error) {
	s, err := getStr(d, key)
	if err != nil {
		return nil, err
	}
	return decIntStr(s)
}

func getGroupInt(d StrDict, key string, n *big.Int) (*big.Int, error) {
	v, err := getInt(d, key)
	if err != nil {
		return nil, err
	}
	return v.Mod(v, n), nil
}

func getDict(d StrDict, key string) (StrDict, error) {
	raw, ok := d[key]
	if !ok {
		return nil, errors.Input("missing field %q", key)
	}
	sub, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Input("field %q is not a dictionary", key)
	}
	return sub, nil
}

func getSeqNo(d StrDict, key string) (int, error) {
	s, err := getStr(d, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Input("field %q is not a sequence number: %v", key, err)
	}
	return n, nil
}

// --- SchemaKey / Schema ---

// ToStrDict encodes the schema key.
func (k SchemaKey) ToStrDict() StrDict {
	return StrDict{"name": k.Name, "version": k.Version, "issuer_id": k.IssuerID}
}

// SchemaKeyFromStrDict decodes a schema key.
func SchemaKeyFromStrDict(d StrDict) (SchemaKey, error) {
	var k SchemaKey
	var err error
	if k.Name, err = getStr(d, "name"); err != nil {
		return k, err
	}
	if k.Version, err = getStr(d, "version"); err != nil {
		return k, err
	}
	k.IssuerID, err = getStr(d, "issuer_id")
	return k, err
}

// ToStrDict encodes the schema.
func (s *Schema) ToStrDict() StrDict {
	attrs := make([]interface{}, len(s.AttrNames))
	for i, a := range s.AttrNames {
		attrs[i] = a
	}
	return StrDict{
		"name":       s.Name,
		"version":    s.Version,
		"issuer_id":  s.IssuerID,
		"attr_names": attrs,
		"seq_no":     strconv.Itoa(s.SeqID),
	}
}

// SchemaFromStrDict decodes a schema.
func SchemaFromStrDict(d StrDict) (*Schema, error) {
	key, err := SchemaKeyFromStrDict(d)
	if err != nil {
		return nil, err
	}
	rawAttrs, ok := d["attr_names"].([]interface{})
	if !ok {
		return nil, errors.Input("field \"attr_names\" is not a list")
	}
	attrs := make([]string, len(rawAttrs))
	for i, a := range rawAttrs {
		s, ok := a.(string)
		if !ok {
			return nil, errors.Input("attribute name at %d is not a string", i)
		}
		attrs[i] = s
	}
	seq, err := getSeqNo(d, "seq_no")
	if err != nil {
		return nil, err
	}
	return &Schema{SchemaKey: key, AttrNames: attrs, SeqID: seq}, nil
}

// --- PublicKey ---

// ToStrDict encodes the public key as {n,rms,rctxt,r,s,z}.
func (pk *PublicKey) ToStrDict() StrDict {
	r := StrDict{}
	for name, base := range pk.R {
		r[name] = encInt(base)
	}
	return StrDict{
		"n":     encInt(pk.N),
		"rms":   encInt(pk.Rms),
		"rctxt": encInt(pk.Rctxt),
		"r":     r,
		"s":     encInt(pk.S),
		"z":     encInt(pk.Z),
	}
}

// PublicKeyFromStrDict decodes a public key, normalizing every group
// element mod the embedded modulus.
func PublicKeyFromStrDict(d StrDict) (*PublicKey, error) {
	n, err := getInt(d, "n")
	if err != nil {
		return nil, err
	}
	pk := &PublicKey{N: n, R: map[string]*big.Int{}}
	if pk.Rms, err = getGroupInt(d, "rms", n); err != nil {
		return nil, err
	}
	if pk.Rctxt, err = getGroupInt(d, "rctxt", n); err != nil {
		return nil, err
	}
	if pk.S, err = getGroupInt(d, "s", n); err != nil {
		return nil, err
	}
	if pk.Z, err = getGroupInt(d, "z", n); err != nil {
		return nil, err
	}
	rd, err := getDict(d, "r")
	if err != nil {
		return nil, err
	}
	for name, raw := range rd {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Input("r base %q is not a string", name)
		}
		base, err := decIntStr(s)
		if err != nil {
			return nil, err
		}
		pk.R[name] = base.Mod(base, n)
	}
	return pk, nil
}

// --- ClaimRequest ---

// ToStrDict encodes the claim request as {prover_did,u,ur}.
func (r *ClaimRequest) ToStrDict() StrDict {
	d := StrDict{
		"prover_did": r.UserID,
		"u":          encInt(r.U),
		"ur":         nil,
	}
	if r.Ur != nil {
		d["ur"] = r.Ur.Hex()
	}
	return d
}

// ClaimRequestFromStrDict decodes a claim request; N is required to
// normalize the primary commitment.
func ClaimRequestFromStrDict(d StrDict, n *big.Int) (*ClaimRequest, error) {
	did, err := getStr(d, "prover_did")
	if err != nil {
		return nil, err
	}
	u, err := getGroupInt(d, "u", n)
	if err != nil {
		return nil, err
	}
	req := &ClaimRequest{UserID: did, U: u}
	if raw, ok := d["ur"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Input("field \"ur\" is not a string")
		}
		if req.Ur, err = pairing.G1FromHex(s); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// --- PrimaryClaim ---

// ToStrDict encodes the claim as {m2,a,e,v}.
func (c *PrimaryClaim) ToStrDict() StrDict {
	return StrDict{
		"m2": encInt(c.M2),
		"a":  encInt(c.A),
		"e":  encInt(c.E),
		"v":  encInt(c.V),
	}
}

// PrimaryClaimFromStrDict decodes a claim; N normalizes the signature
// element A.
func PrimaryClaimFromStrDict(d StrDict, n *big.Int) (*PrimaryClaim, error) {
	var c PrimaryClaim
	var err error
	if c.M2, err = getInt(d, "m2"); err != nil {
		return nil, err
	}
	if c.A, err = getGroupInt(d, "a", n); err != nil {
		return nil, err
	}
	if c.E, err = getInt(d, "e"); err != nil {
		return nil, err
	}
	c.V, err = getInt(d, "v")
	return &c, err
}

// --- AttributeValues ---

// ToStrList encodes attribute values as [raw, encoded].
func (a AttributeValues) ToStrList() []string {
	return []string{a.Raw, encInt(a.Encoded)}
}

// AttributeValuesFromStrList decodes the [raw, encoded] pair.
func AttributeValuesFromStrList(l []string) (AttributeValues, error) {
	if len(l) != 2 {
		return AttributeValues{}, errors.Input("attribute values must be a [raw, encoded] pair, got %d entries", len(l))
	}
	enc, err := decIntStr(l[1])
	if err != nil {
		return AttributeValues{}, err
	}
	return AttributeValues{Raw: l[0], Encoded: enc}, nil
}

// --- ProofInput ---

// ToStrDict encodes the proof request.
func (p *ProofInput) ToStrDict() StrDict {
	attrs := StrDict{}
	for uuid, info := range p.RevealedAttrs {
		e := StrDict{"name": info.Name}
		if info.SchemaSeqNo != nil {
			e["schema_seq_no"] = strconv.Itoa(*info.SchemaSeqNo)
		}
		if info.ClaimDefSeqNo != nil {
			e["claim_def_seq_no"] = strconv.Itoa(*info.ClaimDefSeqNo)
		}
		attrs[uuid] = e
	}
	preds := StrDict{}
	for uuid, pred := range p.Predicates {
		e := StrDict{
			"type":     "ge",
			"attrName": pred.AttrName,
			"value":    strconv.Itoa(pred.Value),
		}
		if pred.SchemaSeqNo != nil {
			e["schema_seq_no"] = strconv.Itoa(*pred.SchemaSeqNo)
		}
		if pred.ClaimDefSeqNo != nil {
			e["claim_def_seq_no"] = strconv.Itoa(*pred.ClaimDefSeqNo)
		}
		preds[uuid] = e
	}
	return StrDict{
		"name":                 p.Name,
		"version":              p.Version,
		"nonce":                encInt(p.Nonce),
		"verifiableAttributes": attrs,
		"predicates":           preds,
	}
}

// ProofInputFromStrDict decodes a proof request.
func ProofInputFromStrDict(d StrDict) (*ProofInput, error) {
	p := &ProofInput{
		RevealedAttrs: map[string]AttributeInfo{},
		Predicates:    map[string]PredicateGE{},
	}
	var err error
	if p.Name, err = getStr(d, "name"); err != nil {
		return nil, err
	}
	if p.Version, err = getStr(d, "version"); err != nil {
		return nil, err
	}
	if p.Nonce, err = getInt(d, "nonce"); err != nil {
		return nil, err
	}
	attrs, err := getDict(d, "verifiableAttributes")
	if err != nil {
		return nil, err
	}
	for uuid, raw := range attrs {
		e, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Input("attribute %q is not a dictionary", uuid)
		}
		var info AttributeInfo
		if info.Name, err = getStr(e, "name"); err != nil {
			return nil, err
		}
		if _, ok := e["schema_seq_no"]; ok {
			n, err := getSeqNo(e, "schema_seq_no")
			if err != nil {
				return nil, err
			}
			info.SchemaSeqNo = &n
		}
		if _, ok := e["claim_def_seq_no"]; ok {
			n, err := getSeqNo(e, "claim_def_seq_no")
			if err != nil {
				return nil, err
			}
			info.ClaimDefSeqNo = &n
		}
		p.RevealedAttrs[uuid] = info
	}
	preds, err := getDict(d, "predicates")
	if err != nil {
		return nil, err
	}
	for uuid, raw := range preds {
		e, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Input("predicate %q is not a dictionary", uuid)
		}
		typ, err := getStr(e, "type")
		if err != nil {
			return nil, err
		}
		if typ != "ge" {
			return nil, errors.Input("unsupported predicate type %q", typ)
		}
		var pred PredicateGE
		if pred.AttrName, err = getStr(e, "attrName"); err != nil {
			return nil, err
		}
		if pred.Value, err = getSeqNo(e, "value"); err != nil {
			return nil, err
		}
		if _, ok := e["schema_seq_no"]; ok {
			n, err := getSeqNo(e, "schema_seq_no")
			if err != nil {
				return nil, err
			}
			pred.SchemaSeqNo = &n
		}
		if _, ok := e["claim_def_seq_no"]; ok {
			n, err := getSeqNo(e, "claim_def_seq_no")
			if err != nil {
				return nil, err
			}
			pred.ClaimDefSeqNo = &n
		}
		p.Predicates[uuid] = pred
	}
	return p, nil
}

// --- RequestedProof ---

// ToStrDict encodes the requested-proof echo.
func (r *RequestedProof) ToStrDict() StrDict {
	revealed := StrDict{}
	for uuid, triple := range r.RevealedAttrs {
		revealed[uuid] = []interface{}{triple[0], triple[1], triple[2]}
	}
	preds := StrDict{}
	for uuid, seq := range r.Predicates {
		preds[uuid] = seq
	}
	self := StrDict{}
	for k, v := range r.SelfAttestedAttrs {
		self[k] = v
	}
	unrevealed := StrDict{}
	for k, v := range r.UnrevealedAttrs {
		unrevealed[k] = v
	}
	return StrDict{
		"revealed_attrs":      revealed,
		"predicates":          preds,
		"self_attested_attrs": self,
		"unrevealed_attrs":    unrevealed,
	}
}

// RequestedProofFromStrDict decodes the requested-proof echo.
func RequestedProofFromStrDict(d StrDict) (*RequestedProof, error) {
	r := NewRequestedProof()
	revealed, err := getDict(d, "revealed_attrs")
	if err != nil {
		return nil, err
	}
	for uuid, raw := range revealed {
		l, ok := raw.([]interface{})
		if !ok || len(l) != 3 {
			return nil, errors.Input("revealed attribute %q is not a 3-list", uuid)
		}
		var triple [3]string
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, errors.Input("revealed attribute %q entry %d is not a string", uuid, i)
			}
			triple[i] = s
		}
		r.RevealedAttrs[uuid] = triple
	}
	preds, err := getDict(d, "predicates")
	if err != nil {
		return nil, err
	}
	for uuid, raw := range preds {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Input("predicate %q is not a string", uuid)
		}
		r.Predicates[uuid] = s
	}
	if sub, err := getDict(d, "self_attested_attrs"); err == nil {
		for k, v := range sub {
			if s, ok := v.(string); ok {
				r.SelfAttestedAttrs[k] = s
			}
		}
	}
	if sub, err := getDict(d, "unrevealed_attrs"); err == nil {
		for k, v := range sub {
			if s, ok := v.(string); ok {
				r.UnrevealedAttrs[k] = s
			}
		}
	}
	return r, nil
}

// --- AggregatedProof ---

// ToStrDict encodes the aggregated proof as {cHash, CList}.
func (a *AggregatedProof) ToStrDict() StrDict {
	clist := make([]interface{}, len(a.CList))
	for i, enc := range a.CList {
		ints := make([]interface{}, len(enc))
		for j, b := range enc {
			ints[j] = int(b)
		}
		clist[i] = ints
	}
	return StrDict{"cHash": encInt(a.CHash), "CList": clist}
}

// AggregatedProofFromStrDict decodes the aggregated proof.
func AggregatedProofFromStrDict(d StrDict) (*AggregatedProof, error) {
	cHash, err := getInt(d, "cHash")
	if err != nil {
		return nil, err
	}
	rawList, ok := d["CList"].([]interface{})
	if !ok {
		return nil, errors.Input("field \"CList\" is not a list")
	}
	clist := make([][]byte, len(rawList))
	for i, raw := range rawList {
		ints, ok := raw.([]interface{})
		if !ok {
			return nil, errors.Input("CList entry %d is not a byte list", i)
		}
		b := make([]byte, len(ints))
		for j, e := range ints {
			switch v := e.(type) {
			case int:
				b[j] = byte(v)
			case float64:
				b[j] = byte(int(v))
			default:
				return nil, errors.Input("CList entry %d byte %d has type %T", i, j, e)
			}
		}
		clist[i] = b
	}
	return &AggregatedProof{CHash: cHash, CList: clist}, nil
}
