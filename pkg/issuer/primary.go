// Copyright 2025 MRJCrunch
//
// CL key generation and blind signing. The signature on a commitment U
// follows the IdeMix two-party protocol: the issuer never learns the
// master secret, only U = Rms^ms * S^v'.

package issuer

import (
	"context"
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/crypto/cl"
	"github.com/MRJCrunch/anoncreds/pkg/errors"
	"github.com/MRJCrunch/anoncreds/pkg/types"
)

// GenKeysOptions controls primary key generation.
type GenKeysOptions struct {
	// Bits is the bit length of each safe prime; 0 means 1024.
	Bits int
	// Confidence is the Miller-Rabin round count for (p-1)/2; 0 means 20.
	Confidence int
	// P and Q, when set, skip safe-prime generation. Both must be safe
	// primes of the configured length; tests use the project-standard
	// fixture pairs.
	P *big.Int
	Q *big.Int
}

// GenKeys generates the CL key pair for a schema, publishes the public
// key and retains the secret key. The R bases cover every attribute the
// schema names.
func (i *Issuer) GenKeys(ctx context.Context, key types.SchemaKey, opts GenKeysOptions) (*types.PublicKey, error) {
	lock := i.schemaLock(key)
	lock.Lock()
	defer lock.Unlock()

	schema, err := i.wallet.GetSchema(ctx, key)
	if err != nil {
		return nil, err
	}

	bits := opts.Bits
	if bits == 0 {
		bits = cl.LargePrime
	}
	confidence := opts.Confidence
	if confidence == 0 {
		confidence = 20
	}

	p, q := opts.P, opts.Q
	if p == nil || q == nil {
		if p, err = cl.RandomSafePrime(bits, confidence); err != nil {
			return nil, err
		}
		if q, err = cl.RandomSafePrime(bits, confidence); err != nil {
			return nil, err
		}
	}

	n := new(big.Int).Mul(p, q)
	sk := &types.SecretKey{
		PPrime: new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1),
		QPrime: new(big.Int).Rsh(new(big.Int).Sub(q, big.NewInt(1)), 1),
	}
	order := sk.Order()

	s, err := cl.RandomQR(n)
	if err != nil {
		return nil, err
	}

	exp := func() (*big.Int, error) {
		return cl.RandomInRange(big.NewInt(2), order)
	}
	pow := func(x *big.Int) *big.Int {
		return new(big.Int).Exp(s, x, n)
	}

	xZ, err := exp()
	if err != nil {
		return nil, err
	}
	xMS, err := exp()
	if err != nil {
		return nil, err
	}
	xCtxt, err := exp()
	if err != nil {
		return nil, err
	}

	pk := &types.PublicKey{
		N:     n,
		S:     s,
		Z:     pow(xZ),
		Rms:   pow(xMS),
		Rctxt: pow(xCtxt),
		R:     map[string]*big.Int{},
	}
	for _, attr := range schema.AttrNames {
		x, err := exp()
		if err != nil {
			return nil, err
		}
		pk.R[attr] = pow(x)
	}

	if pk, err = i.repo.PublishPublicKey(ctx, key, pk); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitPublicKey(ctx, key, pk); err != nil {
		return nil, err
	}
	if err := i.wallet.SubmitSecretKey(ctx, key, sk); err != nil {
		return nil, err
	}
	i.log.Info("primary keys generated", "name", key.Name, "bits", bits, "attrs", len(schema.AttrNames))
	return pk, nil
}

// IssueClaim blind-signs the attribute vector registered for the
// requesting user, returning the signature pair together with the raw
// and encoded attribute values.
func (i *Issuer) IssueClaim(ctx context.Context, key types.SchemaKey, req *types.ClaimRequest) (*types.Claims, types.Attributes, error) {
	lock := i.schemaLock(key)
	lock.Lock()
	defer lock.Unlock()

	pk, err := i.wallet.GetPublicKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if req.U == nil || req.U.Sign() == 0 {
		return nil, nil, errors.Input("claim request carries no commitment U")
	}

	attrs, err := i.wallet.GetAttributes(ctx, key, req.UserID)
	if err != nil {
		return nil, nil, err
	}

	m2, err := i.contextAttr(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	primary, err := i.signPrimaryClaim(ctx, key, pk, req.U, m2, attrs)
	if err != nil {
		return nil, nil, err
	}

	claims := &types.Claims{Primary: primary}
	if req.Ur != nil {
		if claims.NonRevoc, err = i.issueNonRevocClaim(ctx, key, req.Ur, m2); err != nil {
			return nil, nil, err
		}
	}

	i.metrics.RecordClaimIssued()
	i.log.Info("claim issued", "name", key.Name, "user", req.UserID, "revocable", claims.NonRevoc != nil)
	return claims, attrs, nil
}

// contextAttr mints a fresh non-zero per-credential scoping value m2 and
// stores it in the issuer wallet; an earlier value is never reused.
func (i *Issuer) contextAttr(ctx context.Context, key types.SchemaKey) (*big.Int, error) {
	for {
		m2, err := cl.RandomBits(cl.LargeContextAttr)
		if err != nil {
			return nil, err
		}
		if m2.Sign() == 0 {
			continue
		}
		if err := i.wallet.SubmitContextAttr(ctx, key, m2); err != nil {
			return nil, err
		}
		return m2, nil
	}
}

func (i *Issuer) signPrimaryClaim(ctx context.Context, key types.SchemaKey, pk *types.PublicKey,
	u, m2 *big.Int, attrs types.Attributes) (*types.PrimaryClaim, error) {

	sk, err := i.wallet.GetSecretKey(ctx, key)
	if err != nil {
		return nil, err
	}
	n := pk.N

	// v'' of the full width with the top bit set, so that v = v' + v''
	// keeps its declared length after the prover folds in the blind.
	vPrimePrime, err := cl.RandomExactBits(cl.LargeVPrimePrime)
	if err != nil {
		return nil, err
	}

	e, err := cl.RandomPrimeInRange(cl.LargeEStart, cl.LargeEEnd)
	if err != nil {
		return nil, err
	}

	// R = Rctxt^m2 * prod_k R_k^a_k
	r := new(big.Int).Exp(pk.Rctxt, m2, n)
	for name, av := range attrs {
		base, ok := pk.R[name]
		if !ok {
			return nil, errors.Input("attribute %q has no base in the public key", name)
		}
		r.Mul(r, new(big.Int).Exp(base, av.Encoded, n)).Mod(r, n)
	}

	// Q = Z * (U * S^v'' * R)^-1 mod N
	numerator := new(big.Int).Exp(pk.S, vPrimePrime, n)
	numerator.Mul(numerator, u).Mul(numerator, r).Mod(numerator, n)
	invNumerator, ok := cl.ModInverse(numerator, n)
	if !ok {
		return nil, errors.Crypto("signing base is not invertible mod N")
	}
	q := new(big.Int).Mul(pk.Z, invNumerator)
	q.Mod(q, n)

	// A = Q^(e^-1 mod p'q') mod N
	d, ok := cl.ModInverse(e, sk.Order())
	if !ok {
		return nil, errors.Crypto("signature exponent is not invertible mod the group order")
	}
	a := new(big.Int).Exp(q, d, n)

	return &types.PrimaryClaim{M2: m2, A: a, E: e, V: vPrimePrime}, nil
}
