// Copyright 2025 MRJCrunch
//
// Tau-hat recomputation for the accumulator subproof:
// tau^_i = f_i(responses) * expected_i^-cH, with f the shared linear
// map and the expected values taken against the verifier's view of the
// current accumulator. A proof built on a stale accumulator fails here.

package verifier

import (
	"context"
	"math/big"

	"github.com/MRJCrunch/anoncreds/pkg/types"
)

func (v *Verifier) verifyNonRevocation(ctx context.Context, key types.SchemaKey,
	cH *big.Int, proof *types.NonRevocProof) ([]*big.Int, error) {

	pk, err := v.wallet.GetRevocationPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	acc, err := v.wallet.GetAccumulator(ctx, key)
	if err != nil {
		return nil, err
	}
	accPK, err := v.wallet.GetAccumulatorPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}

	calc := types.CreateTauListValues(pk, acc, proof.XList, proof.CList)
	expected := types.CreateTauListExpectedValues(pk, acc, accPK, proof.CList)

	negCH := new(big.Int).Neg(cH)
	hat := &types.NonRevocProofTauList{
		T1: calc.T1.Mul(expected.T1.Exp(negCH)),
		T2: calc.T2.Mul(expected.T2.Exp(negCH)),
		T3: calc.T3.Mul(expected.T3.Exp(negCH)),
		T4: calc.T4.Mul(expected.T4.Exp(negCH)),
		T5: calc.T5.Mul(expected.T5.Exp(negCH)),
		T6: calc.T6.Mul(expected.T6.Exp(negCH)),
		T7: calc.T7.Mul(expected.T7.Exp(negCH)),
		T8: calc.T8.Mul(expected.T8.Exp(negCH)),
	}
	return hat.AsIntList(), nil
}
