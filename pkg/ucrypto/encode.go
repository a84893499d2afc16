// Copyright 2025 MRJCrunch

package ucrypto

import (
	"crypto/sha256"
	"math/big"
)

var encodingBound = new(big.Int).Lsh(big.NewInt(1), 256)

// EncodeAttr maps a raw attribute to the integer the signature binds.
// Numeric attributes that fit the encoding range are used directly;
// everything else hashes with SHA-256 over UTF-8, interpreted big-endian.
// The raw form is echoed back in the revealed section of a proof.
func EncodeAttr(raw string) *big.Int {
	if v, ok := new(big.Int).SetString(raw, 10); ok && v.Sign() >= 0 && v.Cmp(encodingBound) < 0 {
		return v
	}
	digest := sha256.Sum256([]byte(raw))
	return new(big.Int).SetBytes(digest[:])
}
