// Copyright 2025 MRJCrunch

package cl

// Bit-length constants of the protocol. These are wire-level contract
// values; changing any of them breaks interoperability with other
// implementations.
const (
	LargePrime        = 1024 // bit length of each safe prime
	LargeMasterSecret = 256
	LargeVPrime       = 2724
	LargeVPrimePrime  = 2724
	LargeEStart       = 596
	LargeEEnd         = 119
	LargeETilde       = 456
	LargeVTilde       = 3060
	LargeMTilde       = 593
	LargeM2Tilde      = 593
	LargeNonce        = 80

	// Blind lengths of the >= predicate proof.
	LargeUTilde     = 592
	LargeRTilde     = 672
	LargeAlphaTilde = 2787

	// Bound of the issuer-chosen context attribute m2.
	LargeContextAttr = 256
)
