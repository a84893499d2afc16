// Copyright 2025 MRJCrunch

package errors

import (
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err   error
		check func(error) bool
	}{
		{Input("bad field %q", "u"), IsInput},
		{NotFound("missing"), IsNotFound},
		{Revoked("index gone"), IsRevoked},
		{Crypto("negative delta"), IsCrypto},
	}
	for _, c := range cases {
		if !c.check(c.err) {
			t.Errorf("%v did not match its own code", c.err)
		}
		if IsRevoked(c.err) != HasCode(c.err, CodeRevoked) {
			t.Error("helper and HasCode disagree")
		}
	}
}

func TestWrapPreservesCode(t *testing.T) {
	cause := fmt.Errorf("low-level failure")
	err := Wrap(CodeCrypto, cause, "randomness source failed")

	if !IsCrypto(err) {
		t.Fatal("wrapped error lost its code")
	}
	if err.Unwrap() != cause {
		t.Fatal("wrapped error lost its cause")
	}
}

func TestWrappedThroughFmt(t *testing.T) {
	inner := NotFound("no claim")
	outer := fmt.Errorf("presenting proof: %w", inner)
	if !IsNotFound(outer) {
		t.Fatal("code must survive fmt.Errorf wrapping")
	}
}
