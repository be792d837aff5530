// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/bitmark-inc/ledgerauth/fault"
)

// SignatureLength - recovery id byte followed by the r and s scalars
const SignatureLength = 65

// the compact recovery header range produced by SignCompact
const (
	compactHeaderFirst = 27
	compactHeaderLast  = 34
)

// Signature - a recoverable signature over a transaction digest
type Signature []byte

// Recover - derive the signing public key from the signature and digest
//
// the key is recovered from the signature alone; a signature over a
// different digest still recovers to some key, just not the expected
// one, so the caller must always re-derive the digest from the
// transaction being judged
func (signature Signature) Recover(digest []byte, testnet bool) (PublicKey, error) {
	if SignatureLength != len(signature) {
		return PublicKey{}, fault.ErrInvalidSignatureEncoding
	}
	header := signature[0]
	if header < compactHeaderFirst || header > compactHeaderLast {
		return PublicKey{}, fault.ErrInvalidSignatureEncoding
	}
	publicKey, _, err := ecdsa.RecoverCompact(signature, digest)
	if nil != err {
		return PublicKey{}, fault.ErrKeyRecoveryFailure
	}

	recovered := PublicKey{
		Test: testnet,
	}
	copy(recovered.Key[:], publicKey.SerializeCompressed())
	return recovered, nil
}

// String - convert a binary signature to hex string for use by the fmt package (for %s)
func (signature Signature) String() string {
	return hex.EncodeToString(signature)
}

// GoString - convert a binary signature to hex string for use by the fmt package (for %#v)
func (signature Signature) GoString() string {
	return "<signature:" + hex.EncodeToString(signature) + ">"
}

// MarshalText - convert signature to text
func (signature Signature) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(signature))
	b := make([]byte, size)
	hex.Encode(b, signature)
	return b, nil
}

// UnmarshalText - convert text into a signature
func (signature *Signature) UnmarshalText(s []byte) error {
	sig := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(sig, s)
	if nil != err {
		return err
	}
	*signature = sig[:byteCount]
	return nil
}
