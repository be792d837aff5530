// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/util"
)

// PrivateKeyLength - a raw secp256k1 scalar
const PrivateKeyLength = 32

// PrivateKey - a secp256k1 signing key with its network flag
type PrivateKey struct {
	Test bool
	key  *secp256k1.PrivateKey
}

// NewPrivateKey - generate a fresh random private key
func NewPrivateKey(testnet bool) (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if nil != err {
		return nil, err
	}
	return &PrivateKey{
		Test: testnet,
		key:  k,
	}, nil
}

// PrivateKeyFromBytes - convert a raw 32 byte scalar to a private key
func PrivateKeyFromBytes(testnet bool, buffer []byte) (*PrivateKey, error) {
	if PrivateKeyLength != len(buffer) {
		return nil, fault.ErrInvalidKeyLength
	}
	return &PrivateKey{
		Test: testnet,
		key:  secp256k1.PrivKeyFromBytes(buffer),
	}, nil
}

// PrivateKeyFromBase58 - convert a Base58 encoded string to a private key
func PrivateKeyFromBase58(privateKeyBase58Encoded string) (*PrivateKey, error) {
	// decode the key string
	keyDecoded := util.FromBase58(privateKeyBase58Encoded)
	if 0 == len(keyDecoded) {
		return nil, fault.ErrCannotDecodeKey
	}

	// parse the key variant
	keyVariant, keyVariantLength := util.FromVarint64(keyDecoded)

	// a private key must not carry the public key code
	if 0 == keyVariantLength || keyVariant&publicKeyCode == publicKeyCode {
		return nil, fault.ErrNotPrivateKey
	}

	// compute algorithm
	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm != SECP256K1 {
		return nil, fault.ErrInvalidKeyType
	}

	// network selection
	isTest := 0 != keyVariant&testKeyCode

	// compute key length
	keyLength := len(keyDecoded) - keyVariantLength - checksumLength
	if PrivateKeyLength != keyLength {
		return nil, fault.ErrInvalidKeyLength
	}

	// checksum
	checksumStart := len(keyDecoded) - checksumLength
	checksum := sha3.Sum256(keyDecoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], keyDecoded[checksumStart:]) {
		return nil, fault.ErrChecksumMismatch
	}

	return PrivateKeyFromBytes(isTest, keyDecoded[keyVariantLength:checksumStart])
}

// PublicKey - derive the corresponding public key
func (privateKey *PrivateKey) PublicKey() PublicKey {
	publicKey := PublicKey{
		Test: privateKey.Test,
	}
	copy(publicKey.Key[:], privateKey.key.PubKey().SerializeCompressed())
	return publicKey
}

// Sign - produce a recoverable signature over a transaction digest
//
// the compact form allows the verifier to recover the public key from
// the signature and digest alone
func (privateKey *PrivateKey) Sign(digest []byte) (Signature, error) {
	if 32 != len(digest) {
		return nil, fault.ErrInvalidDigestLength
	}
	return Signature(ecdsa.SignCompact(privateKey.key, digest, true)), nil
}

// IsTesting - return whether the private key is in test mode or not
func (privateKey *PrivateKey) IsTesting() bool {
	return privateKey.Test
}

// PrivateKeyBytes - fetch the raw scalar
func (privateKey *PrivateKey) PrivateKeyBytes() []byte {
	return privateKey.key.Serialize()
}

// Bytes - byte slice for encoded key: key variant followed by the scalar
func (privateKey *PrivateKey) Bytes() []byte {
	keyVariant := byte(SECP256K1 << algorithmShift)
	if privateKey.Test {
		keyVariant |= testKeyCode
	}
	return append([]byte{keyVariant}, privateKey.key.Serialize()...)
}

// String - base58 encoding of encoded key
func (privateKey *PrivateKey) String() string {
	buffer := privateKey.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return util.ToBase58(buffer)
}

// MarshalText - convert a private key to its Base58 JSON form
func (privateKey *PrivateKey) MarshalText() ([]byte, error) {
	return []byte(privateKey.String()), nil
}

// UnmarshalText - convert a Base58 JSON form back to a private key
func (privateKey *PrivateKey) UnmarshalText(s []byte) error {
	k, err := PrivateKeyFromBase58(string(s))
	if nil != err {
		return err
	}
	*privateKey = *k
	return nil
}
