// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/util"
)

// enumeration of supported key algorithms
const (
	// list of valid algorithms
	Nothing   = iota // zero keytype **Just for Testing**
	SECP256K1 = iota
	// end of list (one greater than last item)
	algorithmLimit = iota
)

// miscellaneous constants
const (
	checksumLength = 4

	// PublicKeyLength - a compressed secp256k1 curve point
	PublicKeyLength = 33

	// bits in key code starting from LSB
	publicKeyCode = 0x01
	testKeyCode   = 0x02
	spare1KeyCode = 0x04
	spare2KeyCode = 0x08

	algorithmShift = 4 // shift 4 bits to get algorithm
)

// PublicKey - a compressed secp256k1 public key and its network flag
//
// the type is comparable so recovered signer sets and authority
// lookups can use it directly as a map key
type PublicKey struct {
	Test bool
	Key  [PublicKeyLength]byte
}

// PublicKeyFromBase58 - convert a Base58 encoded string to a public key
func PublicKeyFromBase58(publicKeyBase58Encoded string) (PublicKey, error) {
	// decode the key string
	keyDecoded := util.FromBase58(publicKeyBase58Encoded)
	if 0 == len(keyDecoded) {
		return PublicKey{}, fault.ErrCannotDecodeKey
	}

	// parse the key variant
	keyVariant, keyVariantLength := util.FromVarint64(keyDecoded)

	// check key type
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return PublicKey{}, fault.ErrNotPublicKey
	}

	// compute algorithm
	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm != SECP256K1 {
		return PublicKey{}, fault.ErrInvalidKeyType
	}

	// network selection
	isTest := 0 != keyVariant&testKeyCode

	// compute key length
	keyLength := len(keyDecoded) - keyVariantLength - checksumLength
	if PublicKeyLength != keyLength {
		return PublicKey{}, fault.ErrInvalidKeyLength
	}

	// checksum
	checksumStart := len(keyDecoded) - checksumLength
	checksum := sha3.Sum256(keyDecoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], keyDecoded[checksumStart:]) {
		return PublicKey{}, fault.ErrChecksumMismatch
	}

	return PublicKeyFromBytes(isTest, keyDecoded[keyVariantLength:checksumStart])
}

// PublicKeyFromBytes - convert a compressed curve point to a public key
//
// the point is checked to actually lie on the secp256k1 curve
func PublicKeyFromBytes(testnet bool, buffer []byte) (PublicKey, error) {
	if PublicKeyLength != len(buffer) {
		return PublicKey{}, fault.ErrInvalidKeyLength
	}
	_, err := secp256k1.ParsePubKey(buffer)
	if nil != err {
		return PublicKey{}, fault.ErrNotPublicKey
	}

	publicKey := PublicKey{
		Test: testnet,
	}
	copy(publicKey.Key[:], buffer)
	return publicKey, nil
}

// IsZero - detect an unset key, used for optional memo key fields
func (publicKey PublicKey) IsZero() bool {
	return publicKey.Key == [PublicKeyLength]byte{}
}

// IsTesting - return whether the public key is in test mode or not
func (publicKey PublicKey) IsTesting() bool {
	return publicKey.Test
}

// PublicKeyBytes - fetch the raw compressed curve point
func (publicKey PublicKey) PublicKeyBytes() []byte {
	return publicKey.Key[:]
}

// Bytes - byte slice for encoded key: key variant followed by the point
//
// also the canonical form used by the directory key reference index
func (publicKey PublicKey) Bytes() []byte {
	keyVariant := byte(SECP256K1<<algorithmShift) | publicKeyCode
	if publicKey.Test {
		keyVariant |= testKeyCode
	}
	return append([]byte{keyVariant}, publicKey.Key[:]...)
}

// String - base58 encoding of encoded key
func (publicKey PublicKey) String() string {
	buffer := publicKey.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return util.ToBase58(buffer)
}

// GoString - key variant and point, for debugging
func (publicKey PublicKey) GoString() string {
	return "<public-key:" + publicKey.String() + ">"
}

// MarshalText - convert a public key to its Base58 JSON form
func (publicKey PublicKey) MarshalText() ([]byte, error) {
	return []byte(publicKey.String()), nil
}

// UnmarshalText - convert a Base58 JSON form back to a public key
func (publicKey *PublicKey) UnmarshalText(s []byte) error {
	k, err := PublicKeyFromBase58(string(s))
	if nil != err {
		return err
	}
	*publicKey = k
	return nil
}
