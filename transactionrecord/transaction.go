// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/chain"
	"github.com/bitmark-inc/ledgerauth/fault"
)

// TagType - type code for operations
type TagType uint64

// enumerate the possible operation types
// this is encoded a Varint64 at start of "Packed"
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	// valid operation types
	TransferTag              = TagType(iota) // move an amount between accounts
	AccountUpdateTag         = TagType(iota) // replace an account's authorities or memo key
	CustomAuthorityCreateTag = TagType(iota) // delegate one operation type
	CustomAuthorityUpdateTag = TagType(iota) // modify an existing delegation
	CustomAuthorityDeleteTag = TagType(iota) // remove a delegation

	// this item must be last
	InvalidTag = TagType(iota)
)

// Packed - packed records are just a byte slice
type Packed []byte

// Level - which of an account's authorities an operation requires
type Level int

// authority levels
const (
	ActiveLevel = Level(iota)
	OwnerLevel  = Level(iota)
)

// Operation - generic operation interface
//
// Field exposes the operation's canonical field list to the
// restriction matcher; indexes are part of the wire compatibility
// surface and must never be renumbered
type Operation interface {
	Tag() TagType
	AuthorizingAccount() account.AccountId
	RequiredLevel() Level
	Pack() (Packed, error)
	Field(index uint64) (authority.Value, error)
}

// byte sizes and limits for various fields
const (
	maxMemoLength = 1024

	// MaximumSignatures - bound on recovery work for one transaction
	//
	// superfluous signatures are harmless and never rejected below
	// this cap
	MaximumSignatures = 16

	// MaximumOperations - bound on operations in one transaction
	MaximumOperations = 256
)

// Transaction - an ordered sequence of operations with its replay
// binding and attached signatures
//
// the signature set is judged by recovered public key: two signatures
// recovering to the same key count once
type Transaction struct {
	Operations           []Operation         `json:"operations"`
	Expiration           int64               `json:"expiration"` // unix seconds
	ReferenceBlockNumber uint32              `json:"referenceBlockNumber"`
	ReferenceBlockPrefix uint32              `json:"referenceBlockPrefix"`
	Signatures           []account.Signature `json:"signatures"`
}

// Digest - the unique signing payload for this transaction on a chain
//
// chain identifier first, then the canonical packing of every field
// except the signatures; any mutation of operations, expiration or the
// reference block binding yields a different digest and invalidates
// all previously recovered signer conclusions
func (tx *Transaction) Digest(chainId chain.Id) (Digest, error) {
	payload, err := tx.PackPayload()
	if nil != err {
		return Digest{}, err
	}
	record := make([]byte, 0, chain.IdLength+len(payload))
	record = append(record, chainId[:]...)
	record = append(record, payload...)
	return NewDigest(record), nil
}

// RecoverSigners - recover the candidate public key behind every signature
//
// the digest is re-derived from the transaction being judged on every
// call; a structurally broken or unrecoverable signature is skipped
// and the first such error is reported alongside the keys that did
// recover, so policy evaluation can continue while the caller still
// learns that a signature needs fixing
func (tx *Transaction) RecoverSigners(chainId chain.Id, testnet bool) (authority.KeySet, error) {
	if len(tx.Signatures) > MaximumSignatures {
		return nil, fault.ErrTooManySignatures
	}

	digest, err := tx.Digest(chainId)
	if nil != err {
		return nil, err
	}

	signers := authority.NewKeySet()
	var firstError error
	for _, signature := range tx.Signatures {
		publicKey, err := signature.Recover(digest[:], testnet)
		if nil != err {
			if nil == firstError {
				firstError = err
			}
			continue
		}
		signers.Add(publicKey)
	}
	return signers, firstError
}

// AddSignature - attach one signature, deduplicated by recovered key
//
// re-signing with an already represented key is a no-op so the stored
// signature count never grows from duplicates
func (tx *Transaction) AddSignature(chainId chain.Id, testnet bool, signature account.Signature) error {
	digest, err := tx.Digest(chainId)
	if nil != err {
		return err
	}
	newSigner, err := signature.Recover(digest[:], testnet)
	if nil != err {
		return err
	}

	for _, existing := range tx.Signatures {
		signer, err := existing.Recover(digest[:], testnet)
		if nil == err && signer == newSigner {
			return nil
		}
	}

	if len(tx.Signatures) >= MaximumSignatures {
		return fault.ErrTooManySignatures
	}
	tx.Signatures = append(tx.Signatures, signature)
	return nil
}
