// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/util"
)

// append a single field to a buffer
//
// the field is prefixed by its length
func appendString(buffer []byte, s string) []byte {
	stringLength := util.ToVarint64(uint64(len(s)))
	buffer = append(buffer, stringLength...)
	return append(buffer, s...)
}

// append a Varint64 to buffer
func appendUint64(buffer []byte, value uint64) []byte {
	valueBytes := util.ToVarint64(value)
	buffer = append(buffer, valueBytes...)
	return buffer
}

// append an optional authority preceded by a presence byte
func appendOptionalAuthority(buffer []byte, auth *authority.Authority) []byte {
	if nil == auth {
		return append(buffer, 0x00)
	}
	buffer = append(buffer, 0x01)
	return append(buffer, auth.Pack()...)
}

// append an optional timestamp preceded by a presence byte
func appendOptionalInt64(buffer []byte, value *int64) []byte {
	if nil == value {
		return append(buffer, 0x00)
	}
	buffer = append(buffer, 0x01)
	return appendUint64(buffer, uint64(*value))
}

// PackPayload - canonical bytes of everything a signature covers
//
// reference block binding and expiration first, then the operation
// count and every operation in order; signatures are excluded since
// they are computed over these bytes
func (tx *Transaction) PackPayload() (Packed, error) {
	if 0 == len(tx.Operations) {
		return nil, fault.ErrNoOperations
	}
	if len(tx.Operations) > MaximumOperations {
		return nil, fault.ErrInvalidStructPack
	}

	message := util.ToVarint64(uint64(tx.ReferenceBlockNumber))
	message = appendUint64(message, uint64(tx.ReferenceBlockPrefix))
	message = appendUint64(message, uint64(tx.Expiration))
	message = appendUint64(message, uint64(len(tx.Operations)))
	for _, op := range tx.Operations {
		packed, err := op.Pack()
		if nil != err {
			return nil, err
		}
		message = append(message, packed...)
	}
	return message, nil
}

// Pack - the payload followed by the attached signatures
func (tx *Transaction) Pack() (Packed, error) {
	if len(tx.Signatures) > MaximumSignatures {
		return nil, fault.ErrTooManySignatures
	}

	message, err := tx.PackPayload()
	if nil != err {
		return nil, err
	}
	message = appendUint64(message, uint64(len(tx.Signatures)))
	for _, signature := range tx.Signatures {
		message = appendUint64(message, uint64(len(signature)))
		message = append(message, signature...)
	}
	return message, nil
}
