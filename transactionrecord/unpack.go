// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"unicode/utf8"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/util"
)

// turn a byte slice back into an operation record
//
// must cast result to correct type, e.g.
//
//	transfer, ok := result.(*transactionrecord.Transfer)
//
// or switch on the concrete type
func (record Packed) Unpack(testnet bool) (op Operation, n int, e error) {

	defer func() {
		if r := recover(); nil != r {
			e = fault.ErrNotTransactionPack
		}
	}()

	recordType, n := util.ClippedVarint64(record, 1, int(InvalidTag)-1)
	if 0 == n {
		return nil, 0, fault.ErrNotTransactionPack
	}

	switch TagType(recordType) {

	case TransferTag:
		from, fromLength, err := unpackAccountId(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += fromLength

		to, toLength, err := unpackAccountId(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += toLength

		amount, amountLength := util.FromVarint64(record[n:])
		if 0 == amountLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += amountLength

		memoLength, memoOffset := util.ClippedVarint64(record[n:], 0, maxMemoLength*utf8.UTFMax)
		if 0 == memoOffset {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += memoOffset
		memo := string(record[n : n+memoLength])
		n += memoLength
		if utf8.RuneCountInString(memo) > maxMemoLength {
			return nil, 0, fault.ErrMemoTooLong
		}

		return &Transfer{
			From:   from,
			To:     to,
			Amount: amount,
			Memo:   memo,
		}, n, nil

	case AccountUpdateTag:
		id, idLength, err := unpackAccountId(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += idLength

		newOwner, ownerLength, err := unpackOptionalAuthority(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += ownerLength

		newActive, activeLength, err := unpackOptionalAuthority(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += activeLength

		update := &AccountUpdate{
			Account:   id,
			NewOwner:  newOwner,
			NewActive: newActive,
		}

		if 0 == len(record[n:]) {
			return nil, 0, fault.ErrNotTransactionPack
		}
		hasMemoKey := 0 != record[n]
		n += 1
		if hasMemoKey {
			key, err := account.PublicKeyFromBytes(testnet, record[n:n+account.PublicKeyLength])
			if nil != err {
				return nil, 0, err
			}
			n += account.PublicKeyLength
			update.NewMemoKey = &key
		}
		return update, n, nil

	case CustomAuthorityCreateTag:
		id, idLength, err := unpackAccountId(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += idLength

		operationType, typeLength := util.FromVarint64(record[n:])
		if 0 == typeLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += typeLength

		auth, authLength, err := authority.UnpackAuthority(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += authLength

		if 0 == len(record[n:]) {
			return nil, 0, fault.ErrNotTransactionPack
		}
		enabled := 0 != record[n]
		n += 1

		validFrom, fromLength := util.FromVarint64(record[n:])
		if 0 == fromLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += fromLength

		validTo, toLength := util.FromVarint64(record[n:])
		if 0 == toLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += toLength

		restrictions, restrictionsLength, err := authority.UnpackRestrictions(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += restrictionsLength

		return &CustomAuthorityCreate{
			Account:       id,
			OperationType: operationType,
			Auth:          auth,
			Enabled:       enabled,
			ValidFrom:     int64(validFrom),
			ValidTo:       int64(validTo),
			Restrictions:  restrictions,
		}, n, nil

	case CustomAuthorityUpdateTag:
		id, idLength, err := unpackAccountId(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += idLength

		authorityId, authorityIdLength := util.FromVarint64(record[n:])
		if 0 == authorityIdLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += authorityIdLength

		update := &CustomAuthorityUpdate{
			Account:     id,
			AuthorityId: authorityId,
		}

		newAuth, authLength, err := unpackOptionalAuthority(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += authLength
		update.NewAuth = newAuth

		if 0 == len(record[n:]) {
			return nil, 0, fault.ErrNotTransactionPack
		}
		if 0 != record[n] {
			n += 1
			if 0 == len(record[n:]) {
				return nil, 0, fault.ErrNotTransactionPack
			}
			enabled := 0 != record[n]
			update.NewEnabled = &enabled
		}
		n += 1

		newValidFrom, fromLength, err := unpackOptionalInt64(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += fromLength
		update.NewValidFrom = newValidFrom

		newValidTo, toLength, err := unpackOptionalInt64(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += toLength
		update.NewValidTo = newValidTo

		if 0 == len(record[n:]) {
			return nil, 0, fault.ErrNotTransactionPack
		}
		hasRestrictions := 0 != record[n]
		n += 1
		if hasRestrictions {
			restrictions, restrictionsLength, err := authority.UnpackRestrictions(record[n:], testnet)
			if nil != err {
				return nil, 0, err
			}
			n += restrictionsLength
			update.NewRestrictions = restrictions
		}
		return update, n, nil

	case CustomAuthorityDeleteTag:
		id, idLength, err := unpackAccountId(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += idLength

		authorityId, authorityIdLength := util.FromVarint64(record[n:])
		if 0 == authorityIdLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += authorityIdLength

		return &CustomAuthorityDelete{
			Account:     id,
			AuthorityId: authorityId,
		}, n, nil

	default:
		return nil, 0, fault.ErrNotTransactionPack
	}
}

// UnpackTransaction - rebuild a full transaction from packed bytes
func UnpackTransaction(record Packed, testnet bool) (tx *Transaction, n int, e error) {

	defer func() {
		if r := recover(); nil != r {
			tx = nil
			e = fault.ErrNotTransactionPack
		}
	}()

	referenceBlockNumber, n := util.FromVarint64(record)
	if 0 == n {
		return nil, 0, fault.ErrNotTransactionPack
	}

	referenceBlockPrefix, prefixLength := util.FromVarint64(record[n:])
	if 0 == prefixLength {
		return nil, 0, fault.ErrNotTransactionPack
	}
	n += prefixLength

	expiration, expirationLength := util.FromVarint64(record[n:])
	if 0 == expirationLength {
		return nil, 0, fault.ErrNotTransactionPack
	}
	n += expirationLength

	operationCount, countLength := util.ClippedVarint64(record[n:], 1, MaximumOperations)
	if 0 == countLength {
		return nil, 0, fault.ErrNotTransactionPack
	}
	n += countLength

	operations := make([]Operation, 0, operationCount)
	for i := 0; i < operationCount; i += 1 {
		op, opLength, err := Packed(record[n:]).Unpack(testnet)
		if nil != err {
			return nil, 0, err
		}
		operations = append(operations, op)
		n += opLength
	}

	signatureCount, countLength := util.ClippedVarint64(record[n:], 0, MaximumSignatures)
	if 0 == countLength {
		return nil, 0, fault.ErrNotTransactionPack
	}
	n += countLength

	signatures := make([]account.Signature, 0, signatureCount)
	for i := 0; i < signatureCount; i += 1 {
		signatureLength, offset := util.ClippedVarint64(record[n:], 1, account.SignatureLength)
		if 0 == offset {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += offset
		signature := make(account.Signature, signatureLength)
		copy(signature, record[n:n+signatureLength])
		signatures = append(signatures, signature)
		n += signatureLength
	}

	return &Transaction{
		Operations:           operations,
		Expiration:           int64(expiration),
		ReferenceBlockNumber: uint32(referenceBlockNumber),
		ReferenceBlockPrefix: uint32(referenceBlockPrefix),
		Signatures:           signatures,
	}, n, nil
}

func unpackAccountId(buffer []byte) (account.AccountId, int, error) {
	idLength, offset := util.ClippedVarint64(buffer, 1, account.AccountIdMaximumLength)
	if 0 == offset {
		return "", 0, fault.ErrNotTransactionPack
	}
	if len(buffer) < offset+idLength {
		return "", 0, fault.ErrNotTransactionPack
	}
	id := account.AccountId(buffer[offset : offset+idLength])
	if err := id.IsValid(); nil != err {
		return "", 0, err
	}
	return id, offset + idLength, nil
}

func unpackOptionalAuthority(buffer []byte, testnet bool) (*authority.Authority, int, error) {
	if 0 == len(buffer) {
		return nil, 0, fault.ErrNotTransactionPack
	}
	if 0 == buffer[0] {
		return nil, 1, nil
	}
	auth, n, err := authority.UnpackAuthority(buffer[1:], testnet)
	if nil != err {
		return nil, 0, err
	}
	return &auth, n + 1, nil
}

func unpackOptionalInt64(buffer []byte) (*int64, int, error) {
	if 0 == len(buffer) {
		return nil, 0, fault.ErrNotTransactionPack
	}
	if 0 == buffer[0] {
		return nil, 1, nil
	}
	value, n := util.FromVarint64(buffer[1:])
	if 0 == n {
		return nil, 0, fault.ErrNotTransactionPack
	}
	v := int64(value)
	return &v, n + 1, nil
}
