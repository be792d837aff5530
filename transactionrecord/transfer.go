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

// canonical field indexes for Transfer
//
// restriction compatibility surface - never renumber
const (
	TransferFieldFrom   = uint64(iota)
	TransferFieldTo     = uint64(iota)
	TransferFieldAmount = uint64(iota)
	TransferFieldMemo   = uint64(iota)

	transferFieldCount = uint64(iota)
)

// Transfer - move an amount from one account to another
//
// authorized by the sending account's active authority
type Transfer struct {
	From   account.AccountId `json:"from"`
	To     account.AccountId `json:"to"`
	Amount uint64            `json:"amount,string"`
	Memo   string            `json:"memo"`
}

// Tag - the operation type code
func (transfer *Transfer) Tag() TagType {
	return TransferTag
}

// AuthorizingAccount - the account whose authority this operation needs
func (transfer *Transfer) AuthorizingAccount() account.AccountId {
	return transfer.From
}

// RequiredLevel - the default authority level for a transfer
func (transfer *Transfer) RequiredLevel() Level {
	return ActiveLevel
}

// Pack - Varint64(tag) followed by fields in order as struct above
func (transfer *Transfer) Pack() (Packed, error) {
	if err := transfer.From.IsValid(); nil != err {
		return nil, err
	}
	if err := transfer.To.IsValid(); nil != err {
		return nil, err
	}
	if utf8.RuneCountInString(transfer.Memo) > maxMemoLength {
		return nil, fault.ErrMemoTooLong
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(TransferTag))
	message = appendString(message, string(transfer.From))
	message = appendString(message, string(transfer.To))
	message = appendUint64(message, transfer.Amount)
	message = appendString(message, transfer.Memo)
	return message, nil
}

// Field - the canonical field list seen by restrictions
func (transfer *Transfer) Field(index uint64) (authority.Value, error) {
	switch index {
	case TransferFieldFrom:
		return authority.AccountVal(transfer.From), nil
	case TransferFieldTo:
		return authority.AccountVal(transfer.To), nil
	case TransferFieldAmount:
		return authority.IntVal(int64(transfer.Amount)), nil
	case TransferFieldMemo:
		return authority.StringVal(transfer.Memo), nil
	default:
		return authority.Value{}, fault.ErrFieldIndexOutOfRange
	}
}
