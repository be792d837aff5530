// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/util"
)

// canonical field indexes for AccountUpdate
const (
	AccountUpdateFieldAccount = uint64(iota)

	accountUpdateFieldCount = uint64(iota)
)

// AccountUpdate - replace an account's authorities or memo key
//
// changing the policy that guards an account is the most sensitive
// operation there is, so it requires the owner authority
type AccountUpdate struct {
	Account    account.AccountId    `json:"account"`
	NewOwner   *authority.Authority `json:"newOwner,omitempty"`
	NewActive  *authority.Authority `json:"newActive,omitempty"`
	NewMemoKey *account.PublicKey   `json:"newMemoKey,omitempty"`
}

// Tag - the operation type code
func (update *AccountUpdate) Tag() TagType {
	return AccountUpdateTag
}

// AuthorizingAccount - the account whose authority this operation needs
func (update *AccountUpdate) AuthorizingAccount() account.AccountId {
	return update.Account
}

// RequiredLevel - authority changes need the owner authority
func (update *AccountUpdate) RequiredLevel() Level {
	return OwnerLevel
}

// Pack - Varint64(tag) followed by fields in order as struct above
//
// optional members are preceded by a presence byte
func (update *AccountUpdate) Pack() (Packed, error) {
	if err := update.Account.IsValid(); nil != err {
		return nil, err
	}
	if nil == update.NewOwner && nil == update.NewActive && nil == update.NewMemoKey {
		return nil, fault.ErrInvalidStructPack
	}
	if nil != update.NewOwner {
		if err := update.NewOwner.IsValid(); nil != err {
			return nil, err
		}
	}
	if nil != update.NewActive {
		if err := update.NewActive.IsValid(); nil != err {
			return nil, err
		}
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(AccountUpdateTag))
	message = appendString(message, string(update.Account))
	message = appendOptionalAuthority(message, update.NewOwner)
	message = appendOptionalAuthority(message, update.NewActive)
	if nil == update.NewMemoKey {
		message = append(message, 0x00)
	} else {
		message = append(message, 0x01)
		message = append(message, update.NewMemoKey.Key[:]...)
	}
	return message, nil
}

// Field - the canonical field list seen by restrictions
func (update *AccountUpdate) Field(index uint64) (authority.Value, error) {
	switch index {
	case AccountUpdateFieldAccount:
		return authority.AccountVal(update.Account), nil
	default:
		return authority.Value{}, fault.ErrFieldIndexOutOfRange
	}
}
