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

// canonical field indexes for the custom authority operations
const (
	CustomAuthorityFieldAccount = uint64(iota)
	CustomAuthorityFieldSubject = uint64(iota) // operation type on create, authority id otherwise

	customAuthorityFieldCount = uint64(iota)
)

// CustomAuthorityCreate - delegate one operation type under restrictions
//
// only the owning account can create delegations on itself, with its
// ordinary active authority
type CustomAuthorityCreate struct {
	Account       account.AccountId       `json:"account"`
	OperationType uint64                  `json:"operationType"`
	Auth          authority.Authority     `json:"auth"`
	Enabled       bool                    `json:"enabled"`
	ValidFrom     int64                   `json:"validFrom"`
	ValidTo       int64                   `json:"validTo"`
	Restrictions  []authority.Restriction `json:"restrictions,omitempty"`
}

// Tag - the operation type code
func (create *CustomAuthorityCreate) Tag() TagType {
	return CustomAuthorityCreateTag
}

// AuthorizingAccount - the account whose authority this operation needs
func (create *CustomAuthorityCreate) AuthorizingAccount() account.AccountId {
	return create.Account
}

// RequiredLevel - delegations are managed with the active authority
func (create *CustomAuthorityCreate) RequiredLevel() Level {
	return ActiveLevel
}

// Pack - Varint64(tag) followed by fields in order as struct above
func (create *CustomAuthorityCreate) Pack() (Packed, error) {
	if err := create.Account.IsValid(); nil != err {
		return nil, err
	}
	if create.OperationType <= uint64(NullTag) || create.OperationType >= uint64(InvalidTag) {
		return nil, fault.ErrInvalidStructPack
	}
	if create.ValidFrom > create.ValidTo {
		return nil, fault.ErrInvalidTimestamp
	}
	if err := create.Auth.IsValid(); nil != err {
		return nil, err
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(CustomAuthorityCreateTag))
	message = appendString(message, string(create.Account))
	message = appendUint64(message, create.OperationType)
	message = append(message, create.Auth.Pack()...)
	if create.Enabled {
		message = append(message, 0x01)
	} else {
		message = append(message, 0x00)
	}
	message = appendUint64(message, uint64(create.ValidFrom))
	message = appendUint64(message, uint64(create.ValidTo))
	message = append(message, authority.PackRestrictions(create.Restrictions)...)
	return message, nil
}

// Field - the canonical field list seen by restrictions
func (create *CustomAuthorityCreate) Field(index uint64) (authority.Value, error) {
	switch index {
	case CustomAuthorityFieldAccount:
		return authority.AccountVal(create.Account), nil
	case CustomAuthorityFieldSubject:
		return authority.IntVal(int64(create.OperationType)), nil
	default:
		return authority.Value{}, fault.ErrFieldIndexOutOfRange
	}
}

// CustomAuthorityUpdate - modify an existing delegation
//
// nil members leave the stored record unchanged
type CustomAuthorityUpdate struct {
	Account         account.AccountId       `json:"account"`
	AuthorityId     uint64                  `json:"authorityId"`
	NewAuth         *authority.Authority    `json:"newAuth,omitempty"`
	NewEnabled      *bool                   `json:"newEnabled,omitempty"`
	NewValidFrom    *int64                  `json:"newValidFrom,omitempty"`
	NewValidTo      *int64                  `json:"newValidTo,omitempty"`
	NewRestrictions []authority.Restriction `json:"newRestrictions,omitempty"`
}

// Tag - the operation type code
func (update *CustomAuthorityUpdate) Tag() TagType {
	return CustomAuthorityUpdateTag
}

// AuthorizingAccount - the account whose authority this operation needs
func (update *CustomAuthorityUpdate) AuthorizingAccount() account.AccountId {
	return update.Account
}

// RequiredLevel - delegations are managed with the active authority
func (update *CustomAuthorityUpdate) RequiredLevel() Level {
	return ActiveLevel
}

// Pack - Varint64(tag) followed by fields in order as struct above
func (update *CustomAuthorityUpdate) Pack() (Packed, error) {
	if err := update.Account.IsValid(); nil != err {
		return nil, err
	}
	if nil != update.NewAuth {
		if err := update.NewAuth.IsValid(); nil != err {
			return nil, err
		}
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(CustomAuthorityUpdateTag))
	message = appendString(message, string(update.Account))
	message = appendUint64(message, update.AuthorityId)
	if nil == update.NewAuth {
		message = append(message, 0x00)
	} else {
		message = append(message, 0x01)
		message = append(message, update.NewAuth.Pack()...)
	}
	if nil == update.NewEnabled {
		message = append(message, 0x00)
	} else if *update.NewEnabled {
		message = append(message, 0x01, 0x01)
	} else {
		message = append(message, 0x01, 0x00)
	}
	message = appendOptionalInt64(message, update.NewValidFrom)
	message = appendOptionalInt64(message, update.NewValidTo)
	if nil == update.NewRestrictions {
		message = append(message, 0x00)
	} else {
		message = append(message, 0x01)
		message = append(message, authority.PackRestrictions(update.NewRestrictions)...)
	}
	return message, nil
}

// Field - the canonical field list seen by restrictions
func (update *CustomAuthorityUpdate) Field(index uint64) (authority.Value, error) {
	switch index {
	case CustomAuthorityFieldAccount:
		return authority.AccountVal(update.Account), nil
	case CustomAuthorityFieldSubject:
		return authority.IntVal(int64(update.AuthorityId)), nil
	default:
		return authority.Value{}, fault.ErrFieldIndexOutOfRange
	}
}

// CustomAuthorityDelete - remove a delegation entirely
type CustomAuthorityDelete struct {
	Account     account.AccountId `json:"account"`
	AuthorityId uint64            `json:"authorityId"`
}

// Tag - the operation type code
func (del *CustomAuthorityDelete) Tag() TagType {
	return CustomAuthorityDeleteTag
}

// AuthorizingAccount - the account whose authority this operation needs
func (del *CustomAuthorityDelete) AuthorizingAccount() account.AccountId {
	return del.Account
}

// RequiredLevel - delegations are managed with the active authority
func (del *CustomAuthorityDelete) RequiredLevel() Level {
	return ActiveLevel
}

// Pack - Varint64(tag) followed by fields in order as struct above
func (del *CustomAuthorityDelete) Pack() (Packed, error) {
	if err := del.Account.IsValid(); nil != err {
		return nil, err
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(CustomAuthorityDeleteTag))
	message = appendString(message, string(del.Account))
	message = appendUint64(message, del.AuthorityId)
	return message, nil
}

// Field - the canonical field list seen by restrictions
func (del *CustomAuthorityDelete) Field(index uint64) (authority.Value, error) {
	switch index {
	case CustomAuthorityFieldAccount:
		return authority.AccountVal(del.Account), nil
	case CustomAuthorityFieldSubject:
		return authority.IntVal(int64(del.AuthorityId)), nil
	default:
		return authority.Value{}, fault.ErrFieldIndexOutOfRange
	}
}
