// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package directory

import (
	"time"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/util"
)

// AccountRecord - the stored policy state of one account
type AccountRecord struct {
	Id      account.AccountId   `json:"id"`
	Owner   authority.Authority `json:"owner"`
	Active  authority.Authority `json:"active"`
	MemoKey account.PublicKey   `json:"memoKey"`
}

// Reader - the lookup surface that policy evaluation needs
//
// Account and CustomAuthorities return fault.ErrUnknownAccountReference
// for an account that was never registered; CustomAuthorities returns
// only delegations that are effective at the supplied instant
type Reader interface {
	Account(id account.AccountId) (*AccountRecord, error)
	CustomAuthorities(id account.AccountId, operationType uint64, at time.Time) ([]authority.CustomAuthority, error)
	KeyReferences(publicKey account.PublicKey) ([]account.AccountId, error)
}

// Directory - full read/write access to the account registry
//
// custom authority identifiers are assigned by the registry on create
// and are unique across all accounts
type Directory interface {
	Reader

	SetAccount(record AccountRecord) error
	CustomAuthority(id account.AccountId, authorityId uint64) (*authority.CustomAuthority, error)
	CreateCustomAuthority(auth authority.CustomAuthority) (uint64, error)
	UpdateCustomAuthority(auth authority.CustomAuthority) error
	DeleteCustomAuthority(id account.AccountId, authorityId uint64) error
	Close() error
}

// Keys - the public keys an account record refers to
//
// owner and active direct key members plus the memo key, deduplicated
func (record *AccountRecord) Keys() []account.PublicKey {
	seen := authority.NewKeySet()
	keys := make([]account.PublicKey, 0, 1+len(record.Owner.KeyAuths)+len(record.Active.KeyAuths))
	for _, auths := range [][]authority.KeyWeight{record.Owner.KeyAuths, record.Active.KeyAuths} {
		for _, item := range auths {
			if !seen.Add(item.Key) {
				keys = append(keys, item.Key)
			}
		}
	}
	if !record.MemoKey.IsZero() && !seen.Add(record.MemoKey) {
		keys = append(keys, record.MemoKey)
	}
	return keys
}

// IsValid - check the record is storable
func (record *AccountRecord) IsValid() error {
	if err := record.Id.IsValid(); nil != err {
		return err
	}
	if err := record.Owner.IsValid(); nil != err {
		return err
	}
	return record.Active.IsValid()
}

// Pack - canonical bytes of a stored account record
func (record *AccountRecord) Pack() []byte {
	buffer := util.ToVarint64(uint64(len(record.Id)))
	buffer = append(buffer, record.Id...)
	buffer = append(buffer, record.Owner.Pack()...)
	buffer = append(buffer, record.Active.Pack()...)
	if record.MemoKey.IsZero() {
		buffer = append(buffer, 0x00)
	} else {
		buffer = append(buffer, 0x01)
		buffer = append(buffer, record.MemoKey.Key[:]...)
	}
	return buffer
}

// UnpackAccountRecord - rebuild a stored account record
func UnpackAccountRecord(buffer []byte, testnet bool) (*AccountRecord, error) {
	idLength, n := util.ClippedVarint64(buffer, 1, account.AccountIdMaximumLength)
	if 0 == n || len(buffer) < n+idLength {
		return nil, fault.ErrInvalidStructPack
	}
	id := account.AccountId(buffer[n : n+idLength])
	if err := id.IsValid(); nil != err {
		return nil, err
	}
	n += idLength

	owner, ownerLength, err := authority.UnpackAuthority(buffer[n:], testnet)
	if nil != err {
		return nil, err
	}
	n += ownerLength

	active, activeLength, err := authority.UnpackAuthority(buffer[n:], testnet)
	if nil != err {
		return nil, err
	}
	n += activeLength

	record := &AccountRecord{
		Id:     id,
		Owner:  owner,
		Active: active,
	}

	if 0 == len(buffer[n:]) {
		return nil, fault.ErrInvalidStructPack
	}
	hasMemoKey := 0 != buffer[n]
	n += 1
	if hasMemoKey {
		if len(buffer[n:]) < account.PublicKeyLength {
			return nil, fault.ErrInvalidStructPack
		}
		key, err := account.PublicKeyFromBytes(testnet, buffer[n:n+account.PublicKeyLength])
		if nil != err {
			return nil, err
		}
		record.MemoKey = key
	}
	return record, nil
}
