// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package directory

import (
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
)

// Memory - a map backed registry
//
// used by the wallet when it mirrors a node's account state, and by
// tests that need a registry without a database directory
type Memory struct {
	sync.RWMutex
	accounts map[account.AccountId]AccountRecord
	custom   map[account.AccountId][]authority.CustomAuthority
	nextId   uint64
}

// NewMemory - create an empty in-memory registry
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[account.AccountId]AccountRecord),
		custom:   make(map[account.AccountId][]authority.CustomAuthority),
		nextId:   1,
	}
}

// Account - fetch one account record
func (m *Memory) Account(id account.AccountId) (*AccountRecord, error) {
	m.RLock()
	defer m.RUnlock()

	record, ok := m.accounts[id]
	if !ok {
		return nil, fault.ErrUnknownAccountReference
	}
	return &record, nil
}

// SetAccount - create or replace one account record
func (m *Memory) SetAccount(record AccountRecord) error {
	if err := record.IsValid(); nil != err {
		return err
	}

	m.Lock()
	defer m.Unlock()

	m.accounts[record.Id] = record
	return nil
}

// CustomAuthorities - the delegations effective for one operation type
func (m *Memory) CustomAuthorities(id account.AccountId, operationType uint64, at time.Time) ([]authority.CustomAuthority, error) {
	m.RLock()
	defer m.RUnlock()

	if _, ok := m.accounts[id]; !ok {
		return nil, fault.ErrUnknownAccountReference
	}

	matched := []authority.CustomAuthority(nil)
	for _, item := range m.custom[id] {
		if item.OperationType == operationType && item.EffectiveAt(at) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// CustomAuthority - fetch one delegation regardless of effectiveness
func (m *Memory) CustomAuthority(id account.AccountId, authorityId uint64) (*authority.CustomAuthority, error) {
	m.RLock()
	defer m.RUnlock()

	for _, item := range m.custom[id] {
		if item.Id == authorityId {
			return &item, nil
		}
	}
	return nil, fault.ErrCustomAuthorityNotFound
}

// CreateCustomAuthority - store a delegation, assigning its identifier
func (m *Memory) CreateCustomAuthority(auth authority.CustomAuthority) (uint64, error) {
	if err := auth.IsValid(); nil != err {
		return 0, err
	}

	m.Lock()
	defer m.Unlock()

	if _, ok := m.accounts[auth.Account]; !ok {
		return 0, fault.ErrUnknownAccountReference
	}

	auth.Id = m.nextId
	m.nextId += 1
	m.custom[auth.Account] = append(m.custom[auth.Account], auth)
	return auth.Id, nil
}

// UpdateCustomAuthority - replace a stored delegation
func (m *Memory) UpdateCustomAuthority(auth authority.CustomAuthority) error {
	if err := auth.IsValid(); nil != err {
		return err
	}

	m.Lock()
	defer m.Unlock()

	list := m.custom[auth.Account]
	for i, item := range list {
		if item.Id == auth.Id {
			list[i] = auth
			return nil
		}
	}
	return fault.ErrCustomAuthorityNotFound
}

// DeleteCustomAuthority - remove a stored delegation
func (m *Memory) DeleteCustomAuthority(id account.AccountId, authorityId uint64) error {
	m.Lock()
	defer m.Unlock()

	list := m.custom[id]
	for i, item := range list {
		if item.Id == authorityId {
			m.custom[id] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fault.ErrCustomAuthorityNotFound
}

// KeyReferences - accounts whose records refer to a public key
//
// results are sorted so repeated calls give a stable order
func (m *Memory) KeyReferences(publicKey account.PublicKey) ([]account.AccountId, error) {
	m.RLock()
	defer m.RUnlock()

	matched := []account.AccountId(nil)
	for id, record := range m.accounts {
		for _, key := range record.Keys() {
			if key == publicKey {
				matched = append(matched, id)
				break
			}
		}
	}
	sort.Slice(matched, func(i int, j int) bool {
		return matched[i] < matched[j]
	})
	return matched, nil
}

// Close - nothing to release
func (m *Memory) Close() error {
	return nil
}
