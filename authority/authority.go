// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/fault"
)

// MaximumRecursionDepth - how many account-authority indirections the
// evaluator will follow before a branch is treated as unsatisfied
//
// this constant is compatibility relevant: every node must use the
// same value or nodes would disagree on whether deeply delegated
// policies are met
const MaximumRecursionDepth = 2

// KeyWeight - one public key member of an authority
type KeyWeight struct {
	Key    account.PublicKey `json:"key"`
	Weight uint16            `json:"weight"`
}

// AccountWeight - one delegated account member of an authority
type AccountWeight struct {
	Account account.AccountId `json:"account"`
	Weight  uint16            `json:"weight"`
}

// Authority - a weighted threshold policy over keys and accounts
//
// satisfied when the summed weights of matched members reach the
// threshold; an authority with no members can never be satisfied
type Authority struct {
	WeightThreshold uint32          `json:"weightThreshold"`
	KeyAuths        []KeyWeight     `json:"keyAuths"`
	AccountAuths    []AccountWeight `json:"accountAuths"`
}

// IsValid - structural check applied when an authority enters the ledger
//
// an always-failing authority (total weight below threshold) is legal;
// duplicate members and zero values are not
func (auth Authority) IsValid() error {
	if 0 == auth.WeightThreshold {
		return fault.ErrInvalidAuthority
	}
	if 0 == len(auth.KeyAuths) && 0 == len(auth.AccountAuths) {
		return fault.ErrInvalidAuthority
	}

	seenKeys := make(map[account.PublicKey]struct{}, len(auth.KeyAuths))
	for _, ka := range auth.KeyAuths {
		if 0 == ka.Weight {
			return fault.ErrInvalidAuthority
		}
		if _, ok := seenKeys[ka.Key]; ok {
			return fault.ErrInvalidAuthority
		}
		seenKeys[ka.Key] = struct{}{}
	}

	seenAccounts := make(map[account.AccountId]struct{}, len(auth.AccountAuths))
	for _, aa := range auth.AccountAuths {
		if 0 == aa.Weight {
			return fault.ErrInvalidAuthority
		}
		if err := aa.Account.IsValid(); nil != err {
			return err
		}
		if _, ok := seenAccounts[aa.Account]; ok {
			return fault.ErrInvalidAuthority
		}
		seenAccounts[aa.Account] = struct{}{}
	}
	return nil
}

// KeySet - an unordered set of public keys
type KeySet map[account.PublicKey]struct{}

// NewKeySet - build a key set from individual keys
func NewKeySet(keys ...account.PublicKey) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add - insert a key, reporting whether it was already present
func (s KeySet) Add(key account.PublicKey) bool {
	_, present := s[key]
	s[key] = struct{}{}
	return present
}

// Has - membership test
func (s KeySet) Has(key account.PublicKey) bool {
	_, ok := s[key]
	return ok
}

// ActiveResolver - read capability for recursive authority evaluation
//
// implementations resolve an account to its active authority;
// fault.ErrUnknownAccountReference marks an unresolvable account
type ActiveResolver interface {
	ActiveAuthority(accountId account.AccountId) (Authority, error)
}

// IsAuthorized - decide whether a key set satisfies an authority
//
// account members are resolved through their active authority with the
// depth budget decremented on every indirection; an exhausted budget
// or an unresolvable account contributes nothing, so cyclic account
// graphs terminate and never produce a false positive
func IsAuthorized(resolver ActiveResolver, available KeySet, auth Authority, depth int) bool {
	if 0 == auth.WeightThreshold {
		return false
	}

	satisfied := uint32(0)

	for _, ka := range auth.KeyAuths {
		if available.Has(ka.Key) {
			satisfied += uint32(ka.Weight)
			if satisfied >= auth.WeightThreshold {
				return true
			}
		}
	}

	for _, aa := range auth.AccountAuths {
		if depth <= 0 {
			continue // budget exhausted: fail closed
		}
		delegated, err := resolver.ActiveAuthority(aa.Account)
		if nil != err {
			continue // unknown account: fail closed
		}
		if IsAuthorized(resolver, available, delegated, depth-1) {
			satisfied += uint32(aa.Weight)
			if satisfied >= auth.WeightThreshold {
				return true
			}
		}
	}

	return false
}
