// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/fault"
)

// ValueKind - type code for operation field values
type ValueKind uint64

// enumerate the possible field value kinds
const (
	// null marks beginning of list - not used as a value kind
	NothingValue = ValueKind(iota)

	// valid value kinds
	IntValue     = ValueKind(iota) // signed amount or counter
	StringValue  = ValueKind(iota) // utf-8 text such as a memo
	AccountValue = ValueKind(iota) // an account identifier
	KeyValue     = ValueKind(iota) // a public key
	SetValue     = ValueKind(iota) // a flat set of same-kind values

	// this item must be last
	invalidValueKind = ValueKind(iota)
)

// Value - one operation field as seen by the restriction matcher
//
// a closed tagged variant: exactly one member is meaningful according
// to Kind; comparisons are type strict
type Value struct {
	Kind    ValueKind         `json:"kind"`
	Int     int64             `json:"int,omitempty"`
	Str     string            `json:"str,omitempty"`
	Account account.AccountId `json:"account,omitempty"`
	Key     account.PublicKey `json:"key,omitempty"`
	Set     []Value           `json:"set,omitempty"`
}

// value constructors
func IntVal(n int64) Value                  { return Value{Kind: IntValue, Int: n} }
func StringVal(s string) Value              { return Value{Kind: StringValue, Str: s} }
func AccountVal(id account.AccountId) Value { return Value{Kind: AccountValue, Account: id} }
func KeyVal(k account.PublicKey) Value      { return Value{Kind: KeyValue, Key: k} }
func SetVal(members ...Value) Value         { return Value{Kind: SetValue, Set: members} }

// Equal - type-strict equality
//
// sets compare element-wise in order; restriction authors must store
// set literals in canonical order
func (v Value) Equal(other Value) (bool, error) {
	if v.Kind != other.Kind {
		return false, fault.ErrRestrictionTypeMismatch
	}
	switch v.Kind {
	case IntValue:
		return v.Int == other.Int, nil
	case StringValue:
		return v.Str == other.Str, nil
	case AccountValue:
		return v.Account == other.Account, nil
	case KeyValue:
		return v.Key == other.Key, nil
	case SetValue:
		if len(v.Set) != len(other.Set) {
			return false, nil
		}
		for i, m := range v.Set {
			eq, err := m.Equal(other.Set[i])
			if nil != err {
				return false, err
			}
			if !eq {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fault.ErrRestrictionTypeMismatch
	}
}

// Contains - set membership by Equal
//
// only meaningful on a SetValue receiver
func (v Value) Contains(member Value) (bool, error) {
	if SetValue != v.Kind {
		return false, fault.ErrRestrictionTypeMismatch
	}
	for _, m := range v.Set {
		eq, err := m.Equal(member)
		if nil != err {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

// compare two ordered values: -1, 0, +1
//
// only integers are ordered; anything else is a type mismatch
func compareValues(a Value, b Value) (int, error) {
	if IntValue != a.Kind || IntValue != b.Kind {
		return 0, fault.ErrRestrictionTypeMismatch
	}
	switch {
	case a.Int < b.Int:
		return -1, nil
	case a.Int > b.Int:
		return 1, nil
	default:
		return 0, nil
	}
}
