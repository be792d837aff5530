// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"github.com/bitmark-inc/ledgerauth/fault"
)

// FuncKind - type code for restriction predicates
type FuncKind uint64

// enumerate the possible restriction predicates
const (
	// null marks beginning of list - not used as a predicate
	FuncNothing = FuncKind(iota)

	// valid predicates
	FuncEq        = FuncKind(iota) // field == argument
	FuncNe        = FuncKind(iota) // field != argument
	FuncLe        = FuncKind(iota) // field <= argument (integers)
	FuncGe        = FuncKind(iota) // field >= argument (integers)
	FuncIn        = FuncKind(iota) // field is a member of argument set
	FuncNotIn     = FuncKind(iota) // field is not a member of argument set
	FuncHasAll    = FuncKind(iota) // field set contains every argument member
	FuncHasNone   = FuncKind(iota) // field set contains no argument member
	FuncLogicalOr = FuncKind(iota) // any branch of sibling restriction lists

	// this item must be last
	invalidFunc = FuncKind(iota)
)

// Restriction - one predicate over one operation field
//
// FieldIndex selects from the operation's canonical field list; for
// FuncLogicalOr the index and argument are ignored and Branches holds
// the alternative restriction lists instead
type Restriction struct {
	FieldIndex uint64          `json:"fieldIndex"`
	Func       FuncKind        `json:"func"`
	Argument   Value           `json:"argument,omitempty"`
	Branches   [][]Restriction `json:"branches,omitempty"`
}

// Fields - the view of an operation the matcher needs
//
// out of range indexes return an error which the matcher treats as
// "not satisfied", never as a crash
type Fields interface {
	Field(index uint64) (Value, error)
}

// MatchRestrictions - evaluate a restriction list against an operation
//
// the top level is AND-combined; an OR group is satisfied by its first
// satisfied branch; a type mismatch between a literal and the field it
// constrains is a configuration error in the custom authority and is
// reported so the caller can skip that authority
func MatchRestrictions(op Fields, restrictions []Restriction) (bool, error) {
	for _, r := range restrictions {
		ok, err := matchOne(op, r)
		if nil != err {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchOne(op Fields, r Restriction) (bool, error) {

	if FuncLogicalOr == r.Func {
		for _, branch := range r.Branches {
			ok, err := MatchRestrictions(op, branch)
			if nil != err {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	value, err := op.Field(r.FieldIndex)
	if nil != err {
		return false, fault.ErrRestrictionTypeMismatch
	}

	switch r.Func {

	case FuncEq:
		return value.Equal(r.Argument)

	case FuncNe:
		eq, err := value.Equal(r.Argument)
		if nil != err {
			return false, err
		}
		return !eq, nil

	case FuncLe:
		c, err := compareValues(value, r.Argument)
		if nil != err {
			return false, err
		}
		return c <= 0, nil

	case FuncGe:
		c, err := compareValues(value, r.Argument)
		if nil != err {
			return false, err
		}
		return c >= 0, nil

	case FuncIn:
		return r.Argument.Contains(value)

	case FuncNotIn:
		in, err := r.Argument.Contains(value)
		if nil != err {
			return false, err
		}
		return !in, nil

	case FuncHasAll:
		if SetValue != r.Argument.Kind {
			return false, fault.ErrRestrictionTypeMismatch
		}
		for _, member := range r.Argument.Set {
			has, err := value.Contains(member)
			if nil != err {
				return false, err
			}
			if !has {
				return false, nil
			}
		}
		return true, nil

	case FuncHasNone:
		if SetValue != r.Argument.Kind {
			return false, fault.ErrRestrictionTypeMismatch
		}
		for _, member := range r.Argument.Set {
			has, err := value.Contains(member)
			if nil != err {
				return false, err
			}
			if has {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, fault.ErrRestrictionTypeMismatch
	}
}
