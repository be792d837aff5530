// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
)

// an operation's canonical field list backed by a slice
type fieldList []authority.Value

func (f fieldList) Field(index uint64) (authority.Value, error) {
	if index >= uint64(len(f)) {
		return authority.Value{}, fault.ErrRestrictionTypeMismatch
	}
	return f[index], nil
}

// a transfer-shaped field list: from, to, amount, memo
func transferFields(from account.AccountId, to account.AccountId, amount int64, memo string) fieldList {
	return fieldList{
		authority.AccountVal(from),
		authority.AccountVal(to),
		authority.IntVal(amount),
		authority.StringVal(memo),
	}
}

func TestMatchEquals(t *testing.T) {
	op := transferFields("alice", "charlie", 123, "")

	restrictions := []authority.Restriction{
		{FieldIndex: 1, Func: authority.FuncEq, Argument: authority.AccountVal("charlie")},
	}

	ok, err := authority.MatchRestrictions(op, restrictions)
	assert.Nil(t, err, "match error")
	assert.True(t, ok, "destination equals restriction rejected matching transfer")

	other := transferFields("alice", "mallory", 123, "")
	ok, err = authority.MatchRestrictions(other, restrictions)
	assert.Nil(t, err, "match error")
	assert.False(t, ok, "destination equals restriction accepted wrong destination")
}

func TestMatchNotEquals(t *testing.T) {
	restrictions := []authority.Restriction{
		{FieldIndex: 1, Func: authority.FuncNe, Argument: authority.AccountVal("mallory")},
	}

	ok, err := authority.MatchRestrictions(transferFields("a", "charlie", 1, ""), restrictions)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = authority.MatchRestrictions(transferFields("a", "mallory", 1, ""), restrictions)
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestMatchOrdered(t *testing.T) {
	ceiling := []authority.Restriction{
		{FieldIndex: 2, Func: authority.FuncLe, Argument: authority.IntVal(1000)},
	}
	floor := []authority.Restriction{
		{FieldIndex: 2, Func: authority.FuncGe, Argument: authority.IntVal(10)},
	}

	testData := []struct {
		amount    int64
		underCap  bool
		overFloor bool
	}{
		{5, true, false},
		{10, true, true},
		{1000, true, true},
		{1001, false, true},
	}

	for i, item := range testData {
		op := transferFields("a", "b", item.amount, "")

		ok, err := authority.MatchRestrictions(op, ceiling)
		assert.Nil(t, err, "test: %d", i)
		assert.Equal(t, item.underCap, ok, "test: %d: cap", i)

		ok, err = authority.MatchRestrictions(op, floor)
		assert.Nil(t, err, "test: %d", i)
		assert.Equal(t, item.overFloor, ok, "test: %d: floor", i)
	}
}

func TestMatchSetMembership(t *testing.T) {
	allowed := authority.SetVal(
		authority.AccountVal("charlie"),
		authority.AccountVal("dora"),
	)

	in := []authority.Restriction{
		{FieldIndex: 1, Func: authority.FuncIn, Argument: allowed},
	}
	notIn := []authority.Restriction{
		{FieldIndex: 1, Func: authority.FuncNotIn, Argument: allowed},
	}

	ok, err := authority.MatchRestrictions(transferFields("a", "dora", 1, ""), in)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = authority.MatchRestrictions(transferFields("a", "mallory", 1, ""), in)
	assert.Nil(t, err)
	assert.False(t, ok)

	ok, err = authority.MatchRestrictions(transferFields("a", "mallory", 1, ""), notIn)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = authority.MatchRestrictions(transferFields("a", "charlie", 1, ""), notIn)
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestMatchSubset(t *testing.T) {
	// a field holding a set of tags
	op := fieldList{
		authority.SetVal(
			authority.StringVal("audit"),
			authority.StringVal("payroll"),
		),
	}

	hasAll := []authority.Restriction{
		{FieldIndex: 0, Func: authority.FuncHasAll, Argument: authority.SetVal(authority.StringVal("payroll"))},
	}
	hasNone := []authority.Restriction{
		{FieldIndex: 0, Func: authority.FuncHasNone, Argument: authority.SetVal(authority.StringVal("external"))},
	}
	missing := []authority.Restriction{
		{FieldIndex: 0, Func: authority.FuncHasAll, Argument: authority.SetVal(authority.StringVal("external"))},
	}

	ok, err := authority.MatchRestrictions(op, hasAll)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = authority.MatchRestrictions(op, hasNone)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = authority.MatchRestrictions(op, missing)
	assert.Nil(t, err)
	assert.False(t, ok)
}

// top level restrictions are AND-combined
func TestMatchConjunction(t *testing.T) {
	restrictions := []authority.Restriction{
		{FieldIndex: 1, Func: authority.FuncEq, Argument: authority.AccountVal("charlie")},
		{FieldIndex: 2, Func: authority.FuncLe, Argument: authority.IntVal(100)},
	}

	ok, err := authority.MatchRestrictions(transferFields("a", "charlie", 50, ""), restrictions)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = authority.MatchRestrictions(transferFields("a", "charlie", 500, ""), restrictions)
	assert.Nil(t, err)
	assert.False(t, ok)

	ok, err = authority.MatchRestrictions(transferFields("a", "dora", 50, ""), restrictions)
	assert.Nil(t, err)
	assert.False(t, ok)
}

// an OR group short-circuits on its first satisfied branch
func TestMatchLogicalOr(t *testing.T) {
	restrictions := []authority.Restriction{
		{
			Func: authority.FuncLogicalOr,
			Branches: [][]authority.Restriction{
				{
					{FieldIndex: 1, Func: authority.FuncEq, Argument: authority.AccountVal("charlie")},
				},
				{
					{FieldIndex: 1, Func: authority.FuncEq, Argument: authority.AccountVal("dora")},
					{FieldIndex: 2, Func: authority.FuncLe, Argument: authority.IntVal(10)},
				},
			},
		},
	}

	// first branch
	ok, err := authority.MatchRestrictions(transferFields("a", "charlie", 9999, ""), restrictions)
	assert.Nil(t, err)
	assert.True(t, ok)

	// second branch, both conjuncts required
	ok, err = authority.MatchRestrictions(transferFields("a", "dora", 5, ""), restrictions)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = authority.MatchRestrictions(transferFields("a", "dora", 50, ""), restrictions)
	assert.Nil(t, err)
	assert.False(t, ok)

	// no branch
	ok, err = authority.MatchRestrictions(transferFields("a", "mallory", 1, ""), restrictions)
	assert.Nil(t, err)
	assert.False(t, ok)
}

// a literal of the wrong type is a configuration error, not a crash
func TestMatchTypeMismatch(t *testing.T) {
	restrictions := []authority.Restriction{
		{FieldIndex: 1, Func: authority.FuncEq, Argument: authority.IntVal(7)},
	}

	ok, err := authority.MatchRestrictions(transferFields("a", "charlie", 1, ""), restrictions)
	assert.Equal(t, fault.ErrRestrictionTypeMismatch, err, "expected type mismatch")
	assert.False(t, ok, "mismatched restriction must not be satisfied")
}

// a field index past the operation's field list is treated the same way
func TestMatchBadFieldIndex(t *testing.T) {
	restrictions := []authority.Restriction{
		{FieldIndex: 42, Func: authority.FuncEq, Argument: authority.IntVal(7)},
	}

	ok, err := authority.MatchRestrictions(transferFields("a", "charlie", 1, ""), restrictions)
	assert.Equal(t, fault.ErrRestrictionTypeMismatch, err, "expected type mismatch")
	assert.False(t, ok)
}

// ordering comparisons on non-integers are type mismatches
func TestMatchOrderedOnStrings(t *testing.T) {
	restrictions := []authority.Restriction{
		{FieldIndex: 3, Func: authority.FuncGe, Argument: authority.StringVal("m")},
	}

	ok, err := authority.MatchRestrictions(transferFields("a", "b", 1, "note"), restrictions)
	assert.Equal(t, fault.ErrRestrictionTypeMismatch, err, "expected type mismatch")
	assert.False(t, ok)
}

// an empty restriction list matches every operation
func TestMatchEmptyList(t *testing.T) {
	ok, err := authority.MatchRestrictions(transferFields("a", "b", 1, ""), nil)
	assert.Nil(t, err)
	assert.True(t, ok)
}
