// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/ledgerauth/authority"
)

// a representative custom authority exercising every packed field
func sampleCustomAuthority(t *testing.T) authority.CustomAuthority {
	return authority.CustomAuthority{
		Id:            7,
		Account:       "alice",
		OperationType: 1,
		Auth: authority.Authority{
			WeightThreshold: 2,
			KeyAuths: []authority.KeyWeight{
				{Key: testKey(t, "pack-key-1"), Weight: 1},
				{Key: testKey(t, "pack-key-2"), Weight: 2},
			},
			AccountAuths: []authority.AccountWeight{
				{Account: "bob", Weight: 1},
			},
		},
		Enabled:   true,
		ValidFrom: 1000,
		ValidTo:   2000,
		Restrictions: []authority.Restriction{
			{FieldIndex: 1, Func: authority.FuncEq, Argument: authority.AccountVal("charlie")},
			{FieldIndex: 2, Func: authority.FuncLe, Argument: authority.IntVal(500)},
			{
				Func: authority.FuncLogicalOr,
				Branches: [][]authority.Restriction{
					{{FieldIndex: 3, Func: authority.FuncEq, Argument: authority.StringVal("")}},
					{{FieldIndex: 1, Func: authority.FuncIn, Argument: authority.SetVal(
						authority.AccountVal("charlie"),
						authority.AccountVal("dora"),
					)}},
				},
			},
		},
	}
}

// canonical bytes survive the round trip unchanged
func TestPackCustomAuthority(t *testing.T) {
	c := sampleCustomAuthority(t)

	packed := c.Pack()
	unpacked, n, err := authority.UnpackCustomAuthority(packed, true)
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, len(packed), n, "unpack consumed wrong byte count")
	assert.Equal(t, c, unpacked, "record changed by pack/unpack")

	// packing twice is deterministic
	assert.Equal(t, packed, unpacked.Pack(), "pack is not deterministic")
}

// negative integers pack via two's complement
func TestPackNegativeInt(t *testing.T) {
	v := authority.IntVal(-42)
	unpacked, n, err := authority.UnpackValue(v.Pack(), true)
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, len(v.Pack()), n)
	assert.Equal(t, v, unpacked, "negative value changed by pack/unpack")
}

// truncated buffers report a pack error insted of crashing
func TestUnpackTruncated(t *testing.T) {
	packed := sampleCustomAuthority(t).Pack()

	for _, cut := range []int{0, 1, len(packed) / 2, len(packed) - 1} {
		_, _, err := authority.UnpackCustomAuthority(packed[:cut], true)
		assert.NotNil(t, err, "truncation at %d accepted", cut)
	}
}

// the validity window and enabled flag gate effectiveness
func TestCustomAuthorityEffectiveAt(t *testing.T) {
	c := sampleCustomAuthority(t)

	assert.True(t, c.EffectiveAt(time.Unix(1000, 0)), "window start excluded")
	assert.True(t, c.EffectiveAt(time.Unix(1500, 0)), "inside window excluded")
	assert.True(t, c.EffectiveAt(time.Unix(2000, 0)), "window end excluded")
	assert.False(t, c.EffectiveAt(time.Unix(999, 0)), "before window included")
	assert.False(t, c.EffectiveAt(time.Unix(2001, 0)), "after window included")

	c.Enabled = false
	assert.False(t, c.EffectiveAt(time.Unix(1500, 0)), "disabled authority included")
}
