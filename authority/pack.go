// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/util"
)

// canonical binary form for authorities, restrictions and values
//
// Varint64 tags and counts, length-prefixed variable data, public
// keys as raw compressed points; identical on every node so packed
// bytes can enter digests and the directory store

// limits applied during unpack
const (
	maxStringLength     = 8192
	maxSetMembers       = 256
	maxAuthorityMembers = 256
	maxRestrictionCount = 256
	maxRestrictionDepth = 8
)

func appendUint64(buffer []byte, value uint64) []byte {
	return append(buffer, util.ToVarint64(value)...)
}

func appendLengthBytes(buffer []byte, data []byte) []byte {
	buffer = appendUint64(buffer, uint64(len(data)))
	return append(buffer, data...)
}

// Pack - canonical bytes for one value
func (v Value) Pack() []byte {
	buffer := util.ToVarint64(uint64(v.Kind))
	switch v.Kind {
	case IntValue:
		buffer = appendUint64(buffer, uint64(v.Int))
	case StringValue:
		buffer = appendLengthBytes(buffer, []byte(v.Str))
	case AccountValue:
		buffer = appendLengthBytes(buffer, []byte(v.Account))
	case KeyValue:
		buffer = append(buffer, v.Key.Key[:]...)
	case SetValue:
		buffer = appendUint64(buffer, uint64(len(v.Set)))
		for _, m := range v.Set {
			buffer = append(buffer, m.Pack()...)
		}
	}
	return buffer
}

// UnpackValue - read one value back from its canonical bytes
//
// also returns the number of bytes consumed
func UnpackValue(buffer []byte, testnet bool) (Value, int, error) {
	kind, n := util.FromVarint64(buffer)
	if 0 == n {
		return Value{}, 0, fault.ErrNotAuthorityPack
	}

	switch ValueKind(kind) {

	case NothingValue:
		return Value{}, n, nil

	case IntValue:
		i, length := util.FromVarint64(buffer[n:])
		if 0 == length {
			return Value{}, 0, fault.ErrNotAuthorityPack
		}
		return IntVal(int64(i)), n + length, nil

	case StringValue:
		s, length, err := unpackLengthBytes(buffer[n:])
		if nil != err {
			return Value{}, 0, err
		}
		return StringVal(string(s)), n + length, nil

	case AccountValue:
		s, length, err := unpackLengthBytes(buffer[n:])
		if nil != err {
			return Value{}, 0, err
		}
		id := account.AccountId(s)
		if err := id.IsValid(); nil != err {
			return Value{}, 0, err
		}
		return AccountVal(id), n + length, nil

	case KeyValue:
		if len(buffer[n:]) < account.PublicKeyLength {
			return Value{}, 0, fault.ErrNotAuthorityPack
		}
		key, err := account.PublicKeyFromBytes(testnet, buffer[n:n+account.PublicKeyLength])
		if nil != err {
			return Value{}, 0, err
		}
		return KeyVal(key), n + account.PublicKeyLength, nil

	case SetValue:
		count, countLength := util.ClippedVarint64(buffer[n:], 0, maxSetMembers)
		if 0 == countLength {
			return Value{}, 0, fault.ErrNotAuthorityPack
		}
		n += countLength
		members := []Value(nil)
		for i := 0; i < count; i += 1 {
			m, length, err := UnpackValue(buffer[n:], testnet)
			if nil != err {
				return Value{}, 0, err
			}
			members = append(members, m)
			n += length
		}
		return Value{Kind: SetValue, Set: members}, n, nil

	default:
		return Value{}, 0, fault.ErrNotAuthorityPack
	}
}

// Pack - canonical bytes for one restriction
func (r Restriction) Pack() []byte {
	buffer := util.ToVarint64(r.FieldIndex)
	buffer = appendUint64(buffer, uint64(r.Func))
	if FuncLogicalOr == r.Func {
		buffer = appendUint64(buffer, uint64(len(r.Branches)))
		for _, branch := range r.Branches {
			buffer = append(buffer, PackRestrictions(branch)...)
		}
		return buffer
	}
	return append(buffer, r.Argument.Pack()...)
}

// PackRestrictions - canonical bytes for an ordered restriction list
func PackRestrictions(restrictions []Restriction) []byte {
	buffer := util.ToVarint64(uint64(len(restrictions)))
	for _, r := range restrictions {
		buffer = append(buffer, r.Pack()...)
	}
	return buffer
}

// UnpackRestrictions - read a restriction list from canonical bytes
func UnpackRestrictions(buffer []byte, testnet bool) ([]Restriction, int, error) {
	return unpackRestrictionList(buffer, testnet, maxRestrictionDepth)
}

func unpackRestrictionList(buffer []byte, testnet bool, depth int) ([]Restriction, int, error) {
	if depth <= 0 {
		return nil, 0, fault.ErrNotAuthorityPack
	}

	count, n := util.FromVarint64(buffer)
	if 0 == n || count > maxRestrictionCount {
		return nil, 0, fault.ErrNotAuthorityPack
	}

	restrictions := []Restriction(nil)
	for i := uint64(0); i < count; i += 1 {
		r := Restriction{}

		fieldIndex, length := util.FromVarint64(buffer[n:])
		if 0 == length {
			return nil, 0, fault.ErrNotAuthorityPack
		}
		n += length
		r.FieldIndex = fieldIndex

		f, length := util.FromVarint64(buffer[n:])
		if 0 == length || FuncKind(f) >= invalidFunc || FuncKind(f) == FuncNothing {
			return nil, 0, fault.ErrNotAuthorityPack
		}
		n += length
		r.Func = FuncKind(f)

		if FuncLogicalOr == r.Func {
			branchCount, length := util.FromVarint64(buffer[n:])
			if 0 == length || branchCount > maxRestrictionCount {
				return nil, 0, fault.ErrNotAuthorityPack
			}
			n += length
			branches := [][]Restriction(nil)
			for j := uint64(0); j < branchCount; j += 1 {
				branch, length, err := unpackRestrictionList(buffer[n:], testnet, depth-1)
				if nil != err {
					return nil, 0, err
				}
				branches = append(branches, branch)
				n += length
			}
			r.Branches = branches
		} else {
			argument, length, err := UnpackValue(buffer[n:], testnet)
			if nil != err {
				return nil, 0, err
			}
			n += length
			r.Argument = argument
		}

		restrictions = append(restrictions, r)
	}
	return restrictions, n, nil
}

// Pack - canonical bytes for an authority
func (auth Authority) Pack() []byte {
	buffer := util.ToVarint64(uint64(auth.WeightThreshold))

	buffer = appendUint64(buffer, uint64(len(auth.KeyAuths)))
	for _, ka := range auth.KeyAuths {
		buffer = append(buffer, ka.Key.Key[:]...)
		buffer = appendUint64(buffer, uint64(ka.Weight))
	}

	buffer = appendUint64(buffer, uint64(len(auth.AccountAuths)))
	for _, aa := range auth.AccountAuths {
		buffer = appendLengthBytes(buffer, []byte(aa.Account))
		buffer = appendUint64(buffer, uint64(aa.Weight))
	}
	return buffer
}

// UnpackAuthority - read an authority from canonical bytes
func UnpackAuthority(buffer []byte, testnet bool) (Authority, int, error) {
	auth := Authority{}

	threshold, n := util.FromVarint64(buffer)
	if 0 == n {
		return auth, 0, fault.ErrNotAuthorityPack
	}
	auth.WeightThreshold = uint32(threshold)

	keyCount, length := util.FromVarint64(buffer[n:])
	if 0 == length || keyCount > maxAuthorityMembers {
		return auth, 0, fault.ErrNotAuthorityPack
	}
	n += length
	for i := uint64(0); i < keyCount; i += 1 {
		if len(buffer[n:]) < account.PublicKeyLength {
			return auth, 0, fault.ErrNotAuthorityPack
		}
		key, err := account.PublicKeyFromBytes(testnet, buffer[n:n+account.PublicKeyLength])
		if nil != err {
			return auth, 0, err
		}
		n += account.PublicKeyLength

		weight, length := util.FromVarint64(buffer[n:])
		if 0 == length {
			return auth, 0, fault.ErrNotAuthorityPack
		}
		n += length
		auth.KeyAuths = append(auth.KeyAuths, KeyWeight{Key: key, Weight: uint16(weight)})
	}

	accountCount, length := util.FromVarint64(buffer[n:])
	if 0 == length || accountCount > maxAuthorityMembers {
		return auth, 0, fault.ErrNotAuthorityPack
	}
	n += length
	for i := uint64(0); i < accountCount; i += 1 {
		id, length, err := unpackLengthBytes(buffer[n:])
		if nil != err {
			return auth, 0, err
		}
		n += length

		weight, weightLength := util.FromVarint64(buffer[n:])
		if 0 == weightLength {
			return auth, 0, fault.ErrNotAuthorityPack
		}
		n += weightLength
		auth.AccountAuths = append(auth.AccountAuths, AccountWeight{
			Account: account.AccountId(id),
			Weight:  uint16(weight),
		})
	}

	return auth, n, nil
}

// Pack - canonical bytes for a custom authority record
func (c CustomAuthority) Pack() []byte {
	buffer := util.ToVarint64(c.Id)
	buffer = appendLengthBytes(buffer, []byte(c.Account))
	buffer = appendUint64(buffer, c.OperationType)
	buffer = append(buffer, c.Auth.Pack()...)
	if c.Enabled {
		buffer = append(buffer, 0x01)
	} else {
		buffer = append(buffer, 0x00)
	}
	buffer = appendUint64(buffer, uint64(c.ValidFrom))
	buffer = appendUint64(buffer, uint64(c.ValidTo))
	return append(buffer, PackRestrictions(c.Restrictions)...)
}

// UnpackCustomAuthority - read a custom authority record from canonical bytes
func UnpackCustomAuthority(buffer []byte, testnet bool) (CustomAuthority, int, error) {
	c := CustomAuthority{}

	id, n := util.FromVarint64(buffer)
	if 0 == n {
		return c, 0, fault.ErrNotAuthorityPack
	}
	c.Id = id

	owner, length, err := unpackLengthBytes(buffer[n:])
	if nil != err {
		return c, 0, err
	}
	n += length
	c.Account = account.AccountId(owner)

	operationType, length := util.FromVarint64(buffer[n:])
	if 0 == length {
		return c, 0, fault.ErrNotAuthorityPack
	}
	n += length
	c.OperationType = operationType

	auth, length, err := UnpackAuthority(buffer[n:], testnet)
	if nil != err {
		return c, 0, err
	}
	n += length
	c.Auth = auth

	if 0 == len(buffer[n:]) {
		return c, 0, fault.ErrNotAuthorityPack
	}
	c.Enabled = 0 != buffer[n]
	n += 1

	validFrom, length := util.FromVarint64(buffer[n:])
	if 0 == length {
		return c, 0, fault.ErrNotAuthorityPack
	}
	n += length
	c.ValidFrom = int64(validFrom)

	validTo, length := util.FromVarint64(buffer[n:])
	if 0 == length {
		return c, 0, fault.ErrNotAuthorityPack
	}
	n += length
	c.ValidTo = int64(validTo)

	restrictions, length, err := UnpackRestrictions(buffer[n:], testnet)
	if nil != err {
		return c, 0, err
	}
	n += length
	c.Restrictions = restrictions

	return c, n, nil
}

func unpackLengthBytes(buffer []byte) ([]byte, int, error) {
	dataLength, offset := util.ClippedVarint64(buffer, 0, maxStringLength)
	if 0 == offset {
		return nil, 0, fault.ErrNotAuthorityPack
	}
	if len(buffer) < offset+dataLength {
		return nil, 0, fault.ErrNotAuthorityPack
	}
	return buffer[offset : offset+dataLength], offset + dataLength, nil
}
