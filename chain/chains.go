// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/ledgerauth/fault"
)

// names of all chains
const (
	Bitmark = "bitmark"
	Testing = "testing"
	Local   = "local"
)

// IdLength - number of bytes in a chain identifier
const IdLength = 32

// Id - the chain identifier bound into every transaction digest
//
// signatures made for one chain can never verify on another since the
// identifier is hashed into the signing payload
type Id [IdLength]byte

// Valid - validate a chain name
func Valid(name string) bool {
	switch name {
	case Bitmark, Testing, Local:
		return true
	default:
		return false
	}
}

// DeriveId - the chain identifier for a named chain
func DeriveId(name string) (Id, error) {
	if !Valid(name) {
		return Id{}, fault.ErrInvalidChain
	}
	return Id(sha3.Sum256([]byte("chain:" + name))), nil
}

// MustId - DeriveId for a name already known to be valid
//
// only for use with the constant chain names above
func MustId(name string) Id {
	id, err := DeriveId(name)
	if nil != err {
		panic(err)
	}
	return id
}
