// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/bitmark-inc/ledgerauth/fault"
)

// AccountIdMaximumLength - longest permitted account identifier
const AccountIdMaximumLength = 64

// AccountId - the ledger-wide name of an account
//
// identifiers are printable ASCII with no spaces so they can be used
// directly as database key components
type AccountId string

// IsValid - validate an account identifier
func (id AccountId) IsValid() error {
	if 0 == len(id) {
		return fault.ErrInvalidAccountId
	}
	if len(id) > AccountIdMaximumLength {
		return fault.ErrAccountIdTooLong
	}
	for _, c := range id {
		if c <= 0x20 || c > 0x7e {
			return fault.ErrInvalidAccountId
		}
	}
	return nil
}

// String - the identifier text, for the fmt package
func (id AccountId) String() string {
	return string(id)
}
