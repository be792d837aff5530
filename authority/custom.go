// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"time"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/fault"
)

// CustomAuthority - a narrowly scoped delegation of authority
//
// limited to one operation type on one account, bounded by a validity
// window and by field level restrictions; only the owning account can
// create, update or delete it
type CustomAuthority struct {
	Id            uint64            `json:"id"`
	Account       account.AccountId `json:"account"`
	OperationType uint64            `json:"operationType"`
	Auth          Authority         `json:"auth"`
	Enabled       bool              `json:"enabled"`
	ValidFrom     int64             `json:"validFrom"` // unix seconds
	ValidTo       int64             `json:"validTo"`   // unix seconds
	Restrictions  []Restriction     `json:"restrictions,omitempty"`
}

// IsValid - structural check applied when the record enters the ledger
func (c CustomAuthority) IsValid() error {
	if err := c.Account.IsValid(); nil != err {
		return err
	}
	if c.ValidFrom > c.ValidTo {
		return fault.ErrInvalidTimestamp
	}
	return c.Auth.IsValid()
}

// EffectiveAt - whether the delegation can be considered at a given time
func (c CustomAuthority) EffectiveAt(at time.Time) bool {
	if !c.Enabled {
		return false
	}
	t := at.Unix()
	return c.ValidFrom <= t && t <= c.ValidTo
}
