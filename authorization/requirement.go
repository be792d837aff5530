// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authorization

import (
	"time"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/transactionrecord"
)

// Requirement - the authority alternatives open to one operation
//
// satisfying any single member of Alternatives, or any single listed
// delegation, authorizes the operation
type Requirement struct {
	Account      account.AccountId           `json:"account"`
	Level        transactionrecord.Level     `json:"level"`
	Alternatives []authority.Authority       `json:"alternatives"`
	Delegations  []authority.CustomAuthority `json:"delegations,omitempty"`
}

// RequiredAuthorities - what a transaction would need at an instant
//
// element i answers for operation i; delegations are pre-filtered to
// those effective at the instant whose restrictions match the
// operation, so every listed alternative is genuinely usable
func (engine *Engine) RequiredAuthorities(tx *transactionrecord.Transaction, at time.Time) ([]Requirement, error) {
	if 0 == len(tx.Operations) {
		return nil, fault.ErrNoOperations
	}

	requirements := make([]Requirement, 0, len(tx.Operations))
	for _, op := range tx.Operations {
		id := op.AuthorizingAccount()
		record, err := engine.registry.Account(id)
		if nil != err {
			return nil, err
		}

		requirement := Requirement{
			Account: id,
			Level:   op.RequiredLevel(),
		}

		if transactionrecord.OwnerLevel == op.RequiredLevel() {
			requirement.Alternatives = []authority.Authority{record.Owner}
			requirements = append(requirements, requirement)
			continue
		}

		requirement.Alternatives = []authority.Authority{record.Active, record.Owner}

		delegations, err := engine.registry.CustomAuthorities(id, uint64(op.Tag()), at)
		if nil != err {
			return nil, err
		}
		for _, delegation := range delegations {
			matched, err := authority.MatchRestrictions(op, delegation.Restrictions)
			if nil != err || !matched {
				continue
			}
			requirement.Delegations = append(requirement.Delegations, delegation)
		}
		requirements = append(requirements, requirement)
	}
	return requirements, nil
}
