// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package directory

import (
	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/transactionrecord"
)

// ApplyAll - update the registry with a whole transaction's effect
//
// all or nothing: every operation is first rehearsed against a staging
// copy of the records it touches, and the registry itself is only
// written once the whole set has applied cleanly, so a failing
// operation leaves no earlier sibling committed
func ApplyAll(d Directory, ops []transactionrecord.Operation) error {
	stage := NewMemory()

	for _, op := range ops {
		if err := seedStage(stage, d, op); nil != err {
			return err
		}
	}
	for _, op := range ops {
		if err := Apply(stage, op); nil != err {
			return err
		}
	}
	for _, op := range ops {
		if err := Apply(d, op); nil != err {
			return err
		}
	}
	return nil
}

// copy the records one operation touches from the registry into the
// staging copy; unknown references stay absent so the rehearsal fails
// exactly where the registry would
func seedStage(stage *Memory, d Directory, op transactionrecord.Operation) error {
	id := op.AuthorizingAccount()
	if _, err := stage.Account(id); nil != err {
		if record, err := d.Account(id); nil == err {
			if err := stage.SetAccount(*record); nil != err {
				return err
			}
		}
	}

	switch op := op.(type) {
	case *transactionrecord.CustomAuthorityUpdate:
		seedCustomAuthority(stage, d, op.Account, op.AuthorityId)
	case *transactionrecord.CustomAuthorityDelete:
		seedCustomAuthority(stage, d, op.Account, op.AuthorityId)
	}
	return nil
}

// insert a delegation copied from the registry, preserving its
// identifier so later assignments in the staging copy cannot collide
func seedCustomAuthority(stage *Memory, d Directory, id account.AccountId, authorityId uint64) {
	if _, err := stage.CustomAuthority(id, authorityId); nil == err {
		return
	}
	stored, err := d.CustomAuthority(id, authorityId)
	if nil != err {
		return
	}

	stage.Lock()
	defer stage.Unlock()
	stage.custom[stored.Account] = append(stage.custom[stored.Account], *stored)
	if authorityId >= stage.nextId {
		stage.nextId = authorityId + 1
	}
}

// Apply - update the registry with the effect of one operation
//
// only the registry-shaping operations change anything here; a
// transfer is balance movement and leaves the account records alone
func Apply(d Directory, op transactionrecord.Operation) error {

	switch op := op.(type) {

	case *transactionrecord.Transfer:
		return nil

	case *transactionrecord.AccountUpdate:
		record, err := d.Account(op.Account)
		if nil != err {
			return err
		}
		if nil != op.NewOwner {
			record.Owner = *op.NewOwner
		}
		if nil != op.NewActive {
			record.Active = *op.NewActive
		}
		if nil != op.NewMemoKey {
			record.MemoKey = *op.NewMemoKey
		}
		return d.SetAccount(*record)

	case *transactionrecord.CustomAuthorityCreate:
		_, err := d.CreateCustomAuthority(authority.CustomAuthority{
			Account:       op.Account,
			OperationType: op.OperationType,
			Auth:          op.Auth,
			Enabled:       op.Enabled,
			ValidFrom:     op.ValidFrom,
			ValidTo:       op.ValidTo,
			Restrictions:  op.Restrictions,
		})
		return err

	case *transactionrecord.CustomAuthorityUpdate:
		stored, err := d.CustomAuthority(op.Account, op.AuthorityId)
		if nil != err {
			return err
		}
		if nil != op.NewAuth {
			stored.Auth = *op.NewAuth
		}
		if nil != op.NewEnabled {
			stored.Enabled = *op.NewEnabled
		}
		if nil != op.NewValidFrom {
			stored.ValidFrom = *op.NewValidFrom
		}
		if nil != op.NewValidTo {
			stored.ValidTo = *op.NewValidTo
		}
		if nil != op.NewRestrictions {
			stored.Restrictions = op.NewRestrictions
		}
		return d.UpdateCustomAuthority(*stored)

	case *transactionrecord.CustomAuthorityDelete:
		return d.DeleteCustomAuthority(op.Account, op.AuthorityId)

	default:
		return fault.ErrInvalidStructPack
	}
}
