// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	ledgerAccount "github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/chain"
	"github.com/bitmark-inc/ledgerauth/directory"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/fixtures"
	"github.com/bitmark-inc/ledgerauth/rpc/account"
	"github.com/bitmark-inc/ledgerauth/transactionrecord"
)

func keyAuthority(seed string) authority.Authority {
	return authority.Authority{
		WeightThreshold: 1,
		KeyAuths: []authority.KeyWeight{
			{Key: fixtures.Key(seed).PublicKey(), Weight: 1},
		},
	}
}

func setup(t *testing.T) (*account.Account, directory.Directory) {
	fixtures.SetupTestLogger()
	t.Cleanup(fixtures.TeardownTestLogger)

	registry := directory.NewMemory()
	for _, id := range []ledgerAccount.AccountId{"alice", "bob"} {
		err := registry.SetAccount(directory.AccountRecord{
			Id:     id,
			Owner:  keyAuthority(string(id) + "-owner"),
			Active: keyAuthority(string(id) + "-active"),
		})
		if nil != err {
			t.Fatalf("registry error: %s", err)
		}
	}
	engine, err := authorization.New(chain.Testing, registry)
	if nil != err {
		t.Fatalf("engine error: %s", err)
	}
	return account.New(logger.New(fixtures.LogCategory), engine), registry
}

func TestGet(t *testing.T) {
	handler, registry := setup(t)

	var reply account.GetReply
	err := handler.Get(&account.GetArguments{Account: "alice"}, &reply)
	assert.Nil(t, err, "get error")

	expected, err := registry.Account("alice")
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, *expected, reply.Record, "wrong record")

	err = handler.Get(&account.GetArguments{Account: "nobody"}, &reply)
	assert.Equal(t, fault.ErrUnknownAccountReference, err, "missing account not reported")
}

func TestKeyReferences(t *testing.T) {
	handler, _ := setup(t)

	var reply account.KeyReferencesReply
	err := handler.KeyReferences(&account.KeyReferencesArguments{
		Keys: []ledgerAccount.PublicKey{
			fixtures.Key("bob-active").PublicKey(),
			fixtures.Key("unused").PublicKey(),
		},
	}, &reply)
	assert.Nil(t, err, "reference error")
	assert.Equal(t, 2, len(reply.References), "positional result lost")
	assert.Equal(t, []ledgerAccount.AccountId{"bob"}, reply.References[0], "wrong reference")
	assert.Equal(t, 0, len(reply.References[1]), "reference for unused key")
}

func TestKeyReferencesEmptyBatch(t *testing.T) {
	handler, _ := setup(t)

	var reply account.KeyReferencesReply
	err := handler.KeyReferences(&account.KeyReferencesArguments{}, &reply)
	assert.Equal(t, fault.ErrInvalidCount, err, "empty batch accepted")
}

func TestDelegations(t *testing.T) {
	handler, registry := setup(t)

	auth := authority.CustomAuthority{
		Account:       "alice",
		OperationType: uint64(transactionrecord.TransferTag),
		Auth:          keyAuthority("bob-active"),
		Enabled:       true,
		ValidFrom:     0,
		ValidTo:       time.Now().Unix() + 1000,
	}
	id, err := registry.CreateCustomAuthority(auth)
	assert.Nil(t, err, "create error")
	auth.Id = id

	var reply account.DelegationsReply
	err = handler.Delegations(&account.DelegationsArguments{
		Account:       "alice",
		OperationType: uint64(transactionrecord.TransferTag),
	}, &reply)
	assert.Nil(t, err, "delegations error")
	assert.Equal(t, []authority.CustomAuthority{auth}, reply.Delegations, "wrong delegation list")

	err = handler.Delegations(&account.DelegationsArguments{
		Account:       "bob",
		OperationType: uint64(transactionrecord.TransferTag),
	}, &reply)
	assert.Nil(t, err, "delegations error")
	assert.Equal(t, 0, len(reply.Delegations), "delegation on the wrong account")
}
