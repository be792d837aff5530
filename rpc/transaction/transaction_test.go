// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/chain"
	"github.com/bitmark-inc/ledgerauth/directory"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/fixtures"
	"github.com/bitmark-inc/ledgerauth/rpc/transaction"
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

func setup(t *testing.T, accounts ...account.AccountId) (*transaction.Transaction, *authorization.Engine) {
	fixtures.SetupTestLogger()
	t.Cleanup(fixtures.TeardownTestLogger)

	registry := directory.NewMemory()
	for _, id := range accounts {
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
	return transaction.New(logger.New(fixtures.LogCategory), engine, registry), engine
}

func signedTransfer(t *testing.T, engine *authorization.Engine, seeds ...string) *transactionrecord.Transaction {
	tx := &transactionrecord.Transaction{
		Operations: []transactionrecord.Operation{
			&transactionrecord.Transfer{
				From:   "alice",
				To:     "bob",
				Amount: 100,
			},
		},
		Expiration: time.Now().Unix() + 300,
	}
	digest, err := tx.Digest(engine.ChainId())
	if nil != err {
		t.Fatalf("digest error: %s", err)
	}
	for _, seed := range seeds {
		signature, err := fixtures.Key(seed).Sign(digest[:])
		if nil != err {
			t.Fatalf("sign error: %s", err)
		}
		if err := tx.AddSignature(engine.ChainId(), true, signature); nil != err {
			t.Fatalf("add signature error: %s", err)
		}
	}
	return tx
}

func packArguments(t *testing.T, tx *transactionrecord.Transaction) *transaction.Arguments {
	packed, err := tx.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}
	return &transaction.Arguments{Packed: hex.EncodeToString(packed)}
}

func TestVerify(t *testing.T) {
	handler, engine := setup(t, "alice", "bob")

	tx := signedTransfer(t, engine, "alice-active")
	expected, _ := tx.Digest(engine.ChainId())

	var reply transaction.VerifyReply
	err := handler.Verify(packArguments(t, tx), &reply)
	assert.Nil(t, err, "verify error")
	assert.True(t, reply.Authorized, "authorized transaction rejected")
	assert.Equal(t, expected, reply.TxId, "wrong transaction id")
	assert.Equal(t, "", reply.Reason, "reason on success")
}

func TestVerifyUnauthorized(t *testing.T) {
	handler, engine := setup(t, "alice", "bob")

	tx := signedTransfer(t, engine, "bob-active")

	var reply transaction.VerifyReply
	err := handler.Verify(packArguments(t, tx), &reply)
	assert.Nil(t, err, "verify error")
	assert.False(t, reply.Authorized, "unauthorized transaction accepted")
	assert.NotEqual(t, "", reply.Reason, "missing rejection reason")
}

func TestVerifyGarbage(t *testing.T) {
	handler, _ := setup(t, "alice")

	var reply transaction.VerifyReply
	err := handler.Verify(&transaction.Arguments{Packed: "zz-not-hex"}, &reply)
	assert.Equal(t, fault.ErrNotTransactionPack, err, "bad hex accepted")

	err = handler.Verify(&transaction.Arguments{Packed: "00ff00"}, &reply)
	assert.Equal(t, fault.ErrNotTransactionPack, err, "bad packing accepted")
}

func TestSubmit(t *testing.T) {
	handler, engine := setup(t, "alice")

	newActive := keyAuthority("alice-rotated")
	tx := &transactionrecord.Transaction{
		Operations: []transactionrecord.Operation{
			&transactionrecord.AccountUpdate{
				Account:   "alice",
				NewActive: &newActive,
			},
		},
		Expiration: time.Now().Unix() + 300,
	}
	digest, err := tx.Digest(engine.ChainId())
	assert.Nil(t, err, "digest error")
	signature, err := fixtures.Key("alice-owner").Sign(digest[:])
	assert.Nil(t, err, "sign error")
	assert.Nil(t, tx.AddSignature(engine.ChainId(), true, signature), "add signature error")

	var reply transaction.SubmitReply
	err = handler.Submit(packArguments(t, tx), &reply)
	assert.Nil(t, err, "submit error")
	assert.Equal(t, digest, reply.TxId, "wrong transaction id")

	// the registry has the rotated key now
	record, err := engine.Registry().Account("alice")
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, newActive, record.Active, "update not applied")
}

func TestSubmitIsAtomic(t *testing.T) {
	handler, engine := setup(t, "alice")

	// an authorized transaction whose second operation cannot apply
	// must leave the first one uncommitted
	newMemo := fixtures.Key("alice-rotated-memo").PublicKey()
	tx := &transactionrecord.Transaction{
		Operations: []transactionrecord.Operation{
			&transactionrecord.AccountUpdate{
				Account:    "alice",
				NewMemoKey: &newMemo,
			},
			&transactionrecord.CustomAuthorityDelete{
				Account:     "alice",
				AuthorityId: 12345,
			},
		},
		Expiration: time.Now().Unix() + 300,
	}
	digest, err := tx.Digest(engine.ChainId())
	assert.Nil(t, err, "digest error")
	signature, err := fixtures.Key("alice-owner").Sign(digest[:])
	assert.Nil(t, err, "sign error")
	assert.Nil(t, tx.AddSignature(engine.ChainId(), true, signature), "add signature error")

	var reply transaction.SubmitReply
	err = handler.Submit(packArguments(t, tx), &reply)
	assert.Equal(t, fault.ErrCustomAuthorityNotFound, err, "missing delegation accepted")

	record, err := engine.Registry().Account("alice")
	assert.Nil(t, err, "fetch error")
	assert.NotEqual(t, newMemo, record.MemoKey, "partial effect committed")
}

func TestSubmitUnauthorized(t *testing.T) {
	handler, engine := setup(t, "alice", "bob")

	tx := signedTransfer(t, engine, "bob-active")

	var reply transaction.SubmitReply
	err := handler.Submit(packArguments(t, tx), &reply)
	assert.True(t, fault.IsErrUnsatisfiedAuthority(err), "unauthorized transaction applied")
}

func TestSigners(t *testing.T) {
	handler, engine := setup(t, "alice", "bob")

	tx := signedTransfer(t, engine, "alice-active", "bob-owner")

	var reply transaction.SignersReply
	err := handler.Signers(packArguments(t, tx), &reply)
	assert.Nil(t, err, "signers error")
	assert.Equal(t, 2, len(reply.Signers), "wrong signer count")
	assert.Equal(t, "", reply.Error, "recovery error on good signatures")

	expected := authority.NewKeySet(
		fixtures.Key("alice-active").PublicKey(),
		fixtures.Key("bob-owner").PublicKey(),
	)
	for _, key := range reply.Signers {
		assert.True(t, expected.Has(key), "unexpected signer: %s", key)
	}
}
