// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"encoding/hex"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/ledgerauth/rpc/ratelimit"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/directory"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/transactionrecord"
)

const (
	rateLimitTransaction = 200
	rateBurstTransaction = 100
)

// Transaction - an RPC entry for transaction related functions
type Transaction struct {
	Log      *logger.L
	Limiter  *rate.Limiter
	Engine   *authorization.Engine
	Registry directory.Directory
}

func New(log *logger.L, engine *authorization.Engine, registry directory.Directory) *Transaction {
	return &Transaction{
		Log:      log,
		Limiter:  rate.NewLimiter(rateLimitTransaction, rateBurstTransaction),
		Engine:   engine,
		Registry: registry,
	}
}

// Arguments - a transaction in packed hex form
type Arguments struct {
	Packed string `json:"packed"`
}

func (t *Transaction) unpack(arguments *Arguments) (*transactionrecord.Transaction, error) {
	packed, err := hex.DecodeString(arguments.Packed)
	if nil != err {
		return nil, fault.ErrNotTransactionPack
	}
	tx, _, err := transactionrecord.UnpackTransaction(packed, t.Engine.IsTesting())
	return tx, err
}

// VerifyReply - the verdict on a signed transaction
type VerifyReply struct {
	TxId       transactionrecord.Digest `json:"txId"`
	Authorized bool                     `json:"authorized"`
	Reason     string                   `json:"reason,omitempty"`
}

// Verify - judge a signed transaction without applying it
func (t *Transaction) Verify(arguments *Arguments, reply *VerifyReply) error {

	if err := ratelimit.Limit(t.Limiter); nil != err {
		return err
	}

	tx, err := t.unpack(arguments)
	if nil != err {
		return err
	}

	digest, err := tx.Digest(t.Engine.ChainId())
	if nil != err {
		return err
	}
	reply.TxId = digest

	err = t.Engine.IsTransactionAuthorized(tx, time.Now())
	if nil != err {
		t.Log.Infof("verify %s: %s", digest, err)
		reply.Reason = err.Error()
		return nil
	}
	reply.Authorized = true
	return nil
}

// SubmitReply - result of applying a transaction
type SubmitReply struct {
	TxId transactionrecord.Digest `json:"txId"`
}

// Submit - judge a signed transaction and apply its operations
func (t *Transaction) Submit(arguments *Arguments, reply *SubmitReply) error {

	if err := ratelimit.Limit(t.Limiter); nil != err {
		return err
	}

	tx, err := t.unpack(arguments)
	if nil != err {
		return err
	}

	digest, err := tx.Digest(t.Engine.ChainId())
	if nil != err {
		return err
	}

	if err := t.Engine.IsTransactionAuthorized(tx, time.Now()); nil != err {
		t.Log.Warnf("submit %s rejected: %s", digest, err)
		return err
	}

	if err := directory.ApplyAll(t.Registry, tx.Operations); nil != err {
		t.Log.Warnf("submit %s not applied: %s", digest, err)
		return err
	}

	t.Log.Infof("submitted %s", digest)
	reply.TxId = digest
	return nil
}

// SignersReply - recovered signer keys in a stable order
type SignersReply struct {
	Signers []account.PublicKey `json:"signers"`
	Error   string              `json:"error,omitempty"`
}

// Signers - recover the candidate keys behind a transaction's signatures
func (t *Transaction) Signers(arguments *Arguments, reply *SignersReply) error {

	if err := ratelimit.Limit(t.Limiter); nil != err {
		return err
	}

	tx, err := t.unpack(arguments)
	if nil != err {
		return err
	}

	signers, err := t.Engine.GetTransactionSigners(tx)
	if nil == signers {
		return err
	}
	if nil != err {
		reply.Error = err.Error()
	}
	reply.Signers = signers
	return nil
}
