// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/ledgerauth/rpc/ratelimit"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/directory"
)

const (
	rateLimitAccount = 200
	rateBurstAccount = 100
)

// limit for key reference batches
const maximumKeyCount = 100

// Account - an RPC entry for account registry queries
type Account struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Engine  *authorization.Engine
}

func New(log *logger.L, engine *authorization.Engine) *Account {
	return &Account{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitAccount, rateBurstAccount),
		Engine:  engine,
	}
}

// GetArguments - name the account wanted
type GetArguments struct {
	Account account.AccountId `json:"account"`
}

// GetReply - the stored account record
type GetReply struct {
	Record directory.AccountRecord `json:"record"`
}

// Get - fetch one account record
func (a *Account) Get(arguments *GetArguments, reply *GetReply) error {

	if err := ratelimit.Limit(a.Limiter); nil != err {
		return err
	}

	record, err := a.Engine.Registry().Account(arguments.Account)
	if nil != err {
		return err
	}
	reply.Record = *record
	return nil
}

// KeyReferencesArguments - the keys to look up
type KeyReferencesArguments struct {
	Keys []account.PublicKey `json:"keys"`
}

// KeyReferencesReply - positional: element i answers for key i
type KeyReferencesReply struct {
	References [][]account.AccountId `json:"references"`
}

// KeyReferences - accounts whose records refer to each key
func (a *Account) KeyReferences(arguments *KeyReferencesArguments, reply *KeyReferencesReply) error {

	if err := ratelimit.LimitN(a.Limiter, len(arguments.Keys), maximumKeyCount); nil != err {
		return err
	}

	references, err := a.Engine.GetKeyReferences(arguments.Keys)
	if nil != err {
		return err
	}
	reply.References = references
	return nil
}

// DelegationsArguments - name the account and operation type wanted
type DelegationsArguments struct {
	Account       account.AccountId `json:"account"`
	OperationType uint64            `json:"operationType"`
}

// DelegationsReply - delegations effective right now
type DelegationsReply struct {
	Delegations []authority.CustomAuthority `json:"delegations"`
}

// Delegations - the custom authorities currently open on an account
func (a *Account) Delegations(arguments *DelegationsArguments, reply *DelegationsReply) error {

	if err := ratelimit.Limit(a.Limiter); nil != err {
		return err
	}

	delegations, err := a.Engine.Registry().CustomAuthorities(arguments.Account, arguments.OperationType, time.Now())
	if nil != err {
		return err
	}
	reply.Delegations = delegations
	return nil
}
