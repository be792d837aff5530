// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authorization

import (
	"bytes"
	"sort"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/chain"
	"github.com/bitmark-inc/ledgerauth/directory"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/transactionrecord"
)

// Engine - judges transactions against the account registry
//
// stateless apart from its registry reference so a single engine can
// serve concurrent verifications
type Engine struct {
	log      *logger.L
	registry directory.Reader
	chainId  chain.Id
	testnet  bool
}

// New - create an engine bound to one chain
func New(chainName string, registry directory.Reader) (*Engine, error) {
	chainId, err := chain.DeriveId(chainName)
	if nil != err {
		return nil, err
	}
	return &Engine{
		log:      logger.New("authorization"),
		registry: registry,
		chainId:  chainId,
		testnet:  chain.Bitmark != chainName,
	}, nil
}

// ChainId - the chain identifier transactions are digested under
func (engine *Engine) ChainId() chain.Id {
	return engine.chainId
}

// IsTesting - whether keys are interpreted as test network keys
func (engine *Engine) IsTesting() bool {
	return engine.testnet
}

// Registry - the account registry the engine judges against
func (engine *Engine) Registry() directory.Reader {
	return engine.registry
}

// adapt the registry to the recursive evaluator: an account referenced
// from inside any authority contributes through its active authority
type activeResolver struct {
	registry directory.Reader
}

func (r activeResolver) ActiveAuthority(id account.AccountId) (authority.Authority, error) {
	record, err := r.registry.Account(id)
	if nil != err {
		return authority.Authority{}, err
	}
	return record.Active, nil
}

// RecoverSigners - the deduplicated key set behind a transaction's signatures
//
// a broken signature does not empty the result; the first recovery
// error is returned alongside whatever keys did recover
func (engine *Engine) RecoverSigners(tx *transactionrecord.Transaction) (authority.KeySet, error) {
	return tx.RecoverSigners(engine.chainId, engine.testnet)
}

// GetTransactionSigners - recovered signer keys in a stable order
func (engine *Engine) GetTransactionSigners(tx *transactionrecord.Transaction) ([]account.PublicKey, error) {
	signers, err := engine.RecoverSigners(tx)
	if nil == signers {
		return nil, err
	}

	keys := make([]account.PublicKey, 0, len(signers))
	for key := range signers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i int, j int) bool {
		return bytes.Compare(keys[i].Key[:], keys[j].Key[:]) < 0
	})
	return keys, err
}

// GetKeyReferences - for each key, the accounts referring to it
//
// results are positional: element i answers for key i
func (engine *Engine) GetKeyReferences(keys []account.PublicKey) ([][]account.AccountId, error) {
	references := make([][]account.AccountId, len(keys))
	for i, key := range keys {
		accounts, err := engine.registry.KeyReferences(key)
		if nil != err {
			return nil, err
		}
		references[i] = accounts
	}
	return references, nil
}

// Coverage - which alternative satisfied an operation
type Coverage int

const (
	CoverageNone       = Coverage(iota) // nothing did
	CoverageActive     = Coverage(iota) // the account's own active authority
	CoverageOwner      = Coverage(iota) // the account's owner authority
	CoverageDelegation = Coverage(iota) // an effective custom authority
)

// Verdict - the audit record for one operation
type Verdict struct {
	Account      account.AccountId `json:"account"`
	Coverage     Coverage          `json:"coverage"`
	DelegationId uint64            `json:"delegationId,omitempty"` // set for CoverageDelegation
}

// Judge - evaluate every operation of a signed transaction
//
// element i answers for operation i; a structural problem (expired,
// empty, unknown account) aborts with no verdict list
func (engine *Engine) Judge(tx *transactionrecord.Transaction, at time.Time) ([]Verdict, error) {
	if 0 == len(tx.Operations) {
		return nil, fault.ErrNoOperations
	}
	if at.Unix() > tx.Expiration {
		return nil, fault.ErrTransactionExpired
	}

	signers, err := engine.RecoverSigners(tx)
	if nil == signers {
		return nil, err
	}
	if nil != err {
		engine.log.Warnf("ignoring unrecoverable signature: %s", err)
	}

	resolver := activeResolver{registry: engine.registry}

	verdicts := make([]Verdict, 0, len(tx.Operations))
	for _, op := range tx.Operations {
		id := op.AuthorizingAccount()
		record, err := engine.registry.Account(id)
		if nil != err {
			return nil, err
		}

		verdict := Verdict{Account: id}

		switch {
		case transactionrecord.OwnerLevel == op.RequiredLevel():
			// only the owner authority will do
			if authority.IsAuthorized(resolver, signers, record.Owner, authority.MaximumRecursionDepth) {
				verdict.Coverage = CoverageOwner
			}

		case authority.IsAuthorized(resolver, signers, record.Active, authority.MaximumRecursionDepth):
			verdict.Coverage = CoverageActive

		// the owner authority always covers an active requirement
		case authority.IsAuthorized(resolver, signers, record.Owner, authority.MaximumRecursionDepth):
			verdict.Coverage = CoverageOwner

		default:
			delegationId, ok, err := engine.delegationCovers(signers, resolver, op, at)
			if nil != err {
				return nil, err
			}
			if ok {
				verdict.Coverage = CoverageDelegation
				verdict.DelegationId = delegationId
			}
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts, nil
}

// IsTransactionAuthorized - judge a signed transaction at an instant
//
// nil means every operation is covered by its account's own policy or
// by an effective matching delegation; the first uncovered operation
// is reported as a fault.UnsatisfiedAuthority
func (engine *Engine) IsTransactionAuthorized(tx *transactionrecord.Transaction, at time.Time) error {
	verdicts, err := engine.Judge(tx, at)
	if nil != err {
		return err
	}
	for i, verdict := range verdicts {
		if CoverageNone == verdict.Coverage {
			return fault.UnsatisfiedAuthority{
				Account:        string(verdict.Account),
				OperationIndex: i,
			}
		}
	}
	return nil
}

// try every effective delegation for the operation's type; one whose
// authority is satisfied and whose restrictions all match is enough
func (engine *Engine) delegationCovers(signers authority.KeySet, resolver authority.ActiveResolver, op transactionrecord.Operation, at time.Time) (uint64, bool, error) {
	delegations, err := engine.registry.CustomAuthorities(op.AuthorizingAccount(), uint64(op.Tag()), at)
	if nil != err {
		return 0, false, err
	}

	for _, delegation := range delegations {
		if !authority.IsAuthorized(resolver, signers, delegation.Auth, authority.MaximumRecursionDepth) {
			continue
		}
		matched, err := authority.MatchRestrictions(op, delegation.Restrictions)
		if nil != err {
			engine.log.Warnf("delegation %d on %s: restriction error: %s", delegation.Id, delegation.Account, err)
			continue
		}
		if matched {
			return delegation.Id, true, nil
		}
	}
	return 0, false, nil
}
