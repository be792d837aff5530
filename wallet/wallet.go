// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/fault"
	"github.com/bitmark-inc/ledgerauth/transactionrecord"
)

// Broadcaster - where a fully signed transaction goes
type Broadcaster interface {
	Broadcast(tx *transactionrecord.Transaction) error
}

// Wallet - a key ring that can complete transactions
//
// holds private keys in memory only; signing figures out which of the
// held keys could contribute to a transaction's requirements and
// attaches exactly one signature per useful key
type Wallet struct {
	sync.RWMutex
	log    *logger.L
	engine *authorization.Engine
	keys   map[account.PublicKey]*account.PrivateKey
}

// New - an empty wallet bound to one engine
func New(engine *authorization.Engine) *Wallet {
	return &Wallet{
		log:    logger.New("wallet"),
		engine: engine,
		keys:   make(map[account.PublicKey]*account.PrivateKey),
	}
}

// AddKey - put a private key on the ring
func (w *Wallet) AddKey(key *account.PrivateKey) {
	w.Lock()
	defer w.Unlock()
	w.keys[key.PublicKey()] = key
}

// ImportKey - put a Base58 encoded private key on the ring
func (w *Wallet) ImportKey(encoded string) (account.PublicKey, error) {
	key, err := account.PrivateKeyFromBase58(encoded)
	if nil != err {
		return account.PublicKey{}, err
	}
	if key.IsTesting() != w.engine.IsTesting() {
		return account.PublicKey{}, fault.ErrWrongNetworkForPublicKey
	}
	w.AddKey(key)
	return key.PublicKey(), nil
}

// NewKey - generate a key and put it on the ring
func (w *Wallet) NewKey() (*account.PrivateKey, error) {
	key, err := account.NewPrivateKey(w.engine.IsTesting())
	if nil != err {
		return nil, err
	}
	w.AddKey(key)
	return key, nil
}

// RemoveKey - take a key off the ring
func (w *Wallet) RemoveKey(publicKey account.PublicKey) bool {
	w.Lock()
	defer w.Unlock()
	_, present := w.keys[publicKey]
	delete(w.keys, publicKey)
	return present
}

// Has - whether the ring holds the private half of a key
func (w *Wallet) Has(publicKey account.PublicKey) bool {
	w.RLock()
	defer w.RUnlock()
	_, present := w.keys[publicKey]
	return present
}

// Keys - the public halves of the ring in a stable order
func (w *Wallet) Keys() []account.PublicKey {
	w.RLock()
	defer w.RUnlock()

	keys := make([]account.PublicKey, 0, len(w.keys))
	for key := range w.keys {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i int, j int) bool {
		return bytes.Compare(keys[i].Key[:], keys[j].Key[:]) < 0
	})
	return keys
}

// MyAccounts - accounts whose records refer to any held key
func (w *Wallet) MyAccounts() ([]account.AccountId, error) {
	references, err := w.engine.GetKeyReferences(w.Keys())
	if nil != err {
		return nil, err
	}

	seen := make(map[account.AccountId]struct{})
	accounts := []account.AccountId(nil)
	for _, list := range references {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			accounts = append(accounts, id)
		}
	}
	sort.Slice(accounts, func(i int, j int) bool {
		return accounts[i] < accounts[j]
	})
	return accounts, nil
}

// Sign - attach every useful signature and judge the result
//
// the set of potentially useful ring keys is the direct key members of
// every open alternative plus, one level down, the direct active key
// members of referenced accounts; deeper chains need the intermediate
// accounts to countersign for themselves. extraKeys are one-shot keys
// used without joining the ring, and every extra key signs whether or
// not anything requires it.
//
// nil means the transaction left here fully authorized; broadcast, when
// a broadcaster is supplied, only happens in that case
func (w *Wallet) Sign(tx *transactionrecord.Transaction, at time.Time, extraKeys []*account.PrivateKey, broadcaster Broadcaster) error {
	candidates, err := w.candidateKeys(tx, at)
	if nil != err {
		return err
	}

	digest, err := tx.Digest(w.engine.ChainId())
	if nil != err {
		return err
	}

	signed := authority.NewKeySet()
	sign := func(key *account.PrivateKey) error {
		if signed.Add(key.PublicKey()) {
			return nil
		}
		signature, err := key.Sign(digest[:])
		if nil != err {
			return err
		}
		return tx.AddSignature(w.engine.ChainId(), w.engine.IsTesting(), signature)
	}

	for _, key := range extraKeys {
		if err := sign(key); nil != err {
			return err
		}
	}

	ring := make(map[account.PublicKey]*account.PrivateKey)
	w.RLock()
	for publicKey, key := range w.keys {
		ring[publicKey] = key
	}
	w.RUnlock()

	for candidate := range candidates {
		key, held := ring[candidate]
		if !held {
			continue
		}
		if err := sign(key); nil != err {
			return err
		}
	}

	if err := w.engine.IsTransactionAuthorized(tx, at); nil != err {
		return err
	}
	if nil != broadcaster {
		return broadcaster.Broadcast(tx)
	}
	return nil
}

// the union of keys that could move any requirement forward
func (w *Wallet) candidateKeys(tx *transactionrecord.Transaction, at time.Time) (authority.KeySet, error) {
	requirements, err := w.engine.RequiredAuthorities(tx, at)
	if nil != err {
		return nil, err
	}

	candidates := authority.NewKeySet()
	for _, requirement := range requirements {
		for _, alternative := range requirement.Alternatives {
			w.collectKeys(candidates, alternative)
		}
		for _, delegation := range requirement.Delegations {
			w.collectKeys(candidates, delegation.Auth)
		}
	}
	return candidates, nil
}

// direct key members plus one level of account indirection
func (w *Wallet) collectKeys(candidates authority.KeySet, auth authority.Authority) {
	for _, member := range auth.KeyAuths {
		candidates.Add(member.Key)
	}
	for _, member := range auth.AccountAuths {
		record, err := w.engine.Registry().Account(member.Account)
		if nil != err {
			w.log.Warnf("skipping unresolvable account member: %s", member.Account)
			continue
		}
		for _, indirect := range record.Active.KeyAuths {
			candidates.Add(indirect.Key)
		}
	}
}
