// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package directory

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/account"
	"github.com/bitmark-inc/ledgerauth/authority"
	"github.com/bitmark-inc/ledgerauth/fault"
)

// key prefixes
//
// account ids are printable ASCII so a NUL byte separates an id from
// whatever follows it inside a composite key
const (
	accountPrefix   = byte('A') // 'A' id                      -> packed AccountRecord
	customPrefix    = byte('C') // 'C' id NUL big-endian-64-id -> packed CustomAuthority
	referencePrefix = byte('K') // 'K' key-bytes NUL id        -> empty
)

// counter for assigning custom authority identifiers
var nextIdKey = []byte{0x00, 'N', 'E', 'X', 'T'}

// read cache tuning
const (
	cacheExpiry  = 2 * time.Minute
	cacheCleanup = 1 * time.Minute
)

// Store - a registry backed by a single LevelDB database
//
// a small expiring cache sits in front of account reads since policy
// evaluation fetches the same handful of records over and over
type Store struct {
	sync.Mutex // only guards identifier assignment

	database *leveldb.DB
	cache    *dataCache
	testnet  bool
	log      *logger.L
}

// NewStore - open (creating if necessary) the registry database
func NewStore(databasePath string, testnet bool) (*Store, error) {
	db, err := leveldb.OpenFile(databasePath, nil)
	if nil != err {
		return nil, err
	}
	return newStore(db, testnet), nil
}

// NewMemoryStore - a registry on a throwaway in-process database
func NewMemoryStore(testnet bool) (*Store, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	return newStore(db, testnet), nil
}

func newStore(db *leveldb.DB, testnet bool) *Store {
	return &Store{
		database: db,
		cache:    newDataCache(),
		testnet:  testnet,
		log:      logger.New("directory"),
	}
}

// Close - flush the cache and close the database
func (store *Store) Close() error {
	store.cache.clear()
	return store.database.Close()
}

func accountKey(id account.AccountId) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, accountPrefix)
	return append(key, id...)
}

func customKey(id account.AccountId, authorityId uint64) []byte {
	key := make([]byte, 0, 1+len(id)+1+8)
	key = append(key, customPrefix)
	key = append(key, id...)
	key = append(key, 0x00)
	suffix := make([]byte, 8)
	binary.BigEndian.PutUint64(suffix, authorityId)
	return append(key, suffix...)
}

func referenceKey(publicKey account.PublicKey, id account.AccountId) []byte {
	keyBytes := publicKey.Bytes()
	key := make([]byte, 0, 1+len(keyBytes)+1+len(id))
	key = append(key, referencePrefix)
	key = append(key, keyBytes...)
	key = append(key, 0x00)
	return append(key, id...)
}

// Account - fetch one account record
func (store *Store) Account(id account.AccountId) (*AccountRecord, error) {
	if packed, ok := store.cache.get(id); ok {
		return store.unpackStored(id, packed)
	}

	packed, err := store.database.Get(accountKey(id), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrUnknownAccountReference
	}
	if nil != err {
		return nil, err
	}

	store.cache.set(id, packed)
	return store.unpackStored(id, packed)
}

// a stored record that will not unpack means the database is damaged
func (store *Store) unpackStored(id account.AccountId, packed []byte) (*AccountRecord, error) {
	record, err := UnpackAccountRecord(packed, store.testnet)
	if nil != err {
		fault.Panicf("directory: corrupt account record for: %s  error: %s", id, err)
	}
	return record, nil
}

// SetAccount - create or replace one account record
//
// the key reference index is rebuilt for the account in the same
// batch so a crash can never leave it pointing at stale keys
func (store *Store) SetAccount(record AccountRecord) error {
	if err := record.IsValid(); nil != err {
		return err
	}

	batch := leveldb.Batch{}

	previous, err := store.Account(record.Id)
	if nil == err {
		for _, key := range previous.Keys() {
			batch.Delete(referenceKey(key, record.Id))
		}
	} else if fault.ErrUnknownAccountReference != err {
		return err
	}

	packed := record.Pack()
	batch.Put(accountKey(record.Id), packed)
	for _, key := range record.Keys() {
		batch.Put(referenceKey(key, record.Id), []byte{})
	}

	if err := store.database.Write(&batch, nil); nil != err {
		return err
	}
	store.cache.set(record.Id, packed)
	store.log.Debugf("stored account: %s", record.Id)
	return nil
}

// CustomAuthorities - the delegations effective for one operation type
func (store *Store) CustomAuthorities(id account.AccountId, operationType uint64, at time.Time) ([]authority.CustomAuthority, error) {
	if _, err := store.Account(id); nil != err {
		return nil, err
	}

	prefix := make([]byte, 0, 1+len(id)+1)
	prefix = append(prefix, customPrefix)
	prefix = append(prefix, id...)
	prefix = append(prefix, 0x00)

	matched := []authority.CustomAuthority(nil)
	iterator := store.database.NewIterator(ldb_util.BytesPrefix(prefix), nil)
	defer iterator.Release()
	for iterator.Next() {
		item, _, err := authority.UnpackCustomAuthority(iterator.Value(), store.testnet)
		if nil != err {
			fault.Panicf("directory: corrupt custom authority record for: %s  error: %s", id, err)
		}
		if item.OperationType == operationType && item.EffectiveAt(at) {
			matched = append(matched, item)
		}
	}
	if err := iterator.Error(); nil != err {
		return nil, err
	}
	return matched, nil
}

// CustomAuthority - fetch one delegation regardless of effectiveness
func (store *Store) CustomAuthority(id account.AccountId, authorityId uint64) (*authority.CustomAuthority, error) {
	packed, err := store.database.Get(customKey(id, authorityId), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrCustomAuthorityNotFound
	}
	if nil != err {
		return nil, err
	}
	item, _, err := authority.UnpackCustomAuthority(packed, store.testnet)
	if nil != err {
		fault.Panicf("directory: corrupt custom authority record for: %s  error: %s", id, err)
	}
	return &item, nil
}

// CreateCustomAuthority - store a delegation, assigning its identifier
func (store *Store) CreateCustomAuthority(auth authority.CustomAuthority) (uint64, error) {
	if err := auth.IsValid(); nil != err {
		return 0, err
	}
	if _, err := store.Account(auth.Account); nil != err {
		return 0, err
	}

	store.Lock()
	defer store.Unlock()

	nextId := uint64(1)
	counter, err := store.database.Get(nextIdKey, nil)
	if nil == err {
		nextId = binary.BigEndian.Uint64(counter)
	} else if leveldb.ErrNotFound != err {
		return 0, err
	}

	auth.Id = nextId

	counter = make([]byte, 8)
	binary.BigEndian.PutUint64(counter, nextId+1)

	batch := leveldb.Batch{}
	batch.Put(customKey(auth.Account, auth.Id), auth.Pack())
	batch.Put(nextIdKey, counter)
	if err := store.database.Write(&batch, nil); nil != err {
		return 0, err
	}
	return auth.Id, nil
}

// UpdateCustomAuthority - replace a stored delegation
func (store *Store) UpdateCustomAuthority(auth authority.CustomAuthority) error {
	if err := auth.IsValid(); nil != err {
		return err
	}

	key := customKey(auth.Account, auth.Id)
	if _, err := store.database.Get(key, nil); nil != err {
		if leveldb.ErrNotFound == err {
			return fault.ErrCustomAuthorityNotFound
		}
		return err
	}
	return store.database.Put(key, auth.Pack(), nil)
}

// DeleteCustomAuthority - remove a stored delegation
func (store *Store) DeleteCustomAuthority(id account.AccountId, authorityId uint64) error {
	key := customKey(id, authorityId)
	if _, err := store.database.Get(key, nil); nil != err {
		if leveldb.ErrNotFound == err {
			return fault.ErrCustomAuthorityNotFound
		}
		return err
	}
	return store.database.Delete(key, nil)
}

// KeyReferences - accounts whose records refer to a public key
//
// served from the reference index, already in id order since ids are
// the key suffix
func (store *Store) KeyReferences(publicKey account.PublicKey) ([]account.AccountId, error) {
	keyBytes := publicKey.Bytes()
	prefix := make([]byte, 0, 1+len(keyBytes)+1)
	prefix = append(prefix, referencePrefix)
	prefix = append(prefix, keyBytes...)
	prefix = append(prefix, 0x00)

	matched := []account.AccountId(nil)
	iterator := store.database.NewIterator(ldb_util.BytesPrefix(prefix), nil)
	defer iterator.Release()
	for iterator.Next() {
		matched = append(matched, account.AccountId(iterator.Key()[len(prefix):]))
	}
	if err := iterator.Error(); nil != err {
		return nil, err
	}
	return matched, nil
}
