// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package directory

import (
	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/ledgerauth/account"
)

// expiring front for account record reads
type dataCache struct {
	cache *cache.Cache
}

func newDataCache() *dataCache {
	return &dataCache{
		cache: cache.New(cacheExpiry, cacheCleanup),
	}
}

func (c *dataCache) get(id account.AccountId) ([]byte, bool) {
	obj, found := c.cache.Get(string(id))
	if !found {
		return nil, false
	}
	return obj.([]byte), true
}

func (c *dataCache) set(id account.AccountId, packed []byte) {
	c.cache.Set(string(id), packed, cache.DefaultExpiration)
}

func (c *dataCache) clear() {
	c.cache.Flush()
}
