// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/account"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// Key - deterministic key material so tests can share identities
//
// never use outside tests
func Key(seed string) *account.PrivateKey {
	raw := sha256.Sum256([]byte(seed))
	k, err := account.PrivateKeyFromBytes(true, raw[:])
	if nil != err {
		panic(fmt.Sprintf("fixtures: key from seed %q: %s", seed, err))
	}
	return k
}

func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
