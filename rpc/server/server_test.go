// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/chain"
	"github.com/bitmark-inc/ledgerauth/directory"
	"github.com/bitmark-inc/ledgerauth/fixtures"
	"github.com/bitmark-inc/ledgerauth/rpc/server"
)

func TestCreate(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	registry := directory.NewMemory()
	engine, err := authorization.New(chain.Testing, registry)
	assert.Nil(t, err, "engine error")

	s := server.Create(logger.New(fixtures.LogCategory), "1.0", chain.Testing, engine, registry)
	assert.NotNil(t, s, "no server created")
}
