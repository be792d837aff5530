// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/chain"
	"github.com/bitmark-inc/ledgerauth/directory"
	"github.com/bitmark-inc/ledgerauth/fixtures"
	"github.com/bitmark-inc/ledgerauth/rpc/node"
)

func TestInfo(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	engine, err := authorization.New(chain.Testing, directory.NewMemory())
	assert.Nil(t, err, "engine error")

	n := node.New(
		logger.New(fixtures.LogCategory),
		time.Now().Add(-time.Minute),
		"1.0",
		chain.Testing,
		engine,
	)

	var reply node.InfoReply
	err = n.Info(&node.InfoArguments{}, &reply)
	assert.Nil(t, err, "info error")
	assert.Equal(t, chain.Testing, reply.Chain, "wrong chain")
	assert.Equal(t, "1.0", reply.Version, "wrong version")
	assert.True(t, reply.Testnet, "wrong network flag")
	assert.True(t, reply.Normal, "wrong mode")
	assert.NotEqual(t, "", reply.Uptime, "missing uptime")
}
