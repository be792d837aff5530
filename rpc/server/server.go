// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/authorization"
	"github.com/bitmark-inc/ledgerauth/directory"
	"github.com/bitmark-inc/ledgerauth/fault"
	rpcAccount "github.com/bitmark-inc/ledgerauth/rpc/account"
	"github.com/bitmark-inc/ledgerauth/rpc/node"
	"github.com/bitmark-inc/ledgerauth/rpc/transaction"
)

// Create - a server with every handler registered
func Create(log *logger.L, version string, chainName string, engine *authorization.Engine, registry directory.Directory) *rpc.Server {

	start := time.Now().UTC()

	// set up the fault panic log (logging is available by now)
	fault.Initialise()

	server := rpc.NewServer()

	_ = server.Register(rpcAccount.New(log, engine))
	_ = server.Register(transaction.New(log, engine, registry))
	_ = server.Register(node.New(log, start, version, chainName, engine))

	return server
}
