// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/ledgerauth/rpc/ratelimit"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerauth/authorization"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Node - type for RPC calls
type Node struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Start   time.Time
	Version string
	Chain   string
	Engine  *authorization.Engine
}

func New(log *logger.L, start time.Time, version string, chainName string, engine *authorization.Engine) *Node {
	return &Node{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:   start,
		Version: version,
		Chain:   chainName,
		Engine:  engine,
	}
}

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - basic node information
type InfoReply struct {
	Chain   string `json:"chain"`
	Normal  bool   `json:"normal"`
	Testnet bool   `json:"testnet"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Info - return some information about this node
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	reply.Chain = node.Chain
	reply.Normal = true
	reply.Testnet = node.Engine.IsTesting()
	reply.Version = node.Version
	reply.Uptime = time.Since(node.Start).String()
	return nil
}
