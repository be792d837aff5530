// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/mr-tron/base58"
)

// ToBase58 - encode a binary buffer as Base58 text
func ToBase58(buffer []byte) string {
	return base58.Encode(buffer)
}

// FromBase58 - decode Base58 text to a binary buffer
//
// an empty buffer indicates a decode failure
func FromBase58(text string) []byte {
	buffer, err := base58.Decode(text)
	if nil != err {
		return []byte{}
	}
	return buffer
}
