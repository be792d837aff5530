// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAccountIdTooLong         = LengthError("account id too long")
	ErrAlreadyInitialised       = ExistsError("already initialised")
	ErrCannotDecodeKey          = InvalidError("cannot decode key")
	ErrChecksumMismatch         = ProcessError("checksum mismatch")
	ErrCustomAuthorityNotFound  = NotFoundError("custom authority not found")
	ErrInvalidAccountId         = InvalidError("invalid account id")
	ErrInvalidCount             = InvalidError("invalid count")
	ErrFieldIndexOutOfRange     = InvalidError("field index out of range")
	ErrInvalidDigestLength      = LengthError("invalid digest length")
	ErrInvalidAuthority         = InvalidError("invalid authority")
	ErrInvalidChain             = InvalidError("invalid chain")
	ErrInvalidKeyLength         = InvalidError("invalid key length")
	ErrInvalidKeyType           = InvalidError("invalid key type")
	ErrInvalidLoggerChannel     = InvalidError("invalid logger channel")
	ErrInvalidSignatureEncoding = InvalidError("invalid signature encoding")
	ErrInvalidStructPack        = InvalidError("invalid struct pack")
	ErrInvalidTimestamp         = InvalidError("invalid timestamp")
	ErrKeyRecoveryFailure       = ProcessError("key recovery failure")
	ErrMemoTooLong              = LengthError("memo too long")
	ErrNoOperations             = InvalidError("no operations")
	ErrNotAuthorityPack         = InvalidError("not authority pack")
	ErrNotPrivateKey            = InvalidError("not private key")
	ErrNotPublicKey             = InvalidError("not public key")
	ErrNotTransactionPack       = InvalidError("not transaction pack")
	ErrRateLimiting             = ProcessError("rate limiting active")
	ErrRestrictionTypeMismatch  = InvalidError("restriction type mismatch")
	ErrTooManySignatures        = LengthError("too many signatures")
	ErrTransactionExpired       = InvalidError("transaction expired")
	ErrUnknownAccountReference  = NotFoundError("unknown account reference")
	ErrWrongNetworkForPublicKey = InvalidError("wrong network for public key")
)

// UnsatisfiedAuthority - terminal authorization decision
//
// names the first operation whose required authority was not met so a
// caller can distinguish "get more signers" from a structural failure
type UnsatisfiedAuthority struct {
	Account        string
	OperationIndex int
}

// the error interface method
func (e UnsatisfiedAuthority) Error() string {
	return fmt.Sprintf("unsatisfied authority for account: %q at operation: %d", e.Account, e.OperationIndex)
}

// determine if an error is an authorization policy failure
func IsErrUnsatisfiedAuthority(e error) bool { _, ok := e.(UnsatisfiedAuthority); return ok }

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
