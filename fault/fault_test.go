// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/bitmark-inc/ledgerauth/fault"
)

var (
	ErrExistsOne   = fault.ExistsError("exists one")
	ErrExistsTwo   = fault.ExistsError("exists two")
	ErrInvalidOne  = fault.InvalidError("invalid one")
	ErrInvalidTwo  = fault.InvalidError("invalid two")
	ErrLengthOne   = fault.LengthError("length one")
	ErrLengthTwo   = fault.LengthError("length two")
	ErrNotFoundOne = fault.NotFoundError("not found one")
	ErrNotFoundTwo = fault.NotFoundError("not found two")
	ErrProcessOne  = fault.ProcessError("process one")
	ErrProcessTwo  = fault.ProcessError("process two")
)

// test that the various error classes can be distinguished
func TestErrorClasses(t *testing.T) {
	errorList := []struct {
		err      error
		exists   bool
		invalid  bool
		length   bool
		notFound bool
		process  bool
	}{
		{ErrExistsOne, true, false, false, false, false},
		{ErrExistsTwo, true, false, false, false, false},
		{ErrInvalidOne, false, true, false, false, false},
		{ErrInvalidTwo, false, true, false, false, false},
		{ErrLengthOne, false, false, true, false, false},
		{ErrLengthTwo, false, false, true, false, false},
		{ErrNotFoundOne, false, false, false, true, false},
		{ErrNotFoundTwo, false, false, false, true, false},
		{ErrProcessOne, false, false, false, false, true},
		{ErrProcessTwo, false, false, false, false, true},
		{fault.ErrWrongNetworkForPublicKey, false, true, false, false, false},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrLength(err) != e.length {
			t.Errorf("%d: expected 'length' == %v for err = %v", i, e.length, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
	}
}

// test the unsatisfied authority error formatting and detection
func TestUnsatisfiedAuthority(t *testing.T) {
	err := fault.UnsatisfiedAuthority{
		Account:        "alice",
		OperationIndex: 2,
	}
	expected := `unsatisfied authority for account: "alice" at operation: 2`
	if err.Error() != expected {
		t.Errorf("error: %q  expected: %q", err.Error(), expected)
	}
	if !fault.IsErrUnsatisfiedAuthority(err) {
		t.Errorf("expected unsatisfied authority detection for: %v", err)
	}
	if fault.IsErrUnsatisfiedAuthority(fault.ErrInvalidAuthority) {
		t.Errorf("unexpected unsatisfied authority detection for: %v", fault.ErrInvalidAuthority)
	}
}

// the last-attempt log must work before any channel is configured
func TestCriticalfWithoutChannel(t *testing.T) {
	fault.Criticalf("no channel yet: %d", 1)
}

func TestPanicf(t *testing.T) {
	defer func() {
		if r := recover(); nil == r {
			t.Errorf("expected a panic")
		}
	}()
	fault.Panicf("damaged record: %d", 7)
}
