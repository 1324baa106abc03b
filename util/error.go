// Copyright 2020 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
)

// MySQL error numbers worth telling apart in statement outcomes.
const (
	ErrNoDupEntry        = 1062
	ErrNoLockWaitTimeout = 1205
	ErrNoDeadlock        = 1213
	ErrNoTableNotExists  = 1146
	ErrNoWriteConflict   = 9007
)

// ErrorClass names a category of statement error.
type ErrorClass string

// Error classes
const (
	ErrClassNone            ErrorClass = ""
	ErrClassDeadlock        ErrorClass = "deadlock"
	ErrClassLockWaitTimeout ErrorClass = "lock-wait-timeout"
	ErrClassWriteConflict   ErrorClass = "write-conflict"
	ErrClassDupEntry        ErrorClass = "duplicate-entry"
	ErrClassTableNotExists  ErrorClass = "table-not-exists"
	ErrClassMySQL           ErrorClass = "mysql"
	ErrClassOther           ErrorClass = "other"
)

// ClassifyError tells which kind of failure err is.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrClassNone
	}
	e, ok := originError(err).(*mysql.MySQLError)
	if !ok {
		return ErrClassOther
	}
	switch e.Number {
	case ErrNoDeadlock:
		return ErrClassDeadlock
	case ErrNoLockWaitTimeout:
		return ErrClassLockWaitTimeout
	case ErrNoWriteConflict:
		return ErrClassWriteConflict
	case ErrNoDupEntry:
		return ErrClassDupEntry
	case ErrNoTableNotExists:
		return ErrClassTableNotExists
	default:
		return ErrClassMySQL
	}
}

// originError return original error
func originError(err error) error {
	for {
		e := errors.Cause(err)
		if e == err {
			break
		}
		err = e
	}
	return err
}
