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

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/pingcap/interleave/pkg/client"
	"github.com/pingcap/interleave/pkg/history"
	"github.com/pingcap/interleave/pkg/task"
	"github.com/pingcap/interleave/util"
)

// StatementError is a failed statement of a task.
type StatementError struct {
	TaskID   int
	Index    int
	ClientID int
	SQL      string
	Err      error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s execute %q: %v", logTag(e.TaskID, e.Index, e.ClientID), e.SQL, e.Err)
}

// Cause returns the underlying error.
func (e *StatementError) Cause() error {
	return e.Err
}

// Unwrap returns the underlying error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// Executor runs tasks on a client pool, one statement at a time.
type Executor struct {
	pool     *client.Pool
	recorder *history.Recorder
	opt      *Option

	executed int
	failures *multierror.Error
}

// New creates Executor, recorder may be nil.
func New(pool *client.Pool, recorder *history.Recorder, opt *Option) *Executor {
	if opt == nil {
		opt = DefaultOption()
	}
	return &Executor{
		pool:     pool,
		recorder: recorder,
		opt:      opt.Clone(),
	}
}

// SetRound changes the round stamped on history records.
func (e *Executor) SetRound(round int) {
	e.opt.Round = round
}

// Executed returns the number of statements sent so far, failed ones included.
func (e *Executor) Executed() int {
	return e.executed
}

// Failures returns the statement errors which did not stop the run, or nil.
func (e *Executor) Failures() error {
	return e.failures.ErrorOrNil()
}

// FailureCount returns the number of statement errors which did not stop the run.
func (e *Executor) FailureCount() int {
	if e.failures == nil {
		return 0
	}
	return len(e.failures.Errors)
}

// Run executes the statements of t in order. Clients are connected on demand.
// A connect error is always returned, a statement error only when ExitOnFail is set.
func (e *Executor) Run(ctx context.Context, t *task.Task) error {
	if err := e.pool.Reserve(ctx, t.ClientCount()); err != nil {
		log.Error("reserve clients failed", zap.Int("task", t.ID()), zap.Int("need", t.ClientCount()), zap.Error(err))
		return err
	}

	for i := 0; ; i++ {
		stmt, ok := t.Next()
		if !ok {
			break
		}
		conn, err := e.pool.Get(stmt.ClientID)
		if err != nil {
			log.Panic("task refers to a client which is not reserved",
				zap.Int("task", t.ID()),
				zap.Int("client", stmt.ClientID),
				zap.Int("reserved", t.ClientCount()),
				zap.Error(err))
		}

		tag := logTag(t.ID(), i, stmt.ClientID)
		log.Debug("executing", zap.String("tag", tag), zap.String("sql", stmt.SQL))
		start := time.Now()
		outcome, err := conn.Exec(ctx, stmt.SQL)
		duration := time.Since(start)
		e.executed++

		rec := history.Record{
			Round:    e.opt.Round,
			TaskID:   t.ID(),
			Index:    i,
			ClientID: stmt.ClientID,
			SQL:      stmt.SQL,
			Duration: duration,
		}
		if err == nil {
			log.Debug("done", zap.String("tag", tag), zap.Stringer("outcome", outcome), zap.Duration("duration", duration))
			rec.Success = true
			rec.RowsAffected = outcome.RowsAffected
			if err := e.recorder.Record(rec); err != nil {
				return errors.Annotate(err, "record history")
			}
			continue
		}

		class := util.ClassifyError(err)
		log.Error("error while executing",
			zap.String("tag", tag),
			zap.Int("task", t.ID()),
			zap.Int("index", i),
			zap.Int("client", stmt.ClientID),
			zap.String("sql", stmt.SQL),
			zap.String("class", string(class)),
			zap.Error(err))
		rec.Error = err.Error()
		rec.ErrorClass = string(class)
		if rerr := e.recorder.Record(rec); rerr != nil {
			return errors.Annotate(rerr, "record history")
		}

		stmtErr := &StatementError{
			TaskID:   t.ID(),
			Index:    i,
			ClientID: stmt.ClientID,
			SQL:      stmt.SQL,
			Err:      err,
		}
		if e.opt.ExitOnFail {
			return stmtErr
		}
		e.failures = multierror.Append(e.failures, stmtErr)
	}

	return nil
}

func logTag(taskID, index, clientID int) string {
	return fmt.Sprintf("[Task %d,%d][Cli %d]", taskID, index, clientID)
}
