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

package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/pingcap/interleave/pkg/client"
	"github.com/pingcap/interleave/pkg/config"
	"github.com/pingcap/interleave/pkg/executor"
	"github.com/pingcap/interleave/pkg/history"
	"github.com/pingcap/interleave/pkg/task"
)

// SetupClientID is the client id of the connection running setup statements,
// it never collides with a script client.
const SetupClientID = -1

// Stats of a run
type Stats struct {
	// Tasks is the number of tasks which ran to the end
	Tasks      int
	Statements int
	// Failures counts statement errors tolerated with exit-on-fail off
	Failures int
}

// Runner runs every interleaving of the scripts, one after another.
type Runner struct {
	cfg  *config.Config
	exec *executor.Executor

	setup        []string
	setupConnect client.Connector
	setupConn    *client.Conn

	stats Stats
}

// New creates a Runner, recorder may be nil.
func New(cfg *config.Config, pool *client.Pool, recorder *history.Recorder) *Runner {
	opt := executor.DefaultOption()
	opt.ExitOnFail = cfg.Options.ExitOnFail
	return &Runner{
		cfg:  cfg,
		exec: executor.New(pool, recorder, opt),
	}
}

// SetSetup makes the runner execute sqls on a dedicated connection before every task,
// typically to restore the tables the scripts work on.
func (r *Runner) SetSetup(sqls []string, connect client.Connector) {
	r.setup = sqls
	r.setupConnect = connect
}

// Stats returns the stats so far
func (r *Runner) Stats() Stats {
	return r.stats
}

// Run generates all tasks of scripts and executes them in order, round after round.
// The first fatal error stops the run and is returned as is.
func (r *Runner) Run(ctx context.Context, scripts []task.Script) error {
	if len(scripts) == 0 {
		return errors.New("expect at least one SQL script")
	}
	lengths := task.Lengths(scripts)
	log.Info("generating interleavings",
		zap.Ints("script-lengths", lengths),
		zap.Stringer("count", task.Count(lengths...)))
	tasks := task.Generate(scripts)

	rounds := r.cfg.Options.Rounds
	if rounds < 1 {
		rounds = 1
	}
	for round := 0; round < rounds; round++ {
		r.exec.SetRound(round)
		for _, t := range tasks {
			t.Reset()
			if err := r.runSetup(ctx); err != nil {
				return err
			}
			log.Info("running task", zap.Int("round", round), zap.Int("task", t.ID()), zap.Int("statements", t.Len()))
			err := r.exec.Run(ctx, t)
			r.collect()
			if err != nil {
				return err
			}
			r.stats.Tasks++
		}
	}

	log.Info("all tasks done",
		zap.Int("rounds", rounds),
		zap.Int("tasks", r.stats.Tasks),
		zap.Int("statements", r.stats.Statements),
		zap.Int("failures", r.stats.Failures))
	if failures := r.exec.Failures(); failures != nil {
		log.Warn("statements failed during the run", zap.Error(failures))
	}
	return nil
}

func (r *Runner) collect() {
	r.stats.Statements = r.exec.Executed()
	r.stats.Failures = r.exec.FailureCount()
}

func (r *Runner) runSetup(ctx context.Context) error {
	if len(r.setup) == 0 {
		return nil
	}
	if r.setupConn == nil {
		conn, err := r.setupConnect(ctx, SetupClientID)
		if err != nil {
			return &client.ConnectError{ID: SetupClientID, Err: err}
		}
		r.setupConn = conn
	}
	for _, sql := range r.setup {
		log.Debug("executing setup", zap.String("sql", sql))
		if _, err := r.setupConn.Exec(ctx, sql); err != nil {
			return errors.Annotatef(err, "setup %q", sql)
		}
	}
	return nil
}

// Close closes the setup connection if any.
func (r *Runner) Close() error {
	if r.setupConn == nil {
		return nil
	}
	err := r.setupConn.Close()
	r.setupConn = nil
	return err
}

// DryRun writes every task of scripts to w without touching the database.
func DryRun(w io.Writer, scripts []task.Script) error {
	lengths := task.Lengths(scripts)
	if _, err := fmt.Fprintf(w, "%s interleavings of scripts with lengths %v\n", task.Count(lengths...), lengths); err != nil {
		return errors.Trace(err)
	}
	for _, t := range task.Generate(scripts) {
		if _, err := fmt.Fprintln(w, t); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
