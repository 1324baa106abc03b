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

package task

import (
	"fmt"
	"strings"
)

// Statement is a single SQL statement bound to the client which runs it.
type Statement struct {
	// ClientID is the index of the script the statement comes from,
	// and so the pooled connection executing it.
	ClientID int
	SQL      string
}

func (s *Statement) String() string {
	return fmt.Sprintf("[%d] %s", s.ClientID, s.SQL)
}

// Script is the ordered statements of one client.
type Script []*Statement

// NewScript binds sqls to clientID, keeping their order.
func NewScript(clientID int, sqls []string) Script {
	script := make(Script, 0, len(sqls))
	for _, sql := range sqls {
		script = append(script, &Statement{ClientID: clientID, SQL: sql})
	}
	return script
}

// Task is one interleaving of all scripts. It can be consumed once
// with Next and replayed after Reset.
type Task struct {
	id int
	// clientCount is the number of clients needed to run the task.
	clientCount int
	cursor      int
	stmts       []*Statement
}

// New creates a task from an already ordered statement list.
func New(id int, clientCount int, stmts []*Statement) *Task {
	return &Task{
		id:          id,
		clientCount: clientCount,
		stmts:       stmts,
	}
}

// ID returns the generation order of the task.
func (t *Task) ID() int {
	return t.id
}

// ClientCount returns how many clients must be reserved before running the task.
func (t *Task) ClientCount() int {
	return t.clientCount
}

// Len returns the number of statements.
func (t *Task) Len() int {
	return len(t.stmts)
}

// Next returns the statement under the cursor and advances it,
// false is returned once the task is exhausted.
func (t *Task) Next() (*Statement, bool) {
	if t.cursor >= len(t.stmts) {
		return nil, false
	}
	stmt := t.stmts[t.cursor]
	t.cursor++
	return stmt, true
}

// Reset rewinds the cursor so that the task can be replayed.
func (t *Task) Reset() {
	t.cursor = 0
}

// Statements returns a copy of the ordered statements, the cursor is untouched.
func (t *Task) Statements() []*Statement {
	stmts := make([]*Statement, len(t.stmts))
	copy(stmts, t.stmts)
	return stmts
}

func (t *Task) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task %d:", t.id)
	for _, stmt := range t.stmts {
		b.WriteString("\n  ")
		b.WriteString(stmt.String())
	}
	return b.String()
}
