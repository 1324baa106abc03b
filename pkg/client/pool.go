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

package client

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pingcap/errors"
)

// ErrInsufficientClients is returned by Get when the client id has no connection.
// Reaching it means tasks and reservations disagree.
var ErrInsufficientClients = errors.New("insufficient clients")

// ConnectError is returned when a pooled connection can not be established.
type ConnectError struct {
	ID  int
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect client %d: %v", e.ID, e.Err)
}

// Cause returns the underlying error.
func (e *ConnectError) Cause() error {
	return e.Err
}

// Unwrap returns the underlying error.
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Connector establishes the connection of client id.
type Connector func(ctx context.Context, id int) (*Conn, error)

// DSNConnector connects every client to dsn.
func DSNConnector(dsn string) Connector {
	return func(ctx context.Context, id int) (*Conn, error) {
		return Open(ctx, id, dsn)
	}
}

// Pool holds one connection per client id. It only grows.
type Pool struct {
	connect Connector
	conns   []*Conn
}

// NewPool creates an empty pool connecting clients to dsn.
func NewPool(dsn string) *Pool {
	return NewPoolWithConnector(DSNConnector(dsn))
}

// NewPoolWithConnector creates an empty pool using connect to establish connections.
func NewPoolWithConnector(connect Connector) *Pool {
	return &Pool{connect: connect}
}

// Len returns the number of connections.
func (p *Pool) Len() int {
	return len(p.conns)
}

// Reserve makes sure clients 0..need-1 are connected. Connections made before
// a failure are kept.
func (p *Pool) Reserve(ctx context.Context, need int) error {
	for i := len(p.conns); i < need; i++ {
		conn, err := p.connect(ctx, i)
		if err != nil {
			return &ConnectError{ID: i, Err: err}
		}
		p.conns = append(p.conns, conn)
	}
	return nil
}

// Get returns the connection of client id.
func (p *Pool) Get(id int) (*Conn, error) {
	if id < 0 || id >= len(p.conns) {
		return nil, errors.Annotatef(ErrInsufficientClients, "expect client %d, but only has %d", id, len(p.conns))
	}
	return p.conns[id], nil
}

// Close closes every connection. The pool must not be used afterwards.
func (p *Pool) Close() error {
	var result *multierror.Error
	for _, conn := range p.conns {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	p.conns = nil
	return result.ErrorOrNil()
}
