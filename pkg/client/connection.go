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
	"database/sql"
	"fmt"

	// register the mysql driver
	_ "github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/pingcap/interleave/util"
)

// Outcome describes a successfully executed statement.
type Outcome struct {
	RowsAffected int64
	LastInsertID int64
}

func (o Outcome) String() string {
	return fmt.Sprintf("rows affected: %d, last insert id: %d", o.RowsAffected, o.LastInsertID)
}

// Conn owns one database session. All statements of a client go through the
// same session, so transactions opened by a script stay open between statements.
type Conn struct {
	id   int
	db   *sql.DB
	conn *sql.Conn
}

// Open connects to dsn and pins a session for client id.
func Open(ctx context.Context, id int, dsn string) (*Conn, error) {
	log.Debug("connecting", zap.Int("client", id), zap.String("dsn", util.RedactDSN(dsn)))
	db, err := util.OpenDB(dsn, 1)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Trace(err)
	}
	c, err := NewConn(ctx, id, db)
	if err != nil {
		db.Close()
		return nil, errors.Trace(err)
	}
	return c, nil
}

// NewConn pins a session of db for client id.
func NewConn(ctx context.Context, id int, db *sql.DB) (*Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Conn{id: id, db: db, conn: conn}, nil
}

// ID returns the client id the connection serves.
func (c *Conn) ID() int {
	return c.id
}

// Exec runs a single statement.
func (c *Conn) Exec(ctx context.Context, stmt string) (Outcome, error) {
	res, err := c.conn.ExecContext(ctx, stmt)
	if err != nil {
		return Outcome{}, err
	}
	var outcome Outcome
	// not every driver result carries these, a missing value is not a statement failure
	outcome.RowsAffected, _ = res.RowsAffected()
	outcome.LastInsertID, _ = res.LastInsertId()
	return outcome, nil
}

// Close releases the session and the underlying handle.
func (c *Conn) Close() error {
	err := c.conn.Close()
	if cerr := c.db.Close(); err == nil {
		err = cerr
	}
	return errors.Trace(err)
}
