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

package script

import (
	"context"
	"io/ioutil"
	"strings"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/pingcap/parser"
	// value expressions need a driver registered by tidb
	_ "github.com/pingcap/tidb/types/parser_driver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pingcap/interleave/pkg/task"
)

// Parse splits text into statements. The parser only validates and splits,
// each statement keeps the text as written so that clauses and introducers
// reach the server untouched.
func Parse(text string) ([]string, error) {
	stmts, _, err := parser.New().Parse(text, "", "")
	if err != nil {
		return nil, errors.Trace(err)
	}

	sqls := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		sql := trimStmt(stmt.Text())
		if sql == "" {
			continue
		}
		sqls = append(sqls, sql)
	}
	return sqls, nil
}

// trimStmt strips surrounding blanks and statement separators.
func trimStmt(text string) string {
	for {
		trimmed := strings.TrimSpace(text)
		trimmed = strings.TrimPrefix(trimmed, ";")
		trimmed = strings.TrimSuffix(trimmed, ";")
		if trimmed == text {
			return trimmed
		}
		text = trimmed
	}
}

// Load reads and parses the script files, script i is run by client i.
func Load(ctx context.Context, paths []string) ([]task.Script, error) {
	if len(paths) == 0 {
		return nil, errors.New("expect at least one SQL script")
	}

	scripts := make([]task.Script, len(paths))
	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			log.Info("reading SQLs", zap.String("path", path), zap.Int("client", i))
			content, err := ioutil.ReadFile(path)
			if err != nil {
				return errors.Annotatef(err, "read script %s", path)
			}
			sqls, err := Parse(string(content))
			if err != nil {
				return errors.Annotatef(err, "parse script %s", path)
			}
			scripts[i] = task.NewScript(i, sqls)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scripts, nil
}
