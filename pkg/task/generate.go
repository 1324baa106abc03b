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
	"math/big"
)

// Generate returns every interleaving of scripts which keeps the order inside each script.
// Tasks are emitted depth first, trying scripts in ascending index order, so the result
// is stable for the same input.
func Generate(scripts []Script) []*Task {
	total := 0
	for _, script := range scripts {
		total += len(script)
	}

	g := generator{
		scripts: scripts,
		cursors: make([]int, len(scripts)),
		stmts:   make([]*Statement, 0, total),
		total:   total,
	}
	g.permute()
	return g.tasks
}

type generator struct {
	scripts []Script
	// cursors[i] is the next unconsumed statement of scripts[i].
	cursors []int
	stmts   []*Statement
	total   int
	tasks   []*Task
}

func (g *generator) permute() {
	if len(g.stmts) == g.total {
		stmts := make([]*Statement, g.total)
		copy(stmts, g.stmts)
		g.tasks = append(g.tasks, New(len(g.tasks), len(g.scripts), stmts))
		return
	}

	for i, script := range g.scripts {
		cursor := g.cursors[i]
		if cursor >= len(script) {
			continue
		}
		g.stmts = append(g.stmts, script[cursor])
		g.cursors[i]++
		g.permute()
		g.cursors[i]--
		g.stmts = g.stmts[:len(g.stmts)-1]
	}
}

// Count returns the number of tasks Generate produces for scripts of the given lengths,
// that is the multinomial coefficient N!/(n1!*n2!*...*nk!).
func Count(lengths ...int) *big.Int {
	count := big.NewInt(1)
	n := int64(0)
	for _, l := range lengths {
		// C(n+l, l) for each script folded in
		for j := int64(1); j <= int64(l); j++ {
			n++
			count.Mul(count, big.NewInt(n))
			count.Quo(count, big.NewInt(j))
		}
	}
	return count
}

// Lengths returns the length of every script.
func Lengths(scripts []Script) []int {
	lengths := make([]int, 0, len(scripts))
	for _, script := range scripts {
		lengths = append(lengths, len(script))
	}
	return lengths
}
