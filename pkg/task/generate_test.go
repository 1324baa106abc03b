package task

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScripts(scripts ...[]string) []Script {
	result := make([]Script, 0, len(scripts))
	for i, sqls := range scripts {
		result = append(result, NewScript(i, sqls))
	}
	return result
}

func sqlsOf(stmts []*Statement) []string {
	var sqls []string
	for _, stmt := range stmts {
		sqls = append(sqls, stmt.SQL)
	}
	return sqls
}

func TestGenerateTwoScripts(t *testing.T) {
	scripts := newScripts([]string{"A1", "A2"}, []string{"B1"})
	tasks := Generate(scripts)

	require.Len(t, tasks, 3)
	expected := [][]string{
		{"A1", "A2", "B1"},
		{"A1", "B1", "A2"},
		{"B1", "A1", "A2"},
	}
	for i, tk := range tasks {
		assert.Equal(t, i, tk.ID())
		assert.Equal(t, 2, tk.ClientCount())
		assert.Equal(t, expected[i], sqlsOf(tk.Statements()))
	}
}

func TestGenerateCount(t *testing.T) {
	cases := []struct {
		lengths []int
		count   int
	}{
		{[]int{2, 2, 2}, 90},
		{[]int{1, 1}, 2},
		{[]int{3}, 1},
		{[]int{2, 0, 2}, 6},
		{[]int{1, 2, 3}, 60},
		{[]int{4, 1}, 5},
		{[]int{0, 0}, 1},
	}

	for _, c := range cases {
		var sqls [][]string
		for i, l := range c.lengths {
			var script []string
			for j := 0; j < l; j++ {
				script = append(script, fmt.Sprintf("s%d-%d", i, j))
			}
			sqls = append(sqls, script)
		}
		tasks := Generate(newScripts(sqls...))
		assert.Len(t, tasks, c.count, "lengths %v", c.lengths)
		assert.Equal(t, int64(c.count), Count(c.lengths...).Int64(), "lengths %v", c.lengths)

		total := 0
		for _, l := range c.lengths {
			total += l
		}
		for _, tk := range tasks {
			assert.Equal(t, total, tk.Len())
			assert.Equal(t, len(c.lengths), tk.ClientCount())
		}
	}
}

func TestGenerateKeepsScriptOrder(t *testing.T) {
	scripts := newScripts(
		[]string{"1", "2"},
		[]string{"3", "6"},
		[]string{"4", "5"},
	)
	tasks := Generate(scripts)
	require.Len(t, tasks, 90)

	seen := make(map[string]struct{}, len(tasks))
	for i, tk := range tasks {
		require.Equal(t, i, tk.ID())

		byClient := make([][]string, len(scripts))
		for _, stmt := range tk.Statements() {
			byClient[stmt.ClientID] = append(byClient[stmt.ClientID], stmt.SQL)
		}
		for c, script := range scripts {
			assert.Equal(t, sqlsOf(script), byClient[c], "task %d client %d", tk.ID(), c)
		}

		key := strings.Join(sqlsOf(tk.Statements()), ",")
		_, dup := seen[key]
		assert.False(t, dup, "duplicated interleaving %s", key)
		seen[key] = struct{}{}
	}
}

func TestGenerateIdenticalStatements(t *testing.T) {
	// identical texts in different scripts still make distinct tasks
	tasks := Generate(newScripts([]string{"X"}, []string{"X"}))
	require.Len(t, tasks, 2)
	assert.Equal(t, 0, tasks[0].Statements()[0].ClientID)
	assert.Equal(t, 1, tasks[1].Statements()[0].ClientID)
}

func TestGenerateDoesNotMutateScripts(t *testing.T) {
	scripts := newScripts([]string{"A1", "A2"}, []string{"B1", "B2"})
	Generate(scripts)
	assert.Equal(t, []string{"A1", "A2"}, sqlsOf(scripts[0]))
	assert.Equal(t, []string{"B1", "B2"}, sqlsOf(scripts[1]))
}

func TestCountLarge(t *testing.T) {
	// 30!/(10!)^3
	assert.Equal(t, "5550996791340", Count(10, 10, 10).String())
	assert.Equal(t, int64(1), Count().Int64())
}
