package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func drain(tk *Task) []*Statement {
	var stmts []*Statement
	for {
		stmt, ok := tk.Next()
		if !ok {
			return stmts
		}
		stmts = append(stmts, stmt)
	}
}

func TestTaskNextAndReset(t *testing.T) {
	stmts := NewScript(0, []string{"BEGIN", "UPDATE t SET v = v + 1", "COMMIT"})
	tk := New(7, 1, stmts)
	assert.Equal(t, 7, tk.ID())
	assert.Equal(t, 1, tk.ClientCount())

	first := drain(tk)
	assert.Equal(t, []*Statement(stmts), first)

	_, ok := tk.Next()
	assert.False(t, ok)

	tk.Reset()
	assert.Equal(t, first, drain(tk))
}

func TestTaskResetHalfway(t *testing.T) {
	tk := New(0, 1, NewScript(0, []string{"a", "b"}))
	stmt, ok := tk.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", stmt.SQL)

	tk.Reset()
	stmt, ok = tk.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", stmt.SQL)
}

func TestTaskStatementsIsCopy(t *testing.T) {
	tk := New(0, 1, NewScript(0, []string{"a", "b"}))
	stmts := tk.Statements()
	stmts[0] = &Statement{SQL: "changed"}
	stmt, _ := tk.Next()
	assert.Equal(t, "a", stmt.SQL)
}

func TestTaskString(t *testing.T) {
	tk := New(3, 2, []*Statement{{ClientID: 1, SQL: "SELECT 1"}, {ClientID: 0, SQL: "SELECT 2"}})
	assert.Equal(t, "Task 3:\n  [1] SELECT 1\n  [0] SELECT 2", tk.String())
}
