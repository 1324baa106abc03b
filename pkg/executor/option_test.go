package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionClone(t *testing.T) {
	option := DefaultOption()
	optionClone := option.Clone()

	assert.Equal(t, *option, *optionClone)
	optionClone.ExitOnFail = false
	assert.True(t, option.ExitOnFail)
	assert.NotEqual(t, *option, *optionClone)
}
