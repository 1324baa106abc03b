package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromURL(t *testing.T) {
	dialer, err := fromURL("socks5://127.0.0.1:1080")
	require.NoError(t, err)
	assert.NotNil(t, dialer)

	for _, proxy := range []string{"sock5://127.0.0.1:1080", "://127.0.0.1:1080", "ftp://127.0.0.1"} {
		_, err := fromURL(proxy)
		assert.Error(t, err, proxy)
	}
}

func TestSetMySQLProxyRejectsInvalidURL(t *testing.T) {
	err := SetMySQLProxy("sock5://127.0.0.1:1080")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sock5://127.0.0.1:1080")

	assert.NoError(t, SetMySQLProxy(""))
}
