package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	out, err := ParseHeaders([]string{"user-agent: Bot", "Accept: text/html", "X-Token: a:b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"User-Agent": "Bot",
		"Accept":     "text/html",
		"X-Token":    "a:b",
	}, out)
}

func TestParseHeaders_Rejects(t *testing.T) {
	for _, in := range []string{"BadHeader", ": value"} {
		_, err := ParseHeaders([]string{in})
		assert.Error(t, err, in)
	}
}
