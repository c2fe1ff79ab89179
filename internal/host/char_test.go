package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChar_UnmarshalText(t *testing.T) {
	var c Char
	require.NoError(t, c.UnmarshalText([]byte("é")))
	assert.Equal(t, Char('é'), c)
	assert.Equal(t, "é", c.String())

	for _, bad := range []string{"", "ab", "\xff"} {
		assert.Error(t, c.UnmarshalText([]byte(bad)), bad)
	}
}
