package umbrellatype_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipliers(t *testing.T) {
	tests := map[string]string{
		"STANDARD": "1",
		"PREMIUM":  "1.5",
		"VIP":      "2",
		"FAMILY":   "1.8",
	}

	for name, want := range tests {
		typ, err := umbrellatype.Parse(name)
		require.NoError(t, err)
		assert.Equal(t, want, typ.Multiplier().String(), name)
		assert.Equal(t, name, typ.String())
	}

	_, err := umbrellatype.Parse("standard")
	assert.Error(t, err)
}
