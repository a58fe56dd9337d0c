package paymethod_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/types/paymethod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	m, err := paymethod.Parse("CARD")
	require.NoError(t, err)
	assert.Equal(t, paymethod.CreditCard, m)
	assert.True(t, m.IsOnline())

	m, err = paymethod.Parse("BANK_TRANSFER")
	require.NoError(t, err)
	assert.False(t, m.IsOnline())

	_, err = paymethod.Parse("BITCOIN")
	assert.Error(t, err)
}
