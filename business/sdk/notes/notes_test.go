package notes_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/sdk/notes"
	"github.com/stretchr/testify/assert"
)

func TestAppend(t *testing.T) {
	n := notes.Append("", "near the bar please")
	n = notes.Append(n, notes.Cancelled("weather"))
	n = notes.Append(n, "   ")

	assert.Equal(t, "near the bar please\nCancelled: weather", n)
	assert.Equal(t, "Refunded: duplicate charge", notes.Refunded("duplicate charge"))
}
