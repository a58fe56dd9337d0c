package status_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/stretchr/testify/assert"
)

func TestReleased(t *testing.T) {
	for _, s := range []status.Status{status.Pending, status.Confirmed, status.Paid, status.Completed} {
		assert.False(t, s.IsReleased(), s.String())
	}
	for _, s := range []status.Status{status.Cancelled, status.Refunded} {
		assert.True(t, s.IsReleased(), s.String())
		assert.True(t, s.IsTerminal(), s.String())
	}

	assert.Equal(t, []string{"PENDING", "CONFIRMED", "PAID", "COMPLETED"}, status.Strings(status.Blocking))
}
