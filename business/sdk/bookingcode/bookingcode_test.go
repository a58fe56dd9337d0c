package bookingcode_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jcpaschoal/lido/business/sdk/bookingcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIsUnique(t *testing.T) {
	gen, err := bookingcode.New(1)
	require.NoError(t, err)

	const goroutines = 8
	const perG = 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, goroutines*perG)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				code := gen.Next()
				mu.Lock()
				seen[code] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perG)
}

func TestParse(t *testing.T) {
	gen, err := bookingcode.New(3)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	code := gen.Next()

	require.True(t, strings.HasPrefix(code, bookingcode.Prefix))

	at, err := bookingcode.Parse(code)
	require.NoError(t, err)
	assert.True(t, at.After(before), "generated at %s", at)

	for _, bad := range []string{"", "BK", "XX123", "BK!!"} {
		_, err := bookingcode.Parse(bad)
		assert.ErrorIs(t, err, bookingcode.ErrInvalid, bad)
	}
}

func TestNewRejectsBadNode(t *testing.T) {
	_, err := bookingcode.New(5000)
	assert.Error(t, err)
}
