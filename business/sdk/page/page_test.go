package page_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	pg, err := page.Parse("", "")
	require.NoError(t, err)
	assert.Equal(t, 1, pg.Number())
	assert.Equal(t, 10, pg.RowsPerPage())

	pg, err = page.Parse("3", "20")
	require.NoError(t, err)
	assert.Equal(t, 40, pg.Offset())

	for _, in := range [][2]string{{"0", "10"}, {"1", "0"}, {"1", "501"}, {"x", "1"}} {
		_, err := page.Parse(in[0], in[1])
		assert.Error(t, err, "page=%s rows=%s", in[0], in[1])
	}
}
