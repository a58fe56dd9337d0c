package dbtest

import (
	"fmt"
	"slices"

	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
)

// sortPage orders items with the comparison registered for the field and
// returns the requested page.
func sortPage[T any](items []T, orderBy order.By, pg page.Page, fields map[string]func(a, b T) int, tieBreak func(a, b T) int) ([]T, error) {
	fn, exists := fields[orderBy.Field]
	if !exists {
		return nil, fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	slices.SortStableFunc(items, func(a, b T) int {
		c := fn(a, b)
		if orderBy.Direction == order.DESC {
			c = -c
		}
		if c == 0 {
			c = tieBreak(a, b)
		}
		return c
	})

	start := min(pg.Offset(), len(items))
	end := min(start+pg.RowsPerPage(), len(items))

	return items[start:end], nil
}
