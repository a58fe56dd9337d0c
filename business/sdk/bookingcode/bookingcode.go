// Package bookingcode generates the human readable codes printed on
// reservations.
package bookingcode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Prefix starts every booking code.
const Prefix = "BK"

// ErrInvalid is returned when a string is not a booking code.
var ErrInvalid = errors.New("invalid booking code")

// Generator hands out booking codes. Codes carry the millisecond they were
// generated at, the node number and a per-millisecond sequence, so two codes
// from the same node never collide.
type Generator struct {
	node *snowflake.Node
}

// New constructs a generator for the specified node. Each running process
// sharing a database must use its own node number in [0, 1023].
func New(node int64) (*Generator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node[%d]: %w", node, err)
	}

	return &Generator{node: n}, nil
}

// Next returns a new booking code.
func (g *Generator) Next() string {
	return Prefix + strings.ToUpper(g.node.Generate().Base36())
}

// Parse validates the code and returns when it was generated.
func Parse(code string) (time.Time, error) {
	body, ok := strings.CutPrefix(code, Prefix)
	if !ok || body == "" {
		return time.Time{}, fmt.Errorf("%q: %w", code, ErrInvalid)
	}

	id, err := snowflake.ParseBase36(strings.ToLower(body))
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", code, ErrInvalid)
	}

	return time.UnixMilli(id.Time()), nil
}
