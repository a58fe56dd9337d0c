// Package notes maintains the append-only audit text kept on reservations
// and payments.
package notes

import "strings"

// Append adds line to the end of existing. Earlier lines are never changed.
func Append(existing string, line string) string {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return existing
	case existing == "":
		return line
	default:
		return existing + "\n" + line
	}
}

// Cancelled formats the line recorded when something is cancelled.
func Cancelled(reason string) string {
	return "Cancelled: " + reason
}

// Refunded formats the line recorded when a payment is refunded.
func Refunded(reason string) string {
	return "Refunded: " + reason
}
