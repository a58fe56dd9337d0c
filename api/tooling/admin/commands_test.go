package main

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/jcpaschoal/lido/business/sdk/dbtest"
	"github.com/jcpaschoal/lido/business/sdk/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codeRE = regexp.MustCompile(`code\[(BK[0-9A-Z]+)\]`)

func newCommands(t *testing.T) (commands, *bytes.Buffer, *dbtest.Database) {
	db := dbtest.New(t, t.Name())

	var out bytes.Buffer
	cmds := commands{
		out:          &out,
		tenant:       db.BusDomain.Tenant,
		umbrella:     db.BusDomain.Umbrella,
		availability: db.BusDomain.Availability,
		reservation:  db.BusDomain.Reservation,
		payment:      db.BusDomain.Payment,
	}

	return cmds, &out, db
}

func Test_AdminBookingFlow(t *testing.T) {
	ctx := context.Background()
	cmds, out, db := newCommands(t)

	run := func(name string, args ...string) string {
		t.Helper()
		out.Reset()
		require.NoError(t, cmds.run(ctx, name, args))
		return out.String()
	}

	run("create-tenant", "-name", "Lido Azzurro", "-slug", "lido-azzurro", "-plan", "PRO")
	assert.Contains(t, run("add-umbrella", "-tenant", "lido-azzurro", "-number", "10", "-count", "3", "-row", "A"), "number[12]")

	got := run("availability", "-tenant", "lido-azzurro", "-start", "2030-07-01", "-end", "2030-07-03")
	assert.Contains(t, got, "3 umbrellas free")

	got = run("book", "-tenant", "lido-azzurro", "-umbrella", "12", "-user", "5cf37266-3473-4006-984f-9325122678b7", "-start", "2030-07-01", "-end", "2030-07-03")
	assert.Contains(t, got, "total[90.00]")
	assert.Contains(t, got, "status[PENDING]")

	m := codeRE.FindStringSubmatch(got)
	require.Len(t, m, 2)
	code := m[1]

	got = run("availability", "-tenant", "lido-azzurro", "-start", "2030-07-03", "-end", "2030-07-05")
	assert.Contains(t, got, "2 umbrellas free")
	assert.NotContains(t, got, "number[12]")

	assert.Contains(t, run("confirm", "-tenant", "lido-azzurro", "-code", code), "status[CONFIRMED]")
	assert.Contains(t, run("pay", "-tenant", "lido-azzurro", "-code", code, "-method", "CASH"), "amount[90.00]")
	assert.Contains(t, run("confirm-payment", "-tenant", "lido-azzurro", "-code", code), "status[PAID]")

	got = run("stats", "-tenant", "lido-azzurro")
	assert.Regexp(t, `PAID\s+1`, got)
	assert.Contains(t, got, "paid revenue   90.00")

	assert.Contains(t, run("refund", "-tenant", "lido-azzurro", "-code", code, "-reason", "storm"), "status[REFUNDED]")

	assert.Equal(t, []string{
		notify.ReservationCreated,
		notify.ReservationConfirmed,
		notify.PaymentConfirmed,
		notify.PaymentRefunded,
		notify.ReservationCancelled,
	}, db.Events.Types())
}

func Test_AdminValidation(t *testing.T) {
	ctx := context.Background()
	cmds, _, _ := newCommands(t)

	tests := []struct {
		name string
		cmd  string
		args []string
		want string
	}{
		{"missing slug", "create-tenant", []string{"-name", "Lido"}, "-slug is a required field"},
		{"bad plan", "create-tenant", []string{"-name", "Lido", "-slug", "lido", "-plan", "GOLD"}, "-plan"},
		{"bad user", "book", []string{"-tenant", "lido", "-umbrella", "1", "-user", "bob", "-start", "2030-07-01", "-end", "2030-07-02"}, "-user"},
		{"bad day", "book", []string{"-tenant", "lido", "-umbrella", "1", "-user", "5cf37266-3473-4006-984f-9325122678b7", "-start", "01/07/2030", "-end", "2030-07-02"}, "-start"},
		{"refund reason", "refund", []string{"-tenant", "lido", "-code", "BK1"}, "-reason is a required field"},
		{"unknown", "launch", nil, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cmds.run(ctx, tt.cmd, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
