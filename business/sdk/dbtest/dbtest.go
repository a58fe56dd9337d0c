// Package dbtest provides an in-memory database and the business cores
// wired to it for tests. It mirrors the constraints of the Postgres schema
// (unique keys and the reservation overlap exclusion) so the cores see the
// same failures they would see in production.
package dbtest

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/availabilitybus"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/domain/sweepbus"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/bookingcode"
	"github.com/jcpaschoal/lido/business/sdk/notify"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// DB holds every table in memory. Transactions are serialized: Begin blocks
// until the running transaction commits or rolls back.
type DB struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	tenants      map[uuid.UUID]tenantbus.Tenant
	umbrellas    map[uuid.UUID]umbrellabus.Umbrella
	reservations map[uuid.UUID]reservationbus.Reservation
	payments     map[uuid.UUID]paymentbus.Payment

	afterStaleRead func()
}

// NewDB constructs an empty database.
func NewDB() *DB {
	return &DB{
		tenants:      make(map[uuid.UUID]tenantbus.Tenant),
		umbrellas:    make(map[uuid.UUID]umbrellabus.Umbrella),
		reservations: make(map[uuid.UUID]reservationbus.Reservation),
		payments:     make(map[uuid.UUID]paymentbus.Payment),
	}
}

// Begin implements the sqldb.Beginner interface.
func (db *DB) Begin() (sqldb.CommitRollbacker, error) {
	db.txMu.Lock()

	db.mu.RLock()
	snap := snapshot{
		tenants:      maps.Clone(db.tenants),
		umbrellas:    maps.Clone(db.umbrellas),
		reservations: maps.Clone(db.reservations),
		payments:     maps.Clone(db.payments),
	}
	db.mu.RUnlock()

	return &Tx{db: db, snap: snap}, nil
}

type snapshot struct {
	tenants      map[uuid.UUID]tenantbus.Tenant
	umbrellas    map[uuid.UUID]umbrellabus.Umbrella
	reservations map[uuid.UUID]reservationbus.Reservation
	payments     map[uuid.UUID]paymentbus.Payment
}

// Tx is a transaction over the in-memory database. Rollback restores the
// tables as they were when the transaction began.
type Tx struct {
	db   *DB
	snap snapshot
	once sync.Once
}

// Commit implements the sqldb.CommitRollbacker interface.
func (tx *Tx) Commit() error {
	tx.end(false)
	return nil
}

// Rollback implements the sqldb.CommitRollbacker interface.
func (tx *Tx) Rollback() error {
	tx.end(true)
	return nil
}

func (tx *Tx) end(restore bool) {
	tx.once.Do(func() {
		if restore {
			tx.db.mu.Lock()
			tx.db.tenants = tx.snap.tenants
			tx.db.umbrellas = tx.snap.umbrellas
			tx.db.reservations = tx.snap.reservations
			tx.db.payments = tx.snap.payments
			tx.db.mu.Unlock()
		}
		tx.db.txMu.Unlock()
	})
}

func (db *DB) checkTx(tx sqldb.CommitRollbacker) error {
	t, ok := sqldb.Unwrap(tx).(*Tx)
	if !ok || t.db != db {
		return fmt.Errorf("transactor(%T) does not belong to this database", tx)
	}

	return nil
}

// =============================================================================

// BusDomain represents all the business domain apis needed for testing.
type BusDomain struct {
	Tenant       *tenantbus.Core
	Umbrella     *umbrellabus.Core
	Availability *availabilitybus.Core
	Reservation  *reservationbus.Core
	Payment      *paymentbus.Core
	Sweep        *sweepbus.Core
}

// Database owns the database and the cores built on it. DB is set for the
// in-memory database and SQL for a Postgres one.
type Database struct {
	DB        *DB
	SQL       *sqlx.DB
	Log       *logger.Logger
	Events    *notify.Recorder
	BusDomain BusDomain
}

// New constructs the cores over a fresh in-memory database. Events sent by
// the cores are captured by the returned recorder.
func New(t *testing.T, name string) *Database {
	t.Helper()

	db := NewDB()

	stores := storers{
		tenant:       tenantStore{db: db},
		umbrella:     umbrellaStore{db: db},
		availability: availabilityStore{db: db},
		reservation:  reservationStore{db: db},
		payment:      paymentStore{db: db},
	}

	database := newDatabase(t, name, testLog(t, name), db, stores)
	database.DB = db

	return database
}

type storers struct {
	tenant       tenantbus.Storer
	umbrella     umbrellabus.Storer
	availability availabilitybus.Storer
	reservation  reservationbus.Storer
	payment      paymentbus.Storer
}

func testLog(t *testing.T, name string) *logger.Logger {
	var buf logBuffer
	log := logger.New(&buf, logger.LevelInfo, name, func(context.Context) string { return "" })

	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("******************** LOGS (%s) ********************\n%s", name, buf.String())
		}
	})

	return log
}

func newDatabase(t *testing.T, name string, log *logger.Logger, bgn sqldb.Beginner, s storers) *Database {
	t.Helper()

	codes, err := bookingcode.New(1)
	if err != nil {
		t.Fatalf("bookingcode: %s", err)
	}

	events := new(notify.Recorder)
	notifier := notify.New(log, events)

	tenantBus := tenantbus.NewCore(log, s.tenant)
	umbrellaBus := umbrellabus.NewCore(log, bgn, s.umbrella, tenantBus)
	availabilityBus := availabilitybus.NewCore(log, s.availability)
	reservationBus := reservationbus.NewCore(log, bgn, s.reservation, tenantBus, umbrellaBus, availabilityBus, codes, notifier)
	paymentBus := paymentbus.NewCore(log, bgn, s.payment, reservationBus, notifier)
	sweepBus := sweepbus.NewCore(log, reservationBus, paymentBus, 0)

	return &Database{
		Log:    log,
		Events: events,
		BusDomain: BusDomain{
			Tenant:       tenantBus,
			Umbrella:     umbrellaBus,
			Availability: availabilityBus,
			Reservation:  reservationBus,
			Payment:      paymentBus,
			Sweep:        sweepBus,
		},
	}
}

// logBuffer collects log output from concurrent goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
