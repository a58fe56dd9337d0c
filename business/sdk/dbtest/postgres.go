package dbtest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/jcpaschoal/lido/business/domain/availabilitybus/stores/availabilitydb"
	"github.com/jcpaschoal/lido/business/domain/paymentbus/stores/paymentdb"
	"github.com/jcpaschoal/lido/business/domain/reservationbus/stores/reservationdb"
	"github.com/jcpaschoal/lido/business/domain/tenantbus/stores/tenantdb"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus/stores/umbrelladb"
	"github.com/jcpaschoal/lido/business/sdk/migrate"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/kelseyhightower/envconfig"
)

// PostgresConfig locates the server the Postgres backed tests run against.
// Without DBTEST_HOST those tests are skipped.
type PostgresConfig struct {
	Host       string `envconfig:"DBTEST_HOST" default:""`
	User       string `envconfig:"DBTEST_USER" default:"postgres"`
	Password   string `envconfig:"DBTEST_PASSWORD" default:"postgres"`
	Name       string `envconfig:"DBTEST_NAME" default:"postgres"`
	DisableTLS bool   `envconfig:"DBTEST_DISABLE_TLS" default:"true"`
}

// NewPostgres creates a scratch database on the server named by DBTEST_HOST,
// migrates it and constructs the cores over the SQL stores. The database is
// dropped when the test ends.
func NewPostgres(t *testing.T, name string) *Database {
	t.Helper()

	var cfg PostgresConfig
	if err := envconfig.Process("", &cfg); err != nil {
		t.Fatalf("parsing config: %s", err)
	}

	if cfg.Host == "" {
		t.Skip("DBTEST_HOST is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := sqldb.Open(sqldb.Config{
		User:         cfg.User,
		Password:     cfg.Password,
		Host:         cfg.Host,
		Name:         cfg.Name,
		MaxOpenConns: 1,
		DisableTLS:   cfg.DisableTLS,
	})
	if err != nil {
		t.Fatalf("opening admin connection: %s", err)
	}

	if err := sqldb.StatusCheck(ctx, admin); err != nil {
		admin.Close()
		t.Fatalf("status check admin connection: %s", err)
	}

	dbName := "lido_test_" + randomSuffix(t)

	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+dbName); err != nil {
		admin.Close()
		t.Fatalf("creating database %s: %s", dbName, err)
	}

	t.Cleanup(func() {
		defer admin.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := admin.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName)); err != nil {
			t.Logf("dropping database %s: %s", dbName, err)
		}
	})

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.User,
		Password:     cfg.Password,
		Host:         cfg.Host,
		Name:         dbName,
		MaxOpenConns: 20,
		DisableTLS:   cfg.DisableTLS,
	})
	if err != nil {
		t.Fatalf("opening database %s: %s", dbName, err)
	}

	t.Cleanup(func() { db.Close() })

	if err := migrate.Migrate(ctx, db); err != nil {
		t.Fatalf("migrating database %s: %s", dbName, err)
	}

	log := testLog(t, name)

	stores := storers{
		tenant:       tenantdb.NewStore(log, db),
		umbrella:     umbrelladb.NewStore(log, db),
		availability: availabilitydb.NewStore(log, db),
		reservation:  reservationdb.NewStore(log, db),
		payment:      paymentdb.NewStore(log, db),
	}

	database := newDatabase(t, name, log, sqldb.NewBeginner(db), stores)
	database.SQL = db

	return database
}

func randomSuffix(t *testing.T) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("random suffix: %s", err)
	}

	return hex.EncodeToString(b)
}
