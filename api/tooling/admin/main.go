// This program performs administrative tasks for the lido service.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jcpaschoal/lido/business/domain/availabilitybus"
	"github.com/jcpaschoal/lido/business/domain/availabilitybus/stores/availabilitydb"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/domain/paymentbus/stores/paymentdb"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/domain/reservationbus/stores/reservationdb"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/domain/tenantbus/stores/tenantdb"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus/stores/umbrellacache"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus/stores/umbrelladb"
	"github.com/jcpaschoal/lido/business/sdk/bookingcode"
	"github.com/jcpaschoal/lido/business/sdk/migrate"
	"github.com/jcpaschoal/lido/business/sdk/notify"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/kelseyhightower/envconfig"
)

// Config replicates necessary DB config structure
type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"lido"`
		Schema       string `envconfig:"DB_SCHEMA" default:""`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Node int64 `envconfig:"ADMIN_NODE" default:"1023"`
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN-TOOL", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	if len(os.Args) < 2 {
		usage(os.Stdout)
		return nil
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		Schema:       cfg.DB.Schema,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "migrate":
		if err := migrate.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println("migrations complete")
		return nil

	case "seed":
		if err := migrate.Seed(ctx, db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Println("seed data complete")
		return nil
	}

	codes, err := bookingcode.New(cfg.Node)
	if err != nil {
		return fmt.Errorf("booking codes: %w", err)
	}

	beginner := sqldb.NewBeginner(db)
	notifier := notify.New(log, notify.NewLogSender(log))

	tenantBus := tenantbus.NewCore(log, tenantdb.NewStore(log, db))
	umbrellaBus := umbrellabus.NewCore(log, beginner, umbrellacache.NewStore(log, umbrelladb.NewStore(log, db), time.Minute), tenantBus)
	availabilityBus := availabilitybus.NewCore(log, availabilitydb.NewStore(log, db))
	reservationBus := reservationbus.NewCore(log, beginner, reservationdb.NewStore(log, db), tenantBus, umbrellaBus, availabilityBus, codes, notifier)
	paymentBus := paymentbus.NewCore(log, beginner, paymentdb.NewStore(log, db), reservationBus, notifier)

	cmds := commands{
		out:          os.Stdout,
		tenant:       tenantBus,
		umbrella:     umbrellaBus,
		availability: availabilityBus,
		reservation:  reservationBus,
		payment:      paymentBus,
	}

	return cmds.run(ctx, os.Args[1], os.Args[2:])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admin <command> [args]")
	fmt.Fprintln(w, "Commands: migrate, seed, create-tenant, add-umbrella, book, confirm, cancel, pay, confirm-payment, refund, availability, stats")
}

//go run ./api/tooling/admin migrate
//go run ./api/tooling/admin create-tenant -name "Lido Azzurro" -slug "lido-azzurro" -plan PRO
//go run ./api/tooling/admin add-umbrella -tenant lido-azzurro -number 12 -row A -type STANDARD
//go run ./api/tooling/admin book -tenant lido-azzurro -umbrella 12 -user 5cf37266-3473-4006-984f-9325122678b7 -start 2026-07-01 -end 2026-07-03
