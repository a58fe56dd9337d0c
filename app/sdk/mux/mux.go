// Package mux provides the debug endpoints of the worker.
package mux

import (
	"context"
	"encoding/json"
	"expvar"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build string
	Log   *logger.Logger
	DB    *sqlx.DB
}

// Debug constructs a http.Handler with the debug routes bound: pprof,
// expvar, prometheus and the liveness and readiness checks.
func Debug(cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	chk := check{build: cfg.Build, log: cfg.Log, db: cfg.DB}
	mux.HandleFunc("GET /debug/liveness", chk.liveness)
	mux.HandleFunc("GET /debug/readiness", chk.readiness)

	return mux
}

type check struct {
	build string
	log   *logger.Logger
	db    *sqlx.DB
}

func (c check) liveness(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Status string `json:"status"`
		Build  string `json:"build"`
	}{
		Status: "up",
		Build:  c.build,
	}

	respond(w, http.StatusOK, data)
}

func (c check) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK

	if err := sqldb.StatusCheck(ctx, c.db); err != nil {
		c.log.Info(ctx, "readiness failure", "ERROR", err)
		status = "db not ready"
		code = http.StatusInternalServerError
	}

	respond(w, code, struct {
		Status string `json:"status"`
	}{Status: status})
}

func respond(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}
