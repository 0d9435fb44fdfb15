// SPDX-License-Identifier: Apache-2.0

// Package api implements the REST surface over JobService, ConfigStore and
// ConnectionProvider: job submission and polling, config
// read/update/reset, and ad-hoc connection tests, all as thin JSON handlers
// around the job subsystem's own submit/poll contract.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pterm/pterm"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
)

// Server holds the shared runtime every handler dispatches against.
type Server struct {
	Config *config.Store
	Jobs   *job.Service
	Conns  *dbconn.Provider
}

// Router builds the gorilla/mux route table for the whole REST surface.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/config", s.getConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.putConfig).Methods(http.MethodPut, http.MethodPost)
	r.HandleFunc("/api/config/reset", s.resetConfig).Methods(http.MethodPost)

	r.HandleFunc("/api/database/test/oracle", s.testOracle).Methods(http.MethodGet)
	r.HandleFunc("/api/database/test/postgres", s.testPostgres).Methods(http.MethodGet)

	r.HandleFunc("/api/jobs", s.submitJob).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs/reset", s.resetJobs).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs/{id}", s.jobStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}/result", s.jobResult).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}/cancel", s.cancelJob).Methods(http.MethodPost)

	r.HandleFunc("/api/migrate", s.runMigration).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		pterm.Error.Printfln("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
