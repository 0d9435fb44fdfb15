// SPDX-License-Identifier: Apache-2.0

package api

import "net/http"

func (s *Server) testOracle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Conns.TestOracle(r.Context()))
}

func (s *Server) testPostgres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Conns.TestPostgres(r.Context()))
}
