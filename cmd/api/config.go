// SPDX-License-Identifier: Apache-2.0

package api

import (
	"io"
	"net/http"
)

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Config.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.Config.UnmarshalAndSet(body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.getConfig(w, r)
}

func (s *Server) resetConfig(w http.ResponseWriter, r *http.Request) {
	s.Config.Reset()
	s.getConfig(w, r)
}
