// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
)

type submitJobRequest struct {
	Database  string `json:"database"`
	Operation string `json:"operationKind"`
	Arg       any    `json:"arg,omitempty"`
}

type submitJobResponse struct {
	JobID job.ID `json:"jobId"`
}

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := s.Jobs.Submit(job.OperationKind(req.Operation), job.DatabaseTag(req.Database), req.Arg)
	if err != nil {
		statusForSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, submitJobResponse{JobID: id})
}

func (s *Server) jobStatus(w http.ResponseWriter, r *http.Request) {
	id := job.ID(mux.Vars(r)["id"])

	desc, err := s.Jobs.GetStatus(id)
	if err != nil {
		statusForJobError(w, err)
		return
	}

	resp := map[string]any{
		"jobId":      desc.ID,
		"status":     desc.State,
		"isComplete": desc.State.IsTerminal(),
		"progress": map[string]any{
			"percentage":  desc.Progress.Percentage,
			"currentTask": desc.Progress.CurrentTask,
			"details":     desc.Progress.Details,
		},
	}
	if desc.Error != nil {
		resp["error"] = desc.Error.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) jobResult(w http.ResponseWriter, r *http.Request) {
	id := job.ID(mux.Vars(r)["id"])

	if _, err := s.Jobs.GetResult(id); err != nil {
		statusForJobError(w, err)
		return
	}

	desc, err := s.Jobs.GetStatus(id)
	if err != nil {
		statusForJobError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job.Summarize(desc))
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	id := job.ID(mux.Vars(r)["id"])

	outcome, err := s.Jobs.Cancel(id)
	if err != nil {
		statusForJobError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}

func (s *Server) resetJobs(w http.ResponseWriter, r *http.Request) {
	s.Jobs.ResetAll()
	w.WriteHeader(http.StatusNoContent)
}

func statusForJobError(w http.ResponseWriter, err error) {
	var notFound migerr.JobNotFoundError
	var notReady migerr.JobNotReadyError

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &notReady):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func statusForSubmitError(w http.ResponseWriter, err error) {
	var unknownOp migerr.UnknownOperationError
	if errors.As(err, &unknownOp) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
