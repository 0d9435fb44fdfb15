// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"

	"github.com/pterm/pterm"

	"github.com/oragres/migrator/pkg/orchestrator"
)

// runMigration kicks off the full pipeline in the
// background and returns immediately; callers poll individual phase jobs
// via GET /api/jobs/{id} using the ids JobService assigns as each phase is
// submitted. The response only confirms the run started.
func (s *Server) runMigration(w http.ResponseWriter, r *http.Request) {
	policy := orchestrator.AbortOnTotalFailure
	if r.URL.Query().Get("abortOnAnyError") == "true" {
		policy = orchestrator.AbortOnAnyError
	}

	orch := orchestrator.New(s.Jobs, policy, 0)

	go func() {
		outcomes, err := orch.Run(context.Background())
		if err != nil {
			pterm.Error.Printfln("migration pipeline stopped: %v", err)
			return
		}
		pterm.Success.Printfln("migration pipeline completed: %d phases", len(outcomes))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
