// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/oragres/migrator/cmd/api"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve [port]",
		Short: "Start the REST API server for job submission, polling and config management",
		RunE: func(cmd *cobra.Command, args []string) error {
			port := ":8080"
			if len(args) > 0 {
				port = fmt.Sprintf(":%s", args[0])
			}

			cfgStore, svc, conns, err := buildRuntime()
			if err != nil {
				return err
			}
			defer conns.Close()
			defer svc.Shutdown()

			server := &api.Server{Config: cfgStore, Jobs: svc, Conns: conns}

			httpServer := &http.Server{
				Addr:    port,
				Handler: server.Router(),
			}

			pterm.Info.Printfln("starting server on %s", port)
			if err := httpServer.ListenAndServe(); err != nil {
				fatal(err)
			}

			return nil
		},
	}

	return serveCmd
}
