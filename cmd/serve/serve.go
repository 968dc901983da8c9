// Package serve implements the serve command: expose the recommendation
// engine over HTTP.
package serve

import (
	"github.com/spf13/cobra"

	"cardrec/cmd/root"
	"cardrec/internal/server"
)

var (
	listenAddr string

	// Cmd is the serve command
	Cmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation API over HTTP",
		Long: `Start an HTTP server exposing recommendation, catalog and ledger
endpoints under /api/v1.`,
		Run: serveFunc,
	}
)

func init() {
	Cmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config)")
}

func serveFunc(cmd *cobra.Command, args []string) {
	cat, err := root.LoadCatalog()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load catalog")
	}
	ranker := root.NewRanker(cat)
	store := root.NewLedgerStore()

	addr := listenAddr
	if addr == "" {
		addr = root.Cfg.Server.ListenAddr
	}

	srv := server.New(ranker, cat, store, root.Log)
	root.Log.WithField("addr", addr).Info("Starting HTTP server")
	if err := srv.Router().Run(addr); err != nil {
		root.Log.WithError(err).Fatal("HTTP server stopped")
	}
}
