package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tessavero/fabula/internal/llm"
	"github.com/tessavero/fabula/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, origin string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP generation service for the web editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.LoadConfig()
			if addr != "" {
				cfg.Addr = addr
			}
			if origin != "" {
				cfg.Origin = origin
			}

			log := logrus.New()
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

			gateway := llm.NewGateway(app.LLM)
			return server.New(cfg, app.LLM, gateway, log).Run(context.Background())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides FABULA_HTTP_ADDR)")
	cmd.Flags().StringVar(&origin, "origin", "", "Allowed CORS origin (overrides FABULA_HTTP_ORIGIN)")
	return cmd
}
