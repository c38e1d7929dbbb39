package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toyz/pluginmeta/internal/registry"
	"github.com/toyz/pluginmeta/internal/server"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCommand() *cobra.Command {
	var (
		adapter      string
		addr         string
		registryFlag string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction and rewriting over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if adapter == "" {
				adapter = a.cfg.Server.Adapter
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			reg := registry.New()
			if a.registryPath(registryFlag) != "" {
				loaded, err := a.loadRegistry(registryFlag)
				if err != nil {
					return err
				}
				reg = loaded
			} else {
				a.diag.Warn("No registry manifest configured; /v1/transform will leave every module unchanged")
			}

			transport, err := server.NewTransport(adapter)
			if err != nil {
				return err
			}
			srv := server.New(transport, a.newExtractor(), reg, a.diag, server.WithSourcemap(a.sourcemapOptions()))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.diag.Header(fmt.Sprintf("transform server %s", a.version))

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.diag.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Stop(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&adapter, "adapter", "", "HTTP framework: gin, echo or fiber (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&registryFlag, "registry", "", "Registry manifest (default from config)")

	return cmd
}
