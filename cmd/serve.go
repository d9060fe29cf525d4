package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"manuscript_editor/generator"
	"manuscript_editor/server"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			chatModel, err := generator.ParseModelVariant(rt.cfg.ChatModel)
			if err != nil {
				return err
			}
			srv, err := server.New(rt.agent, rt.extractor, chatModel)
			if err != nil {
				return err
			}

			listen := rt.cfg.ServerAddr
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				listen = addr
			}
			if listen == "" {
				listen = ":8080"
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &http.Server{Addr: listen, Handler: srv.Routes()})
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (overrides config server_addr)")
	return cmd
}

// serve runs httpSrv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, httpSrv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msgf("Starting web server on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("Shutting down web server")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
