// Command mockapi serves an in-memory implementation of the BAY SA WARR API for local
// development of the web front-end.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/baysawarr-web/internal/logging"
	"github.com/jrsteele09/baysawarr-web/internal/mockapi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr     string
		secret   string
		tokenTTL time.Duration
		seed     bool
		logLevel string
	)
	cmd := &cobra.Command{
		Use:           "mockapi",
		Short:         "In-memory BAY SA WARR API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init("DEV", logLevel)

			api := mockapi.New(mockapi.Options{Secret: []byte(secret), TokenTTL: tokenTTL})
			if seed {
				if err := api.Seed(); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				log.Info().
					Str("admin", mockapi.DemoAdminEmail).
					Str("member", mockapi.DemoMemberEmail).
					Msg("Demo accounts created")
			}

			figure.NewFigure("mock api", "cybermedium", true).Print()
			fmt.Println()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &http.Server{Addr: addr, Handler: api, ReadHeaderTimeout: 10 * time.Second})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":4000", "listen address")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("MOCKAPI_SECRET"), "token signing secret")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of issued tokens")
	cmd.Flags().BoolVar(&seed, "seed", true, "create demo accounts and content")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}

func serve(ctx context.Context, srv *http.Server) error {
	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Mock API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
