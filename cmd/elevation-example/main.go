package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kokudo/go-demtile"
)

type config struct {
	addr          string
	timeout       time.Duration
	userAgent     string
	tileCacheSize int
}

func (c *config) newResolver() (*demtile.Resolver, error) {
	acquirer, err := demtile.NewHTTPAcquirer(
		demtile.WithHTTPClient(&http.Client{Timeout: c.timeout}),
		demtile.WithUserAgent(c.userAgent),
		demtile.WithTileCacheSize(c.tileCacheSize),
	)
	if err != nil {
		return nil, err
	}
	return demtile.NewResolver(demtile.DefaultCatalog(), acquirer), nil
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:           "elevation-example",
		Short:         "Look up ground elevations from GSI DEM tiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", envDuration("DEMTILE_TIMEOUT", 10*time.Second), "tile fetch timeout")
	rootCmd.PersistentFlags().StringVar(&cfg.userAgent, "user-agent", "go-demtile", "User-Agent of tile requests")
	rootCmd.PersistentFlags().IntVar(&cfg.tileCacheSize, "tile-cache-size", 256, "number of decoded tiles to cache")

	lookupCmd := &cobra.Command{
		Use:   "lookup latitude longitude",
		Short: "Print the elevation at a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}
			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}

			resolver, err := cfg.newResolver()
			if err != nil {
				return err
			}
			coordinator := demtile.NewCoordinator(resolver)
			results := make(chan demtile.Result, 1)
			coordinator.ResolveElevation(lat, lng, func(result demtile.Result) {
				results <- result
			})
			coordinator.Wait()

			result := <-results
			logger.Debug("lookup", "lat", lat, "lng", lng, "tier", result.TierTitle, "zoom", result.Zoom)
			if !result.HasHeight() {
				fmt.Fprintln(cmd.OutOrStdout(), "unknown")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", result, result.TierTitle, result.Precision)
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve elevations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolver, err := cfg.newResolver()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			server := &http.Server{
				Addr:              cfg.addr,
				Handler:           newRouter(resolver),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			logger.Info("listening", "addr", cfg.addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("stopped")
			return nil
		},
	}
	addr := os.Getenv("DEMTILE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	serveCmd.Flags().StringVar(&cfg.addr, "addr", addr, "listen address")

	rootCmd.AddCommand(lookupCmd, serveCmd)
	return rootCmd
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("elevation-example", "err", err)
		os.Exit(1)
	}
}
