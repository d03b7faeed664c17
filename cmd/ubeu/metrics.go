package main

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/ubeu-platform/ubeu-go/pkg/ubeu"
)

const defaultMetricsAddr = ":9464"

func metricsCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Probes the platform periodically and serves client metrics on /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())

			client, cfg, err := newClient(cmd, reg)
			if err != nil {
				return err
			}
			defer client.Close()

			addr := cfg.Metrics
			if addr == "" {
				addr = defaultMetricsAddr
			}
			return serveMetrics(cmd.Context(), client, reg, addr, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Time between status probes")
	return cmd
}

// serveMetrics probes the platform every interval until ctx is done
func serveMetrics(ctx context.Context, client *ubeu.Client, reg *prometheus.Registry, addr string, interval time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client.GetStatus(ctx)
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err := <-errCh:
			return errors.Wrap(err, "metrics server stopped")
		case <-ticker.C:
			client.GetStatus(ctx)
		}
	}
}
