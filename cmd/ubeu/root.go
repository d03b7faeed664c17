package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ubeu-platform/ubeu-go/internal/config"
	"github.com/ubeu-platform/ubeu-go/internal/logging"
	"github.com/ubeu-platform/ubeu-go/pkg/ubeu"
)

// rootCmd builds the ubeu command tree
func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ubeu",
		Short:        "Command line client for the UBeU identity platform",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().AddFlagSet(config.FlagSet())

	cmd.AddCommand(statusCommand())
	cmd.AddCommand(initCommand())
	cmd.AddCommand(loginCommand())
	cmd.AddCommand(logoutCommand())
	cmd.AddCommand(requestCommand())
	cmd.AddCommand(identityCommand())
	cmd.AddCommand(credentialCommand())
	cmd.AddCommand(walletCommand())
	cmd.AddCommand(validateCommand())
	cmd.AddCommand(metricsCommand())
	return cmd
}

// newClient loads the layered config for cmd and builds a client from it.
// reg may be nil.
func newClient(cmd *cobra.Command, reg prometheus.Registerer) (*ubeu.Client, *config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	opts := &ubeu.ClientOptions{
		BaseURL:           cfg.Client.BaseURL,
		Timeout:           cfg.Client.Timeout,
		RetryConfig:       &ubeu.RetryConfig{MaxRetries: cfg.Client.MaxRetries, RetryWait: time.Second},
		Debug:             cfg.Client.Debug,
		Environment:       cfg.Client.Environment,
		Token:             cfg.Token,
		SessionPersister:  cfg.Persister(),
		Logger:            logging.New(cfg.LogFormat, cmd.ErrOrStderr(), cfg.Client.Debug),
		SentryDSN:         cfg.SentryDSN,
		MetricsRegisterer: reg,
	}
	if limiter := cfg.Limiter(); limiter != nil {
		opts.RateLimiter = limiter
	}

	client, err := ubeu.NewClient(opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create client")
	}
	return client, cfg, nil
}

// withClient runs fn with a client and closes it afterwards
func withClient(cmd *cobra.Command, fn func(*ubeu.Client) error) error {
	client, _, err := newClient(cmd, nil)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
