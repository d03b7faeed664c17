package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ubeu-platform/ubeu-go/pkg/ubeu"
)

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probes every platform service and prints the client status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				return printJSON(cmd.OutOrStdout(), c.GetStatus(cmd.Context()))
			})
		},
	}
}

func initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Checks that the platform health endpoint answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				if err := c.Initialize(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "platform reachable at", c.GetConfig().BaseURL)
				return nil
			})
		},
	}
}

func loginCommand() *cobra.Command {
	var creds ubeu.AuthCredentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticates and persists the session (requires --sessionfile or --redis.addr)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				result, err := c.Authenticate(cmd.Context(), creds)
				if err != nil {
					return err
				}
				if !result.Success {
					return fmt.Errorf("login rejected: %s", result.Error)
				}
				return printJSON(cmd.OutOrStdout(), c.GetCurrentSession())
			})
		},
	}
	cmd.Flags().StringVar(&creds.Type, "type", ubeu.AuthTypePassword, "Authentication type (password, wallet, social, enterprise)")
	cmd.Flags().StringVar(&creds.Identifier, "identifier", "", "User identifier, e.g. an email address")
	cmd.Flags().StringVar(&creds.Secret, "secret", "", "Password or signed challenge")
	_ = cmd.MarkFlagRequired("identifier")
	return cmd
}

func logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Ends the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				return c.Logout(cmd.Context())
			})
		},
	}
}

func requestCommand() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "request [method] [path]",
		Short: "Sends a raw request and prints the JSON response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			switch method {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				return fmt.Errorf("unsupported method %s", args[0])
			}

			var body interface{}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				body = json.RawMessage(data)
			}

			return withClient(cmd, func(c *ubeu.Client) error {
				var result json.RawMessage
				if err := c.Do(cmd.Context(), method, args[1], body, &result); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	return cmd
}

func identityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Identity and DID operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "resolve [did]",
		Short: "Resolves a DID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				did, err := c.Identity.ResolveDID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), did)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "profile",
		Short: "Prints the profile of the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				profile, err := c.Identity.GetProfile(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), profile)
			})
		},
	})
	return cmd
}

func credentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Verifiable credential operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Prints a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				vc, err := c.Credentials.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), vc)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "verify [id]",
		Short: "Verifies a credential; exits non-zero when it is invalid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				valid, err := c.Credentials.Verify(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !valid {
					return fmt.Errorf("credential %s is not valid", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "credential %s is valid\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func walletCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}
	var network string
	balance := &cobra.Command{
		Use:   "balance [address]",
		Short: "Prints the native balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(c *ubeu.Client) error {
				value, err := c.Wallet.Balance(cmd.Context(), args[0], network)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}
	balance.Flags().StringVar(&network, "network", "", "Network to query, e.g. hedera-testnet")
	cmd.AddCommand(balance)
	return cmd
}
