package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ubeu-platform/ubeu-go/pkg/ubeu"
)

// CheckResult represents the result of a single smoke check
type CheckResult struct {
	Check    string        `json:"check"`
	Passed   bool          `json:"passed"`
	Result   interface{}   `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
	TraceID  string        `json:"trace_id,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ValidationReport represents the full smoke suite report
type ValidationReport struct {
	Timestamp   time.Time     `json:"timestamp"`
	BaseURL     string        `json:"base_url"`
	TotalTests  int           `json:"total_tests"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	SuccessRate float64       `json:"success_rate"`
	Results     []CheckResult `json:"results"`
}

type checkFunc func(ctx context.Context, c *ubeu.Client) (interface{}, error)

// smokeChecks are read-only calls; none of them changes platform state
var smokeChecks = map[string]checkFunc{
	"health": func(ctx context.Context, c *ubeu.Client) (interface{}, error) {
		return nil, c.Initialize(ctx)
	},
	"services": func(ctx context.Context, c *ubeu.Client) (interface{}, error) {
		status := c.GetStatus(ctx)
		if !status.Services.Identity || !status.Services.Credentials {
			return status.Services, errors.New("identity or credential service is down")
		}
		return status.Services, nil
	},
	"domain_types": func(ctx context.Context, c *ubeu.Client) (interface{}, error) {
		return c.Identity.DomainTypes(ctx)
	},
	"credential_types": func(ctx context.Context, c *ubeu.Client) (interface{}, error) {
		return c.Credentials.Types(ctx)
	},
	"public_schemas": func(ctx context.Context, c *ubeu.Client) (interface{}, error) {
		schemas, err := c.Issuers.PublicSchemas(ctx)
		return len(schemas), err
	},
	"openid4_formats": func(ctx context.Context, c *ubeu.Client) (interface{}, error) {
		return c.OpenID4.SupportedFormats(ctx, "")
	},
	"wallet_networks": func(ctx context.Context, c *ubeu.Client) (interface{}, error) {
		networks, err := c.Wallet.Networks(ctx)
		return len(networks), err
	},
}

func defaultChecks() []string {
	names := make([]string, 0, len(smokeChecks))
	for name := range smokeChecks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateCommand() *cobra.Command {
	var (
		checks    []string
		outputDir string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Runs a read-only smoke suite against the platform and writes a JSON report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(checks) == 0 {
				checks = defaultChecks()
			}
			for _, name := range checks {
				if _, ok := smokeChecks[name]; !ok {
					return fmt.Errorf("unknown check: %s", name)
				}
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return errors.Wrap(err, "failed to create output directory")
			}

			return withClient(cmd, func(c *ubeu.Client) error {
				var progress io.Writer = io.Discard
				if verbose {
					progress = cmd.ErrOrStderr()
				}
				report := runChecks(cmd.Context(), c, checks, progress)

				reportPath := filepath.Join(outputDir, fmt.Sprintf("validation_report_%d.json", report.Timestamp.Unix()))
				if err := saveReport(report, reportPath); err != nil {
					return err
				}

				printSummary(cmd.OutOrStdout(), report)
				if report.Failed > 0 {
					return fmt.Errorf("%d of %d checks failed", report.Failed, report.TotalTests)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&checks, "checks", nil, "Checks to run (empty for all)")
	cmd.Flags().StringVar(&outputDir, "output", "./validation_results", "Output directory for reports")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print progress")
	return cmd
}

// runChecks executes the named checks in order
func runChecks(ctx context.Context, c *ubeu.Client, checks []string, progress io.Writer) *ValidationReport {
	report := &ValidationReport{
		Timestamp: time.Now(),
		BaseURL:   c.GetConfig().BaseURL,
		Results:   make([]CheckResult, 0, len(checks)),
	}

	for _, name := range checks {
		fmt.Fprintf(progress, "Checking %s...\n", name)

		start := time.Now()
		value, err := smokeChecks[name](ctx, c)
		result := CheckResult{
			Check:    name,
			Passed:   err == nil,
			Result:   value,
			Duration: time.Since(start),
		}
		if err != nil {
			result.Error = err.Error()
			result.TraceID = ubeu.TraceID(err)
			report.Failed++
		} else {
			report.Passed++
		}
		report.Results = append(report.Results, result)
	}

	report.TotalTests = len(report.Results)
	if report.TotalTests > 0 {
		report.SuccessRate = float64(report.Passed) / float64(report.TotalTests) * 100
	}
	return report
}

func saveReport(report *ValidationReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create report")
	}
	defer f.Close()
	return printJSON(f, report)
}

func printSummary(w io.Writer, report *ValidationReport) {
	fmt.Fprintf(w, "Validation against %s\n", report.BaseURL)
	fmt.Fprintf(w, "Passed: %d/%d (%.1f%%)\n", report.Passed, report.TotalTests, report.SuccessRate)
	for _, r := range report.Results {
		if r.Passed {
			continue
		}
		if r.TraceID != "" {
			fmt.Fprintf(w, "  FAIL %s: %s (trace %s)\n", r.Check, r.Error, r.TraceID)
		} else {
			fmt.Fprintf(w, "  FAIL %s: %s\n", r.Check, r.Error)
		}
	}
}
