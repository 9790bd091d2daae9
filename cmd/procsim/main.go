// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jontk/procsim"
	"github.com/jontk/procsim/internal/scenario"
	"github.com/jontk/procsim/pkg/analytics"
	"github.com/jontk/procsim/pkg/auth"
	procctx "github.com/jontk/procsim/pkg/context"
	"github.com/jontk/procsim/pkg/logging"
	"github.com/jontk/procsim/pkg/metrics"
	"github.com/jontk/procsim/pkg/server"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = ""
	Commit    = ""

	// Global flags
	outputFmt string
	debug     bool

	// Root command
	rootCmd = &cobra.Command{
		Use:     "procsim",
		Short:   "CLI for the round-robin scheduler / memory allocator simulator",
		Long:    `A command-line interface for running scheduler simulations and serving them over HTTP.`,
		Version: Version,
	}
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(docsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("procsim version %s\n", Version)
		if BuildTime != "" {
			fmt.Printf("Build Time: %s\n", BuildTime)
		}
		if Commit != "" {
			fmt.Printf("Commit:     %s\n", Commit)
		}
	},
}

// newLogger builds the diagnostics logger every subcommand shares,
// honoring --debug for verbosity.
func newLogger() logging.Logger {
	cfg := logging.DefaultConfig()
	if debug {
		cfg.Level = slog.LevelDebug
	}
	return logging.NewLogger(cfg)
}

// printOutput prints data in the requested format, falling back to
// JSON for yaml since the scenario document is the only place this CLI
// needs a real YAML encoder.
func printOutput(data interface{}) error {
	switch outputFmt {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		fmt.Println("# YAML output not implemented, showing JSON:")
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	default:
		return nil
	}
}

// loadScenario reads a scenario document either from a local file
// (--file) or a remote URL (--url), mutually exclusive.
func loadScenario(ctx context.Context, logger logging.Logger, file, url string) (*scenario.Document, error) {
	if file != "" && url != "" {
		return nil, fmt.Errorf("--file and --url are mutually exclusive")
	}
	if url != "" {
		return scenario.NewFetcher(logger).FetchRemote(ctx, url)
	}
	if file == "" {
		return nil, fmt.Errorf("one of --file or --url is required")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	format := scenario.FormatJSON
	if strings.HasSuffix(file, ".yaml") || strings.HasSuffix(file, ".yml") {
		format = scenario.FormatYAML
	}
	return scenario.Decode(data, format)
}

var (
	runFile string
	runURL  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scheduling simulation from a scenario document",
	Long: `Run loads a job list and run configuration from a JSON or YAML
scenario document, simulates it to completion, and prints the
deterministic trace, summary statistics, and per-job efficiency score.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		ctx, cancel := procctx.EnsureTimeout(context.Background(), procctx.DefaultLongTimeout)
		defer cancel()

		doc, err := loadScenario(ctx, logger, runFile, runURL)
		if err != nil {
			return procctx.WrapContextError(err, "load scenario", procctx.DefaultLongTimeout)
		}

		cfg := doc.Config()
		cfg.Load()
		cfg.Debug = debug

		jobs, err := doc.JobInputs()
		if err != nil {
			return err
		}

		sim, err := procsim.New(cfg, procsim.WithLogger(logger), procsim.WithMetrics(metrics.NewInMemoryCollector()))
		if err != nil {
			return err
		}

		result, err := sim.RunDetailed(ctx, jobs, os.Stdout)
		if err != nil {
			return procctx.WrapContextError(err, "run simulation", procctx.DefaultLongTimeout)
		}

		report := analytics.NewEfficiencyCalculator().BuildRunReport(result)
		if outputFmt == "table" {
			fmt.Printf("\nEfficiency\n")
			fmt.Println(strings.Repeat("-", 50))
			fmt.Printf("%-15s %10s %10s %10s\n", "JOB", "CPU", "MEMORY", "OVERALL")
			for _, j := range report.Jobs {
				fmt.Printf("%-15s %10.2f %10.2f %10.2f\n", j.Name, j.CPUEfficiency, j.MemoryEfficiency, j.Overall)
			}
			fmt.Printf("\nAverage overall: %.2f (best: %s, worst: %s)\n",
				report.AverageOverall, report.BestJob, report.WorstJob)
		} else {
			return printOutput(report)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Path to a local JSON/YAML scenario document")
	runCmd.Flags().StringVar(&runURL, "url", "", "URL of a remote JSON/YAML scenario document")
}

var (
	serveAddr    string
	serveAPIKey  string
	serveTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulator over HTTP",
	Long:  `Serve starts an HTTP server exposing run submission, trace, analytics, and live-streaming endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		srv := server.New(server.WithLogger(logger), server.WithMetrics(metrics.NewInMemoryCollector()))
		defer srv.Close()

		var verifier auth.Verifier = auth.NewNoAuth()
		if serveAPIKey != "" {
			verifier = auth.NewAPIKeyAuth("X-API-Key", serveAPIKey)
		}

		httpServer := &http.Server{
			Addr:              serveAddr,
			Handler:           srv.Handler(verifier, serveTimeout),
			ReadHeaderTimeout: 10 * time.Second,
		}

		logger.Info("serving", "addr", serveAddr)
		return httpServer.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Require this value in the X-API-Key header (default: no auth)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 30*time.Second, "Per-request timeout for non-streaming routes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
