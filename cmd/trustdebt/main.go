// Trustdebt: Trust Debt analysis MCP server
//
// Measures the drift between a project's stated intent (docs, specs)
// and its observed reality (source, tests) by counting categorized
// keyword evidence on an asymmetric matrix, then grading, drift
// analysis, and an audit verdict.
//
// Usage:
//
//	trustdebt serve                      # Start MCP server (stdio transport)
//	trustdebt analyze <intent> <reality> # Run the pipeline from the CLI
//	trustdebt update                     # Update to the latest version
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/driftlab/trustdebt/internal/config"
	"github.com/driftlab/trustdebt/internal/index"
	"github.com/driftlab/trustdebt/internal/pipeline"
	tdserver "github.com/driftlab/trustdebt/internal/server"
	"github.com/driftlab/trustdebt/internal/store"
	"github.com/driftlab/trustdebt/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "analyze":
		if err := runAnalyze(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("trustdebt v%s\n", tdserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// configPath resolves the config file location: the TRUSTDEBT_CONFIG
// env var wins, otherwise ~/.trustdebt/config.yaml. A missing file
// falls back to defaults inside config.Load.
func configPath() string {
	if p := os.Getenv("TRUSTDEBT_CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".trustdebt", "config.yaml")
}

func runServe() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	s, cleanup, err := tdserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check prints to stderr so it doesn't interfere
	// with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

// runAnalyze runs the full pipeline from the command line, without an
// MCP host. The summary goes to stdout; diagnostics go to stderr.
func runAnalyze(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: trustdebt analyze <intent-dir> <reality-dir>")
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	intent, err := index.LoadDir(args[0])
	if err != nil {
		return fmt.Errorf("loading intent corpus: %w", err)
	}
	reality, err := index.LoadDir(args[1])
	if err != nil {
		return fmt.Errorf("loading reality corpus: %w", err)
	}

	logger := log.New(os.Stderr, "trustdebt: ", log.LstdFlags)

	// The indexed store is auxiliary for a one-shot CLI run: analysis
	// works from the JSON artifacts alone.
	var runStore pipeline.RunStore
	st, err := store.New(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		logger.Printf("WARNING: indexed store disabled: %v", err)
	} else {
		runStore = st
		defer func() { _ = st.Close() }()
	}

	artifacts := pipeline.NewFileStore(cfg.DataDir)
	runner := pipeline.NewRunner(cfg, artifacts, runStore, logger)

	report, err := runner.Run(context.Background(), intent, reality)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n\n", report.RunID)
	for _, res := range report.Results {
		marker := "ok  "
		switch res.Outcome {
		case pipeline.OutcomeFailed:
			marker = "FAIL"
		case pipeline.OutcomeSkipped:
			marker = "skip"
		}
		fmt.Printf("  %s  %-12s", marker, res.Stage)
		if res.Err != "" {
			fmt.Printf("  %s", res.Err)
		}
		fmt.Println()
	}

	fmt.Printf("\nSovereignty: %.3f (%s)\n", report.Sovereignty.Score, report.Sovereignty.Grade)
	fmt.Printf("Alignment:   %.3f\n", report.OverallAlignment)
	fmt.Printf("Audit:       %s\n", report.Status())
	fmt.Printf("\nArtifacts under %s\n", filepath.Join(cfg.DataDir, "runs", report.RunID))

	if report.Status() == "fail" {
		return fmt.Errorf("audit verdict is fail")
	}
	return nil
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort: network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(tdserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: trustdebt update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "Checking for updates...\n")

	result := updater.CheckVersion(tdserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Downloading...\n")

	if err := updater.SelfUpdate(tdserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n  You can download manually from:\n  %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Restart trustdebt to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Trustdebt v%s — Trust Debt analysis MCP server

Usage:
  trustdebt serve                        Start the MCP server (stdio transport)
  trustdebt analyze <intent> <reality>   Run the pipeline once from the CLI
  trustdebt update                       Update to the latest version

Configuration:
  Reads ~/.trustdebt/config.yaml (override with TRUSTDEBT_CONFIG).
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "trustdebt": {
        "command": "trustdebt",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/driftlab/trustdebt
`, tdserver.Version)
}
