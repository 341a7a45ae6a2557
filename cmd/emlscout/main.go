package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"emlscout/internal/config"
	"emlscout/internal/manager"
	"emlscout/internal/recommend"
	"emlscout/internal/report"
	"emlscout/internal/scanner"
	"emlscout/internal/security"
	"emlscout/internal/sysinfo"
)

func main() {
	// Application start time
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Parse command line flags; environment values act as defaults
	flag.StringVar(&cfg.SourceDir, "src", cfg.SourceDir, "EML file or directory to scan")
	flag.IntVar(&cfg.WorkerCount, "workers", cfg.WorkerCount, "Number of worker goroutines")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose output")
	flag.BoolVar(&cfg.RecursiveScan, "recursive", cfg.RecursiveScan, "Recursively scan directories")
	flag.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Output format: text or json")
	flag.StringVar(&cfg.ReportDir, "report-dir", cfg.ReportDir, "Directory for per-message PDF reports")
	flag.BoolVar(&cfg.RichReports, "rich", cfg.RichReports, "Render PDF reports with headless Chrome when available")
	flag.StringVar(&cfg.PreferencesFile, "prefs", cfg.PreferencesFile, "YAML file with recommendation preferences")
	flag.BoolVar(&cfg.AIProcessing, "ai", cfg.AIProcessing, "Optimize recommendations for AI/LLM processing")
	flag.BoolVar(&cfg.ScanAttachments, "scan", cfg.ScanAttachments, "Scan attachments for viruses using ClamAV")
	flag.StringVar(&cfg.ClamdAddress, "clamd", cfg.ClamdAddress, "ClamAV daemon address")
	diagnose := flag.Bool("diagnose", false, "Show diagnostic information")
	flag.Parse()

	logger := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	prefs, err := cfg.Preferences()
	if err != nil {
		logger.Fatalf("Failed to load preferences: %v", err)
	}

	// Attach the virus scanner as an inspector only when it is usable
	var inspector scanner.Inspector
	if cfg.ScanAttachments {
		virusScanner, err := security.NewScanner(true, cfg.ClamdAddress, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize virus scanner, continuing without it")
		} else if virusScanner.IsEnabled() {
			inspector = virusScanner
			logger.Debug("Virus scanning enabled")
		}
	}

	env := recommend.ProbeEnvironment()
	logger.WithFields(logrus.Fields{
		"source":    cfg.SourceDir,
		"workers":   cfg.WorkerCount,
		"cpu_cores": env.CPUCores,
		"memory":    humanize.IBytes(env.AvailableMemory),
		"ocr_key":   env.HasCredential(recommend.ProviderOCR),
	}).Debug("Starting scan")

	if *diagnose {
		sysinfo.LogDiagnostics(logger, startTime)
	}

	mgr := manager.NewManager(cfg, scanner.NewScanner(inspector), recommend.NewEngine(env), prefs, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := mgr.Start(ctx)
	if runErr != nil {
		logger.WithError(runErr).Error("Scan did not complete")
	}

	var reports []*report.Report
	for _, result := range mgr.Results() {
		reports = append(reports, report.New(result.Scan, result.Recommendations))
	}

	if err := writeOutput(cfg, reports); err != nil {
		logger.Fatalf("Failed to write output: %v", err)
	}

	stats := mgr.Stats()
	elapsed := time.Since(startTime).Round(time.Millisecond)
	logger.WithFields(logrus.Fields{
		"elapsed":      elapsed.String(),
		"processed":    stats.Processed,
		"successful":   stats.Successful,
		"failed":       stats.Failed,
		"data":         humanize.IBytes(uint64(stats.TotalFileSize)),
		"critical":     stats.CriticalFindings,
		"est_work":     stats.EstimatedWork.Round(time.Second).String(),
		"est_ocr_cost": fmt.Sprintf("$%.4f", stats.EstimatedOCRCost),
		"worker_count": stats.Workers,
	}).Info("Scan completed")

	if *diagnose {
		sysinfo.LogDiagnostics(logger, startTime)
	}

	if runErr != nil || (stats.Failed > 0 && stats.Successful == 0) {
		os.Exit(1)
	}
}

// newLogger builds the process logger from the configured level and format
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return logger
}

// writeOutput prints the reports to stdout in the configured format
func writeOutput(cfg *config.Config, reports []*report.Report) error {
	if cfg.OutputFormat == "json" {
		// A single message source prints one object, a directory prints an array
		if info, err := os.Stat(cfg.SourceDir); err == nil && !info.IsDir() && len(reports) == 1 {
			return reports[0].WriteJSON(os.Stdout)
		}
		return report.WriteJSONBatch(os.Stdout, reports)
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))
		}
		if err := r.WriteText(os.Stdout); err != nil {
			return err
		}
	}
	return nil
}
