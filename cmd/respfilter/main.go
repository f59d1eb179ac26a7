package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinytelemetry/respfilter/internal/duckdb"
	"github.com/tinytelemetry/respfilter/internal/model"
	"github.com/tinytelemetry/respfilter/internal/report"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

// cliFlags are command-line overrides; only flags set explicitly win over config.
type cliFlags struct {
	configPath    string
	showVersion   bool
	extension     string
	code          string
	jobs          int
	skipMalformed bool
	noDedup       bool
	reportPath    string
	statsDB       string
	quiet         bool
	history       int
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("respfilter", flag.ContinueOnError)
	var fl cliFlags
	fs.StringVar(&fl.configPath, "config", "", "config file (default is $HOME/.config/respfilter/config.yml)")
	fs.BoolVar(&fl.showVersion, "version", false, "print version information")
	fs.StringVar(&fl.extension, "extension", defaultExtension, "path segment extension to keep (case-insensitive)")
	fs.StringVar(&fl.code, "code", defaultResponseCode, "response status code to keep (exact match)")
	fs.IntVar(&fl.jobs, "jobs", defaultJobs, "number of input files processed at once")
	fs.BoolVar(&fl.skipMalformed, "skip-malformed", false, "skip malformed log lines instead of aborting")
	fs.BoolVar(&fl.noDedup, "no-dedup", false, "keep duplicate lines in the output file")
	fs.StringVar(&fl.reportPath, "report", "", "write a YAML run report to this path")
	fs.StringVar(&fl.statsDB, "stats-db", "", "record runs in this DuckDB file")
	fs.BoolVar(&fl.quiet, "quiet", false, "do not print the run summary or warnings")
	fs.IntVar(&fl.history, "history", 0, "list the N most recent runs from the stats db and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fl.showVersion {
		fmt.Fprintf(stdout, "respfilter - Access Log Response Filter\n")
		fmt.Fprintf(stdout, "  Version:    %s\n", version)
		fmt.Fprintf(stdout, "  Commit:     %s\n", commit)
		fmt.Fprintf(stdout, "  Built:      %s\n", buildTime)
		fmt.Fprintf(stdout, "  Go version: %s\n", goVersion)
		return nil
	}

	cfg, err := loadConfig(fl.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(fs, fl, &cfg)
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanupLogger := configureRuntimeLogger(cfg.LogFile, cfg.Quiet)
	defer cleanupLogger()

	if fl.history > 0 {
		return showHistory(stdout, cfg, fl.history)
	}

	files, err := resolveInputs(fs.Args(), stdin, cfg.OutputPrefix)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *duckdb.Store
	if cfg.StatsDB != "" {
		store, err = duckdb.NewStore(cfg.StatsDB, cfg.QueryTimeout)
		if err != nil {
			return fmt.Errorf("failed to open stats db: %w", err)
		}
		defer store.Close()
		log.Printf("respfilter: recording runs in %s", store.DBPath())
	}

	summaries, runErr := runPipelines(ctx, cfg, files, store)
	for _, s := range summaries {
		log.Printf("respfilter: %s", describeRun(s))
	}

	if cfg.ReportPath != "" && len(summaries) > 0 {
		if err := report.WriteYAML(cfg.ReportPath, version, summaries); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if !cfg.Quiet {
		fmt.Fprintln(stdout, report.Render(summaries, topSegments(store, cfg.TopSegments)))
	}
	return nil
}

// showHistory renders the latest runs recorded in the stats db.
func showHistory(stdout io.Writer, cfg appConfig, limit int) error {
	if cfg.StatsDB == "" {
		return errors.New("-history needs a stats db (stats-db or -stats-db)")
	}
	store, err := duckdb.NewStore(cfg.StatsDB, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to open stats db: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(stdout, "no runs recorded in %s\n", store.DBPath())
		return nil
	}
	fmt.Fprintln(stdout, report.Render(runs, topSegments(store, cfg.TopSegments)))
	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(fs *flag.FlagSet, fl cliFlags, cfg *appConfig) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "extension":
			cfg.Extension = fl.extension
		case "code":
			cfg.ResponseCode = fl.code
		case "jobs":
			cfg.Jobs = fl.jobs
		case "skip-malformed":
			if fl.skipMalformed {
				cfg.Malformed = model.MalformedSkip
			} else {
				cfg.Malformed = model.MalformedAbort
			}
		case "no-dedup":
			cfg.Dedup = !fl.noDedup
		case "report":
			cfg.ReportPath = fl.reportPath
		case "stats-db":
			cfg.StatsDB = fl.statsDB
		case "quiet":
			cfg.Quiet = fl.quiet
		}
	})
}

func topSegments(store *duckdb.Store, limit int) []model.SegmentCount {
	if store == nil || limit <= 0 {
		return nil
	}
	top, err := store.TopSegments(limit)
	if err != nil {
		log.Printf("Warning: %v", err)
		return nil
	}
	return top
}
