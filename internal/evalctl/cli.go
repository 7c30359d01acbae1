package evalctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/fatih/color"

	"github.com/okian/breedgrade/pkg/logger"
)

// Defaults for flags.
const (
	defaultBaseURL   = "http://localhost:8001"
	defaultTimeout   = 10 * time.Second
	defaultSeedCount = 100
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultSeed      = 1
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

// Run executes one subcommand and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := Config{BaseURL: defaultBaseURL, Timeout: defaultTimeout}
	if env := os.Getenv("BREEDGRADE_URL"); env != "" {
		cfg.BaseURL = env
	}

	global := flag.NewFlagSet("evalctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	global.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	global.BoolVar(&cfg.NoColor, "no-color", false, "Disable coloured output")
	global.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	global.Usage = func() { ShowHelp(stderr) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		ShowHelp(stderr)
		return exitUsage
	}

	if cfg.NoColor {
		color.NoColor = true
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	err := dispatch(ctx, client, rest[0], rest[1:], stdout, stderr)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		color.New(color.FgRed).Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
}

func dispatch(ctx context.Context, client *Client, cmd string, args []string, stdout, stderr io.Writer) error {
	switch cmd {
	case "health":
		if err := client.Health(ctx); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(stdout, "service is healthy")
		return nil

	case "rubric":
		r, err := client.Rubric(ctx)
		if err != nil {
			return err
		}
		RenderRubric(stdout, r)
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(stderr)
		limit := fs.Int("limit", 0, "Maximum number of evaluations (default: server default)")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		list, err := client.List(ctx, *limit)
		if err != nil {
			return err
		}
		RenderEvaluations(stdout, list)
		return nil

	case "get":
		if len(args) != 1 {
			fmt.Fprintln(stderr, "usage: evalctl get <id>")
			return errUsage
		}
		e, err := client.Get(ctx, args[0])
		if err != nil {
			return err
		}
		RenderEvaluation(stdout, e)
		return nil

	case "stats":
		s, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		RenderStats(stdout, s)
		return nil

	case "seed":
		fs := flag.NewFlagSet("seed", flag.ContinueOnError)
		fs.SetOutput(stderr)
		sc := SeedConfig{}
		fs.IntVar(&sc.Count, "count", defaultSeedCount, "Number of evaluations to submit")
		fs.IntVar(&sc.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		fs.Int64Var(&sc.Seed, "seed", defaultSeed, "Generator seed")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if sc.Count < 1 {
			fmt.Fprintln(stderr, "count must be positive")
			return errUsage
		}
		rep, err := Seed(ctx, client, sc)
		RenderSeedReport(stdout, rep)
		return err

	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		ShowHelp(stderr)
		return errUsage
	}
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `BreedGrade Evaluation Client
============================

Usage:
  evalctl [options] <command> [command options]

Commands:
  health                 Check that the service is up
  rubric                 Show the scoring traits
  list [-limit N]        List evaluations, newest first
  get <id>               Show one evaluation with per-trait scores
  stats                  Show the evaluation count and average score
  seed [-count N] [-workers N] [-seed S]
                         Submit generated evaluations and verify the totals

Options:
  -url string
        Base URL of the service (default "http://localhost:8001", or $BREEDGRADE_URL)
  -timeout duration
        HTTP request timeout (default 10s)
  -no-color
        Disable coloured output
  -verbose
        Enable verbose logging

Examples:
  evalctl stats
  evalctl -url http://localhost:8080 list -limit 10
  evalctl seed -count 500 -workers 16 -seed 42
`)
}
