package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ifregtest/ifregtest/internal/checks"
	ifconfig "github.com/ifregtest/ifregtest/internal/config"
	"github.com/ifregtest/ifregtest/internal/driver"
	"github.com/ifregtest/ifregtest/internal/history"
	"github.com/ifregtest/ifregtest/internal/protocol"
	"github.com/ifregtest/ifregtest/internal/report"
	"github.com/ifregtest/ifregtest/internal/rterrors"
	ifsignal "github.com/ifregtest/ifregtest/internal/signal"
	"github.com/ifregtest/ifregtest/internal/testfile"
	"github.com/ifregtest/ifregtest/internal/trace"
)

var (
	flagGame       string
	flagInterp     string
	flagList       bool
	flagPre        []string
	flagCheckClass []string
	flagFormat     string
	flagRem        bool
	flagEnv        []string
	flagTimeout    int
	flagVital      int
	flagVerbose    int
	flagReportHTML string
)

var rootCmd = &cobra.Command{
	Use:   "ifregtest TESTFILE [PATTERN...]",
	Short: "Run declarative regression tests against an interactive-fiction interpreter",
	Long: `ifregtest plays a declarative test file through an IF interpreter over the
RemGlk windowing protocol (or a dumb-terminal "cheap" mode), reconstructs the
interpreter's display state, and evaluates the checks attached to each
command.

Examples:
  ifregtest game.regtest
  ifregtest game.regtest "basic*"
  ifregtest --format cheap --interpreter "dfrotz -m" game.regtest`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&flagGame, "game", "", "override the game file path")
	rootCmd.Flags().StringVar(&flagInterp, "interpreter", "", "override the interpreter command, e.g. \"dfrotz -m\"")
	rootCmd.Flags().BoolVar(&flagList, "list", false, "list matching tests instead of running them")
	rootCmd.Flags().StringArrayVar(&flagPre, "pre", nil, "extra setup command, run before every test (repeatable)")
	rootCmd.Flags().StringArrayVar(&flagCheckClass, "checkclass", nil, "load a check-class plugin (glob, repeatable)")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "transport: rem, remsingle, or cheap")
	rootCmd.Flags().BoolVar(&flagRem, "rem", false, "alias for --format rem")
	rootCmd.Flags().StringArrayVar(&flagEnv, "env", nil, "KEY=VALUE environment override (repeatable)")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "per-read timeout in seconds")
	rootCmd.Flags().CountVarP(&flagVital, "vital", "", "twice: stop the run once a second test has aborted (a single --vital has no effect; the {vital} check modifier aborts its test)")
	rootCmd.Flags().CountVarP(&flagVerbose, "verbose", "v", "increase trace verbosity (repeatable)")
	rootCmd.Flags().StringVar(&flagReportHTML, "report-html", "", "write an HTML run report to this path")
}

// Execute runs the root command and exits 1 on any reported failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	testFilePath := args[0]
	patterns := args[1:]

	registry := checks.NewRegistry()
	if len(flagCheckClass) > 0 {
		if err := checks.LoadCheckClasses(registry, flagCheckClass); err != nil {
			return err
		}
	}

	f, err := openTestFile(testFilePath, registry)
	if err != nil {
		return err
	}
	if flagGame != "" {
		f.GameFile = flagGame
	}
	if flagInterp != "" {
		parts := strings.Fields(flagInterp)
		f.Interpreter = parts[0]
		f.InterpArgs = parts[1:]
	}

	selected, err := selectTests(f, patterns)
	if err != nil {
		return err
	}

	if flagList {
		for _, t := range selected {
			fmt.Println(t.Name)
		}
		return nil
	}

	cfg, err := ifconfig.Load(".")
	if err != nil {
		return err
	}
	// The config file's interpreter is the lowest-precedence default:
	// --interpreter and the test file's own ** interpreter: both win.
	if parts := strings.Fields(cfg.Interpreter); f.Interpreter == "" && len(parts) > 0 {
		f.Interpreter = parts[0]
		f.InterpArgs = append(parts[1:], cfg.InterpArgs...)
	}

	opts := driver.Options{
		Format:         resolveFormat(cfg),
		Timeout:        resolveTimeout(cfg),
		Env:            resolveEnv(cfg),
		VitalAbortsRun: flagVital >= 2,
		Metrics:        resolveMetrics(cfg),
	}
	slog.SetLogLoggerLevel(slog.LevelWarn)
	if flagVerbose >= 1 {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
	if flagVerbose >= 2 {
		opts.Trace = trace.New(os.Stderr)
	}
	for _, raw := range flagPre {
		opts.ExtraPre = append(opts.ExtraPre, &testfile.Command{Kind: "line", Raw: raw})
	}

	ctx, stop := ifsignal.NotifyContext()
	defer stop()
	result, err := driver.Run(ctx, f, selected, opts)
	if err != nil {
		return err
	}

	if cfg.History.Enabled {
		hist, err := history.Open(cfg.HistoryPath("."))
		if err != nil {
			return err
		}
		defer hist.Close()
		for _, t := range result.Tests {
			_ = hist.Record(t.Name, t.DurationMS, len(t.Failures), t.Aborted)
		}
	}

	printSummary(result)

	if flagReportHTML != "" {
		body, err := report.Render(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagReportHTML, body, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if n := result.ErrorCount(); n > 0 {
		return fmt.Errorf("FAILED: %d errors", n)
	}
	return nil
}

func openTestFile(path string, registry *checks.Registry) (*testfile.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.KindConfig, err, "open test file %s", path)
	}
	defer fh.Close()
	return testfile.Parse(fh, registry)
}

// selectTests applies the positional glob patterns to the file's test
// names. No patterns means every test. An unmatched pattern suggests the
// closest name via fuzzy matching instead of silently running nothing.
func selectTests(f *testfile.File, patterns []string) ([]*testfile.Test, error) {
	if len(patterns) == 0 {
		return f.Tests, nil
	}

	names := make([]string, len(f.Tests))
	for i, t := range f.Tests {
		names[i] = t.Name
	}

	var out []*testfile.Test
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, rterrors.Wrap(rterrors.KindConfig, err, "invalid test pattern %q", pattern)
		}
		matched := false
		for _, t := range f.Tests {
			if g.Match(t.Name) {
				matched = true
				if !seen[t.Name] {
					seen[t.Name] = true
					out = append(out, t)
				}
			}
		}
		if !matched {
			msg := fmt.Sprintf("pattern %q matched no tests", pattern)
			if m := fuzzy.Find(pattern, names); len(m) > 0 {
				msg += fmt.Sprintf(" (did you mean %q?)", names[m[0].Index])
			}
			return nil, rterrors.New(rterrors.KindConfig, "%s", msg)
		}
	}
	return out, nil
}

func resolveFormat(cfg *ifconfig.Config) driver.Format {
	if flagRem {
		return driver.FormatRem
	}
	if flagFormat != "" {
		return driver.Format(flagFormat)
	}
	if cfg.Format != "" {
		return driver.Format(cfg.Format)
	}
	return driver.FormatRem
}

func resolveTimeout(cfg *ifconfig.Config) time.Duration {
	if flagTimeout > 0 {
		return time.Duration(flagTimeout) * time.Second
	}
	return cfg.Timeout()
}

func resolveEnv(cfg *ifconfig.Config) []string {
	env := os.Environ()
	env = append(env, cfg.Env...)
	env = append(env, flagEnv...)
	return env
}

func resolveMetrics(cfg *ifconfig.Config) protocol.Metrics {
	m := protocol.DefaultMetrics()
	if cfg.Metrics.Width > 0 {
		m.Width = cfg.Metrics.Width
	}
	if cfg.Metrics.Height > 0 {
		m.Height = cfg.Metrics.Height
	}
	if cfg.Metrics.GridCharWidth > 0 {
		m.GridCharWidth = cfg.Metrics.GridCharWidth
	}
	if cfg.Metrics.GridCharHeight > 0 {
		m.GridCharHeight = cfg.Metrics.GridCharHeight
	}
	if cfg.Metrics.BufferCharWidth > 0 {
		m.BufferCharWidth = cfg.Metrics.BufferCharWidth
	}
	if cfg.Metrics.BufferCharHeight > 0 {
		m.BufferCharHeight = cfg.Metrics.BufferCharHeight
	}
	return m
}

func printSummary(result *driver.RunResult) {
	colorize := term.IsTerminal(int(os.Stdout.Fd()))
	for _, t := range result.Tests {
		status := "PASS"
		if len(t.Failures) > 0 {
			status = "FAIL"
		}
		fmt.Printf("%s %s\n", paint(colorize, status), t.Name)
		for _, f := range t.Failures {
			fmt.Printf("  line %d (%s) %s: %s\n", f.Line, f.Target, f.Check, f.Reason)
		}
		if t.Aborted {
			fmt.Println("  (aborted: vital check failed)")
		}
	}
	if result.AbortedRun {
		fmt.Println("RUN ABORTED: repeated vital failures")
	}
	if n := result.ErrorCount(); n > 0 {
		fmt.Printf("FAILED: %d errors\n", n)
	} else {
		fmt.Println("ALL PASSED")
	}
}

func paint(colorize bool, status string) string {
	if !colorize {
		return status
	}
	if status == "PASS" {
		return "\x1b[32m" + status + "\x1b[0m"
	}
	return "\x1b[31m" + status + "\x1b[0m"
}
