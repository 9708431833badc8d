// Package potionsim runs potion scenario scripts from the command line.
package potionsim

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/message"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"

	"github.com/louisbranch/potionlab/internal/alchemy/journal/sqlite"
	apperrors "github.com/louisbranch/potionlab/internal/platform/errors"
	"github.com/louisbranch/potionlab/internal/platform/errors/i18n"
	entrypoint "github.com/louisbranch/potionlab/internal/platform/cmd"
	"github.com/louisbranch/potionlab/internal/tools/scenario"
)

// Config holds potionsim command configuration. Env tags are read with the
// POTIONLAB_ prefix.
type Config struct {
	Scenario    string        `env:"SCENARIO_FILE"`
	Assertions  bool          `env:"SCENARIO_ASSERT"  envDefault:"true"`
	Verbose     bool          `env:"VERBOSE"`
	Timeout     time.Duration `env:"SCENARIO_TIMEOUT" envDefault:"10s"`
	JournalPath string        `env:"JOURNAL_PATH"`
	RunID       string        `env:"RUN_ID"`
	Locale      string        `env:"LOCALE"           envDefault:"en-US"`
}

// ParseConfig parses env then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "sqlite journal path (empty disables journaling)")
	fs.StringVar(&cfg.RunID, "run-id", cfg.RunID, "journal run id (random when empty)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for summaries and error messages")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the potionsim command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Scenario) == "" {
		return errors.New("scenario path is required")
	}

	logger := log.New(errOut, "", 0)
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServicePotionSim, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return run(ctx, cfg, logger, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, logger *log.Logger, out io.Writer, errOut io.Writer) error {
	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	runCfg := scenario.Config{
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
		RunID:      cfg.RunID,
	}

	if path := strings.TrimSpace(cfg.JournalPath); path != "" {
		store, err := sqlite.Open(path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Printf("close journal: %v", err)
			}
		}()
		runCfg.Journal = store
	}

	catalog := i18n.GetCatalog(cfg.Locale)
	result, err := scenario.RunFile(ctx, runCfg, cfg.Scenario)
	if err != nil {
		reportError(errOut, catalog, err)
		return err
	}
	writeSummary(out, catalog, result)
	return nil
}

// reportError writes the status of a domain error as "REASON: message (code)",
// reading the reason and localized message from the status details.
func reportError(w io.Writer, catalog *i18n.Catalog, err error) {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		return
	}
	userMessage := catalog.Format(string(domainErr.Code), domainErr.Metadata)
	st := status.Convert(domainErr.ToGRPCStatus(catalog.Locale(), userMessage))

	reason := string(domainErr.Code)
	localized := userMessage
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			reason = d.GetReason()
		case *errdetails.LocalizedMessage:
			localized = d.GetMessage()
		}
	}
	fmt.Fprintf(w, "%s: %s (%s)\n", reason, localized, st.Code())
}

func writeSummary(w io.Writer, catalog *i18n.Catalog, result scenario.Result) {
	p := message.NewPrinter(catalog.Tag())
	p.Fprintf(w, "scenario %q run %s\n", result.Name, result.RunID)
	p.Fprintf(w, "steps %d, ticks %d, applied %d, expired %d, restored %d\n",
		result.Steps, result.Ticks, result.Applied, result.Expired, result.Restored)

	subjects := make([]string, 0, len(result.Subjects))
	for subjectID := range result.Subjects {
		subjects = append(subjects, subjectID)
	}
	sort.Strings(subjects)
	for _, subjectID := range subjects {
		attrs := result.Subjects[subjectID]
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, p.Sprintf("%s=%v", name, attrs[name]))
		}
		p.Fprintf(w, "  %s: %s\n", subjectID, strings.Join(parts, " "))
	}
}
