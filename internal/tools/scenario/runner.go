package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/potionlab/internal/alchemy/journal"
	"github.com/louisbranch/potionlab/internal/alchemy/ledger"
	"github.com/louisbranch/potionlab/internal/platform/timeouts"
	"github.com/louisbranch/potionlab/internal/sim"
)

// Config controls scenario execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Journal records each run when set.
	Journal journal.Store
	// RunID names the journal run; a random id is used when empty.
	RunID  string
	Tracer trace.Tracer
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    timeouts.ScenarioStep,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua scenarios against a simulation driver.
type Runner struct {
	cfg        Config
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
}

// NewRunner prepares a scenario runner.
// Config defaults (logger, timeout) are applied here so they are testable.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = timeouts.ScenarioStep
	}

	return &Runner{
		cfg:        cfg,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) (Result, error) {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return Result{}, err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps against a fresh driver.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) (Result, error) {
	if scenario == nil {
		return Result{}, errors.New("scenario is required")
	}
	driver, err := sim.NewDriver(ctx, sim.Config{
		Logger:  r.logger,
		Verbose: r.verbose,
		Journal: r.cfg.Journal,
		RunID:   r.cfg.RunID,
		Tracer:  r.cfg.Tracer,
	})
	if err != nil {
		return Result{}, err
	}
	result := Result{Name: scenario.Name, RunID: driver.RunID(), Steps: len(scenario.Steps)}

	r.logf("scenario start: %s (%d steps, run %s)", scenario.Name, len(scenario.Steps), driver.RunID())
	state := &scenarioState{
		driver:  driver,
		potions: map[string]*sim.Potion{},
		handles: map[string]ledger.Handle{},
	}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			_ = driver.Close()
			return result, fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	if err := driver.Close(); err != nil {
		return result, err
	}

	result.Ticks = driver.Now()
	result.Applied = state.applied
	result.Expired = state.expired
	result.Restored = state.restored
	result.Subjects = make(map[string]map[string]float64)
	for _, subjectID := range driver.Subjects() {
		s, err := driver.Subject(subjectID)
		if err != nil {
			return result, err
		}
		result.Subjects[subjectID] = s.Attributes()
	}
	r.logf("scenario done: %s", scenario.Name)
	return result, nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
