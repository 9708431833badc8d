package potionsim

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/potionlab/internal/alchemy/journal/sqlite"
	"github.com/louisbranch/potionlab/internal/platform/errors/i18n"
	"github.com/louisbranch/potionlab/internal/sim"
)

const healScenario = `local scene = Scenario.new("heal")
scene:subject("hero", {health = 5})
scene:brew("tonic", {duration = 1, effects = {Effects.add("heal", "health", 2)}})
scene:apply("tonic", "hero")
scene:expect("hero", {health = 7})
scene:tick()
scene:expect("hero", {health = 5})
return scene
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.lua")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("potionsim", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q, want en-US", cfg.Locale)
	}
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("POTIONLAB_SCENARIO_FILE", "env.lua")
	t.Setenv("POTIONLAB_JOURNAL_PATH", "env.db")
	t.Setenv("POTIONLAB_SCENARIO_ASSERT", "false")

	fs := flag.NewFlagSet("potionsim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-scenario", "flag.lua", "-locale", "pt-BR"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Scenario != "flag.lua" {
		t.Fatalf("scenario = %q, want flag.lua", cfg.Scenario)
	}
	if cfg.JournalPath != "env.db" {
		t.Fatalf("journal path = %q, want env.db", cfg.JournalPath)
	}
	if cfg.Assertions {
		t.Fatal("expected assertions disabled from env")
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", cfg.Locale)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected scenario path error")
	}
}

func TestRunWritesSummary(t *testing.T) {
	t.Setenv("POTIONLAB_OTEL_ENDPOINT", "")

	var out bytes.Buffer
	cfg := Config{Scenario: writeScenario(t, healScenario), Assertions: true, Locale: "en-US", RunID: "run-1"}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	output := out.String()
	for _, want := range []string{`scenario "heal" run run-1`, "ticks 1, applied 1, expired 1", "hero: health=5"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output %q missing %q", output, want)
		}
	}
}

func TestRunJournalsToSQLite(t *testing.T) {
	t.Setenv("POTIONLAB_OTEL_ENDPOINT", "")

	journalPath := filepath.Join(t.TempDir(), "journal.db")
	cfg := Config{
		Scenario:    writeScenario(t, healScenario),
		Assertions:  true,
		JournalPath: journalPath,
		RunID:       "sqlite-run",
	}
	if err := Run(context.Background(), cfg, nil, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	store, err := sqlite.Open(journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()
	entries, err := store.List(context.Background(), "sqlite-run")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
}

func TestRunReportsLocalizedDomainError(t *testing.T) {
	t.Setenv("POTIONLAB_OTEL_ENDPOINT", "")

	script := `local scene = Scenario.new("spent")
scene:subject("hero", {})
scene:brew("tonic", {duration = 1, effects = {Effects.add("heal", "health", 1)}})
scene:apply("tonic", "hero")
scene:apply("tonic", "hero")
return scene
`
	var errOut bytes.Buffer
	cfg := Config{Scenario: writeScenario(t, script), Assertions: true, Locale: "pt-BR"}
	if err := Run(context.Background(), cfg, nil, &errOut); err == nil {
		t.Fatal("expected depleted error")
	}
	if !strings.Contains(errOut.String(), "POTION_DEPLETED: A poção está esgotada (FailedPrecondition)") {
		t.Fatalf("error output = %q, want localized depleted message", errOut.String())
	}
}

func TestReportErrorWritesStatus(t *testing.T) {
	tests := []struct {
		name   string
		locale string
		err    error
		want   string
	}{
		{
			name:   "closed driver",
			locale: "en-US",
			err:    fmt.Errorf("step 3 (tick): %w", sim.ErrClosed),
			want:   "SIM_CLOSED: The simulation has already finished (FailedPrecondition)\n",
		},
		{
			name:   "missing subject",
			locale: "pt-BR",
			err:    fmt.Errorf("step 2 (apply): %w", subjectNotFound(t)),
			want:   "SUBJECT_NOT_FOUND: O sujeito ghost não foi encontrado (NotFound)\n",
		},
		{
			name:   "plain error",
			locale: "en-US",
			err:    errors.New("boom"),
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, i18n.GetCatalog(tt.locale), tt.err)
			if got := buf.String(); got != tt.want {
				t.Fatalf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func subjectNotFound(t *testing.T) error {
	t.Helper()
	d, err := sim.NewDriver(context.Background(), sim.Config{})
	if err != nil {
		t.Fatalf("new driver: %v", err)
	}
	_, err = d.Subject("ghost")
	if err == nil {
		t.Fatal("expected subject not found")
	}
	return err
}
