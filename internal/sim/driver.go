// Package sim drives a potion ledger over a registry of subjects.
package sim

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/potionlab/internal/alchemy/journal"
	"github.com/louisbranch/potionlab/internal/alchemy/ledger"
	"github.com/louisbranch/potionlab/internal/alchemy/potion"
	"github.com/louisbranch/potionlab/internal/alchemy/subject"
	apperrors "github.com/louisbranch/potionlab/internal/platform/errors"
	"github.com/louisbranch/potionlab/internal/platform/id"
	platformotel "github.com/louisbranch/potionlab/internal/platform/otel"
)

const tracerName = "github.com/louisbranch/potionlab/internal/sim"

var (
	// ErrSubjectNotFound indicates an unregistered subject id.
	ErrSubjectNotFound = apperrors.New(apperrors.CodeSubjectNotFound, "subject not found")
	// ErrSubjectDuplicate indicates a subject id registered twice.
	ErrSubjectDuplicate = apperrors.New(apperrors.CodeSubjectDuplicate, "subject already exists")
	// ErrSubjectInvalidID indicates a blank subject id.
	ErrSubjectInvalidID = apperrors.New(apperrors.CodeSubjectInvalidID, "subject id is required")
	// ErrClosed indicates use of a closed driver.
	ErrClosed = apperrors.New(apperrors.CodeSimClosed, "driver is closed")
)

// Potion is the bundle type the driver applies.
type Potion = potion.Potion[*subject.Subject]

// Config controls driver construction.
type Config struct {
	Logger  *log.Logger
	Verbose bool
	// Journal receives ledger events when set.
	Journal journal.Store
	// RunID names the journal run; a random id is used when empty.
	RunID  string
	Tracer trace.Tracer
}

// Driver serializes ledger access for one simulation run.
type Driver struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger[*subject.Subject]
	subjects map[string]*subject.Subject
	recorder *journal.Recorder
	store    journal.Store
	runID    string
	tracer   trace.Tracer
	logger   *log.Logger
	verbose  bool
	closed   bool
}

// NewDriver creates a driver. Journal writes use the ctx of each Apply and
// Tick call, and ctx only when none is bound.
func NewDriver(ctx context.Context, cfg Config) (*Driver, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = platformotel.Tracer(tracerName)
	}
	runID := strings.TrimSpace(cfg.RunID)
	if runID == "" {
		generated, err := id.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate run id: %w", err)
		}
		runID = generated
	}

	d := &Driver{
		subjects: make(map[string]*subject.Subject),
		store:    cfg.Journal,
		runID:    runID,
		tracer:   tracer,
		logger:   logger,
		verbose:  cfg.Verbose,
	}
	var opts []ledger.Option
	if cfg.Journal != nil {
		d.recorder = journal.NewRecorder(ctx, cfg.Journal, runID)
		opts = append(opts, ledger.WithObserver(d.recorder))
	}
	d.ledger = ledger.New[*subject.Subject](opts...)
	return d, nil
}

// RunID returns the journal run id.
func (d *Driver) RunID() string {
	return d.runID
}

// AddSubject registers a subject with its starting attributes.
func (d *Driver) AddSubject(subjectID string, attrs map[string]float64) (*subject.Subject, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, ErrSubjectInvalidID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if _, ok := d.subjects[subjectID]; ok {
		return nil, subjectError(apperrors.CodeSubjectDuplicate, "subject already exists", subjectID)
	}
	s := subject.New(subjectID, attrs)
	d.subjects[subjectID] = s
	d.logf("subject added: %s", subjectID)
	return s, nil
}

// Subject returns a registered subject.
func (d *Driver) Subject(subjectID string) (*subject.Subject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lookup(subjectID)
}

// Subjects returns registered subject ids sorted.
func (d *Driver) Subjects() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.subjects))
	for subjectID := range d.subjects {
		ids = append(ids, subjectID)
	}
	sort.Strings(ids)
	return ids
}

// Apply applies p to a registered subject.
func (d *Driver) Apply(ctx context.Context, subjectID string, p *Potion) (ledger.Handle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ctx, span := d.tracer.Start(ctx, "sim.Apply", trace.WithAttributes(
		attribute.String("potionlab.subject_id", subjectID),
	))
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.bind(ctx)
	handle, err := d.apply(subjectID, p)
	if err != nil {
		recordSpanError(span, err)
		return 0, err
	}
	span.SetAttributes(
		attribute.Int64("potionlab.handle", int64(handle)),
		attribute.Int("potionlab.tick", d.ledger.Now()),
	)
	return handle, nil
}

func (d *Driver) apply(subjectID string, p *Potion) (ledger.Handle, error) {
	if d.closed {
		return 0, ErrClosed
	}
	target, err := d.lookup(subjectID)
	if err != nil {
		return 0, err
	}
	summary := "<nil>"
	if p != nil {
		summary = p.String()
	}
	handle, err := d.ledger.Apply(target, p)
	if err != nil {
		return 0, err
	}
	if err := d.journalErr(); err != nil {
		return handle, err
	}
	d.logf("apply %d: %s -> %s", handle, summary, subjectID)
	return handle, nil
}

// Tick advances the ledger one step.
func (d *Driver) Tick(ctx context.Context) (ledger.Report, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Report{}, err
	}
	ctx, span := d.tracer.Start(ctx, "sim.Tick")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.bind(ctx)
	report, err := d.tick()
	if err != nil {
		recordSpanError(span, err)
		return report, err
	}
	span.SetAttributes(
		attribute.Int("potionlab.tick", report.Tick),
		attribute.Int("potionlab.expired", len(report.Expired)),
		attribute.Int("potionlab.restored", len(report.Restored)),
	)
	return report, nil
}

func (d *Driver) tick() (ledger.Report, error) {
	if d.closed {
		return ledger.Report{}, ErrClosed
	}
	report := d.ledger.Tick()
	for _, expiry := range report.Expired {
		d.logf("tick %d: application %d on %s expired", report.Tick, expiry.Handle, expiry.TargetID)
	}
	for _, restore := range report.Restored {
		d.logf("tick %d: %s restored, replayed %d", report.Tick, restore.TargetID, len(restore.Replayed))
	}
	return report, d.journalErr()
}

// Advance ticks n times and returns each report.
func (d *Driver) Advance(ctx context.Context, n int) ([]ledger.Report, error) {
	if n < 0 {
		return nil, fmt.Errorf("tick count must not be negative: %d", n)
	}
	reports := make([]ledger.Report, 0, n)
	for i := 0; i < n; i++ {
		report, err := d.Tick(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Now returns the ticks elapsed.
func (d *Driver) Now() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Now()
}

// Remaining returns the ticks left for an application.
func (d *Driver) Remaining(handle ledger.Handle) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Remaining(handle)
}

// Active returns the number of live applications.
func (d *Driver) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Active()
}

// Forget drops a subject's captured state once nothing is active on it.
func (d *Driver) Forget(subjectID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.lookup(subjectID); err != nil {
		return err
	}
	return d.ledger.Forget(subjectID)
}

// Entries lists the journal entries of this run.
func (d *Driver) Entries(ctx context.Context) ([]journal.Entry, error) {
	if d.store == nil {
		return nil, nil
	}
	return d.store.List(ctx, d.runID)
}

// Close stops the driver and reports any journal failure.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.journalErr()
}

func (d *Driver) lookup(subjectID string) (*subject.Subject, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, ErrSubjectInvalidID
	}
	s, ok := d.subjects[subjectID]
	if !ok {
		return nil, subjectError(apperrors.CodeSubjectNotFound, "subject not found", subjectID)
	}
	return s, nil
}

// bind routes journal writes of the next ledger call through ctx. Callers
// hold d.mu.
func (d *Driver) bind(ctx context.Context) {
	if d.recorder != nil {
		d.recorder.Bind(ctx)
	}
}

func (d *Driver) journalErr() error {
	if d.recorder == nil {
		return nil
	}
	if err := d.recorder.Err(); err != nil {
		return fmt.Errorf("journal run %s: %w", d.runID, err)
	}
	return nil
}

func (d *Driver) logf(format string, args ...any) {
	if !d.verbose || d.logger == nil {
		return
	}
	d.logger.Printf(format, args...)
}

func subjectError(code apperrors.Code, message, subjectID string) error {
	return apperrors.WithMetadata(code, message+": "+subjectID, map[string]string{"Subject": subjectID})
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	span.SetAttributes(attribute.String("potionlab.error_code", string(apperrors.CodeOf(err))))
}
