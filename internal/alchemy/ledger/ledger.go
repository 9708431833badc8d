package ledger

import (
	"reflect"
	"sort"

	"github.com/louisbranch/potionlab/internal/alchemy/effect"
	"github.com/louisbranch/potionlab/internal/alchemy/potion"
)

// Ledger tracks timed potion applications over targets of type T.
type Ledger[T Target] struct {
	observers []Observer

	tick    int
	next    Handle
	apps    []*application[T]
	byID    map[Handle]*application[T]
	initial map[string]any
}

type application[T Target] struct {
	handle    Handle
	target    T
	targetID  string
	remaining int
	effects   []capturedEffect[T]
}

type capturedEffect[T Target] struct {
	name      string
	intensity effect.Intensity[T]
}

// Report summarizes one Tick.
type Report struct {
	Tick     int
	Expired  []Expiry
	Restored []RestoreEvent
}

// New returns an empty ledger.
func New[T Target](opts ...Option) *Ledger[T] {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Ledger[T]{
		observers: cfg.observers,
		byID:      make(map[Handle]*application[T]),
		initial:   make(map[string]any),
	}
}

// Apply invokes every pending effect of p against target and registers a
// timed application lasting p.Duration() ticks. Effects run in descending
// order of the sum of their name's code points, ties keeping the potion's
// name order. The potion is depleted afterwards even if some of its effects
// had been consumed before.
func (l *Ledger[T]) Apply(target T, p *potion.Potion[T]) (Handle, error) {
	if isNil(target) {
		return 0, ErrTargetRequired
	}
	if err := p.Check(); err != nil {
		return 0, err
	}

	pending := p.Pending()
	sort.SliceStable(pending, func(i, j int) bool {
		return codePointSum(pending[i]) > codePointSum(pending[j])
	})
	captured := make([]capturedEffect[T], 0, len(pending))
	for _, name := range pending {
		intensity, err := p.Consume(name)
		if err != nil {
			return 0, err
		}
		captured = append(captured, capturedEffect[T]{name: name, intensity: intensity})
	}

	targetID := target.TargetID()
	_, seen := l.initial[targetID]
	if !seen {
		l.initial[targetID] = target.Snapshot()
	}

	l.next++
	app := &application[T]{
		handle:    l.next,
		target:    target,
		targetID:  targetID,
		remaining: p.Duration(),
		effects:   captured,
	}
	l.apps = append(l.apps, app)
	l.byID[app.handle] = app

	applied := make([]AppliedEffect, 0, len(captured))
	for _, c := range captured {
		c.intensity.Invoke(target)
		applied = append(applied, AppliedEffect{Name: c.name, Calls: c.intensity.Calls()})
	}
	p.MarkDepleted()

	event := ApplyEvent{
		Handle:    app.handle,
		TargetID:  targetID,
		Tick:      l.tick,
		Duration:  app.remaining,
		Effects:   applied,
		FirstTime: !seen,
	}
	for _, o := range l.observers {
		o.Applied(event)
	}
	return app.handle, nil
}

// Tick advances time by one step. Every application loses one tick; those
// reaching zero or below expire. Each target with an expiring application is
// restored once from its captured state, then every application still
// active on it is replayed at its captured intensity.
func (l *Ledger[T]) Tick() Report {
	l.tick++
	report := Report{Tick: l.tick}

	for _, app := range l.apps {
		app.remaining--
	}

	var expiring []*application[T]
	kept := make([]*application[T], 0, len(l.apps))
	for _, app := range l.apps {
		if app.remaining <= 0 {
			expiring = append(expiring, app)
			continue
		}
		kept = append(kept, app)
	}
	if len(expiring) == 0 {
		return report
	}

	restored := make(map[string]struct{}, len(expiring))
	for _, app := range expiring {
		expiry := Expiry{Handle: app.handle, TargetID: app.targetID, Tick: l.tick}
		report.Expired = append(report.Expired, expiry)
		for _, o := range l.observers {
			o.Expired(expiry)
		}

		if _, done := restored[app.targetID]; done {
			continue
		}
		restored[app.targetID] = struct{}{}
		app.target.Restore(l.initial[app.targetID])

		event := RestoreEvent{TargetID: app.targetID, Tick: l.tick}
		for _, active := range kept {
			if active.targetID != app.targetID {
				continue
			}
			for _, c := range active.effects {
				c.intensity.Invoke(active.target)
			}
			event.Replayed = append(event.Replayed, active.handle)
		}
		report.Restored = append(report.Restored, event)
		for _, o := range l.observers {
			o.Restored(event)
		}
	}

	for _, app := range expiring {
		delete(l.byID, app.handle)
	}
	l.apps = kept
	return report
}

// Now returns the number of ticks elapsed.
func (l *Ledger[T]) Now() int {
	return l.tick
}

// Remaining returns the ticks left for an active application.
func (l *Ledger[T]) Remaining(handle Handle) (int, bool) {
	app, ok := l.byID[handle]
	if !ok {
		return 0, false
	}
	return app.remaining, true
}

// Active returns the number of registered applications.
func (l *Ledger[T]) Active() int {
	return len(l.apps)
}

// ActiveFor returns the handles of applications on targetID in application
// order.
func (l *Ledger[T]) ActiveFor(targetID string) []Handle {
	var handles []Handle
	for _, app := range l.apps {
		if app.targetID == targetID {
			handles = append(handles, app.handle)
		}
	}
	return handles
}

// Captured reports whether the ledger holds an initial state for targetID.
func (l *Ledger[T]) Captured(targetID string) bool {
	_, ok := l.initial[targetID]
	return ok
}

// Forget drops the captured initial state of a target with no active
// applications, so the next Apply captures a fresh state.
func (l *Ledger[T]) Forget(targetID string) error {
	if len(l.ActiveFor(targetID)) > 0 {
		return targetActiveError(targetID)
	}
	delete(l.initial, targetID)
	return nil
}

// isNil catches nil interfaces and typed nil pointers, maps, slices, funcs
// and channels wrapped in T.
func isNil(target any) bool {
	if target == nil {
		return true
	}
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func codePointSum(name string) int {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return sum
}
