package potion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/potionlab/internal/alchemy/effect"
)

// Potion is a single-use bundle of named intensities with a duration.
type Potion[T any] struct {
	effects  map[string]effect.Intensity[T]
	order    []string
	duration int
	usable   bool
	depleted bool
	consumed map[string]struct{}
}

// New copies effects into a fresh potion. Go maps carry no insertion order,
// so the potion orders names lexically; use a Builder to keep a custom order.
func New[T any](effects map[string]effect.Intensity[T], duration int) *Potion[T] {
	order := make([]string, 0, len(effects))
	for name := range effects {
		order = append(order, name)
	}
	sort.Strings(order)
	return build(effects, order, duration)
}

// FromActions wraps each bare action at intensity one.
func FromActions[T any](actions map[string]effect.Action[T], duration int) *Potion[T] {
	effects := make(map[string]effect.Intensity[T], len(actions))
	for name, action := range actions {
		effects[name] = effect.Wrap(action)
	}
	return New(effects, duration)
}

func build[T any](effects map[string]effect.Intensity[T], order []string, duration int) *Potion[T] {
	copied := make(map[string]effect.Intensity[T], len(order))
	names := make([]string, 0, len(order))
	for _, name := range order {
		intensity, ok := effects[name]
		if !ok {
			continue
		}
		if _, dup := copied[name]; dup {
			continue
		}
		copied[name] = intensity
		names = append(names, name)
	}
	return &Potion[T]{
		effects:  copied,
		order:    names,
		duration: duration,
		usable:   true,
		consumed: make(map[string]struct{}),
	}
}

// Duration returns the number of ticks an application of the potion lasts.
func (p *Potion[T]) Duration() int {
	return p.duration
}

// Usable reports whether the potion has not yet been an operator operand.
func (p *Potion[T]) Usable() bool {
	return p.usable
}

// Depleted reports whether every effect has been consumed.
func (p *Potion[T]) Depleted() bool {
	return p.depleted
}

// Names returns every effect name in the potion's order.
func (p *Potion[T]) Names() []string {
	return append([]string(nil), p.order...)
}

// Pending returns the names not yet consumed, in the potion's order.
func (p *Potion[T]) Pending() []string {
	pending := make([]string, 0, len(p.order)-len(p.consumed))
	for _, name := range p.order {
		if _, done := p.consumed[name]; !done {
			pending = append(pending, name)
		}
	}
	return pending
}

// Calls reads the intensity of name without consuming it.
func (p *Potion[T]) Calls(name string) (int, bool) {
	intensity, ok := p.effects[name]
	if !ok {
		return 0, false
	}
	return intensity.Calls(), true
}

// IntensitySum returns the sum of every effect's call count.
func (p *Potion[T]) IntensitySum() int {
	sum := 0
	for _, intensity := range p.effects {
		sum += intensity.Calls()
	}
	return sum
}

// Check is the access guard run before every operator and effect read.
func (p *Potion[T]) Check() error {
	if p == nil {
		return ErrPotionRequired
	}
	if p.depleted {
		return ErrDepleted
	}
	if !p.usable {
		return ErrUnusable
	}
	return nil
}

// Consume returns the named intensity and marks it consumed. The potion
// becomes depleted once every name has been consumed.
func (p *Potion[T]) Consume(name string) (effect.Intensity[T], error) {
	if err := p.Check(); err != nil {
		return effect.Intensity[T]{}, err
	}
	intensity, ok := p.effects[name]
	if !ok {
		return effect.Intensity[T]{}, unknownEffectError(name)
	}
	if _, done := p.consumed[name]; done {
		return effect.Intensity[T]{}, effectConsumedError(name)
	}
	p.consumed[name] = struct{}{}
	if len(p.consumed) == len(p.effects) {
		p.depleted = true
	}
	return intensity, nil
}

// MarkDepleted forces the depleted state. The ledger calls it after an
// application regardless of which names were still pending.
func (p *Potion[T]) MarkDepleted() {
	p.depleted = true
}

// String renders the potion's effects and duration for logs.
func (p *Potion[T]) String() string {
	if p == nil {
		return "potion(nil)"
	}
	parts := make([]string, 0, len(p.order))
	for _, name := range p.order {
		parts = append(parts, fmt.Sprintf("%s:%d", name, p.effects[name].Calls()))
	}
	return fmt.Sprintf("potion{%s} for %d", strings.Join(parts, " "), p.duration)
}
