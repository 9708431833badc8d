package potion

import "github.com/louisbranch/potionlab/internal/alchemy/effect"

// Builder assembles a potion while keeping the order effects were added in.
// The order breaks ties when a ledger sorts effects for application.
type Builder[T any] struct {
	duration int
	effects  map[string]effect.Intensity[T]
	order    []string
}

// NewBuilder starts a potion with the given duration.
func NewBuilder[T any](duration int) *Builder[T] {
	return &Builder[T]{
		duration: duration,
		effects:  make(map[string]effect.Intensity[T]),
	}
}

// Add places an intensity under name. Re-adding a name replaces its
// intensity and keeps its original position.
func (b *Builder[T]) Add(name string, intensity effect.Intensity[T]) *Builder[T] {
	if _, ok := b.effects[name]; !ok {
		b.order = append(b.order, name)
	}
	b.effects[name] = intensity
	return b
}

// AddAction places a bare action under name at intensity one.
func (b *Builder[T]) AddAction(name string, action effect.Action[T]) *Builder[T] {
	return b.Add(name, effect.Wrap(action))
}

// Build returns a fresh potion. The builder may keep being used.
func (b *Builder[T]) Build() *Potion[T] {
	return build(b.effects, b.order, b.duration)
}
