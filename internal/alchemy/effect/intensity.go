package effect

// Action is a unary side-effecting action against a target.
type Action[T any] func(target T)

// Intensity is an action paired with the number of times it runs.
type Intensity[T any] struct {
	action Action[T]
	calls  int
}

// Wrap returns an intensity of one call, the form a bare action takes once
// placed in a potion.
func Wrap[T any](action Action[T]) Intensity[T] {
	return New(action, 1)
}

// New returns an intensity with an explicit call count. Negative counts
// clamp to zero.
func New[T any](action Action[T], calls int) Intensity[T] {
	return Intensity[T]{action: action, calls: clamp(calls)}
}

// Calls returns the number of times Invoke runs the action.
func (i Intensity[T]) Calls() int {
	return i.calls
}

// Action returns the wrapped action.
func (i Intensity[T]) Action() Action[T] {
	return i.action
}

// Invoke runs the action Calls times against target.
func (i Intensity[T]) Invoke(target T) {
	if i.action == nil {
		return
	}
	for n := 0; n < i.calls; n++ {
		i.action(target)
	}
}

// WithCalls returns a copy running the same action calls times.
func (i Intensity[T]) WithCalls(calls int) Intensity[T] {
	return New(i.action, calls)
}

// Scale multiplies the call count by factor using Round.
func (i Intensity[T]) Scale(factor float64) Intensity[T] {
	return i.WithCalls(Round(float64(i.calls) * factor))
}

// Combine adds other's call count to this one, keeping this action.
func (i Intensity[T]) Combine(other Intensity[T]) Intensity[T] {
	return i.WithCalls(i.calls + other.calls)
}

// CombineAction adds a bare action, which counts as a single call.
func (i Intensity[T]) CombineAction(Action[T]) Intensity[T] {
	return i.WithCalls(i.calls + 1)
}

// Divide divides the call count by divisor using Round. A zero divisor
// leaves the count unchanged.
func (i Intensity[T]) Divide(divisor float64) Intensity[T] {
	if divisor == 0 {
		return i
	}
	return i.WithCalls(Round(float64(i.calls) / divisor))
}

func clamp(calls int) int {
	if calls < 0 {
		return 0
	}
	return calls
}
