package potion

import "github.com/louisbranch/potionlab/internal/alchemy/effect"

// Combine merges two potions. Shared names add their call counts, the
// result lasts as long as the longer operand, and both operands become
// unusable.
func (p *Potion[T]) Combine(other *Potion[T]) (*Potion[T], error) {
	if err := checkBoth(p, other); err != nil {
		return nil, err
	}

	merged := make(map[string]effect.Intensity[T], len(p.effects)+len(other.effects))
	order := make([]string, 0, len(p.effects)+len(other.effects))
	for _, name := range other.order {
		merged[name] = other.effects[name]
		order = append(order, name)
	}
	for _, name := range p.order {
		intensity := p.effects[name]
		if shared, ok := other.effects[name]; ok {
			merged[name] = intensity.Combine(shared)
			continue
		}
		merged[name] = intensity
		order = append(order, name)
	}

	result := build(merged, order, max(p.duration, other.duration))
	p.usable = false
	other.usable = false
	return result, nil
}

// Scale multiplies every call count by factor, rounding each with
// effect.Round. The receiver becomes unusable.
func (p *Potion[T]) Scale(factor float64) (*Potion[T], error) {
	if err := p.Check(); err != nil {
		return nil, err
	}

	scaled := make(map[string]effect.Intensity[T], len(p.effects))
	for name, intensity := range p.effects {
		scaled[name] = intensity.Scale(factor)
	}

	result := build(scaled, p.order, p.duration)
	p.usable = false
	return result, nil
}

// Subtract purifies the receiver by other. Every name in other must exist
// in the receiver. A name whose intensity in other is at least the
// receiver's is removed; otherwise the counts are subtracted. Both operands
// become unusable unless the effects are incompatible.
func (p *Potion[T]) Subtract(other *Potion[T]) (*Potion[T], error) {
	if err := checkBoth(p, other); err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range other.order {
		if _, ok := p.effects[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, incompatibleEffectsError(missing)
	}

	purified := make(map[string]effect.Intensity[T], len(p.effects))
	order := make([]string, 0, len(p.order))
	for _, name := range p.order {
		left := p.effects[name]
		right, shared := other.effects[name]
		switch {
		case !shared:
			purified[name] = left
		case right.Calls() >= left.Calls():
			continue
		default:
			purified[name] = left.WithCalls(left.Calls() - right.Calls())
		}
		order = append(order, name)
	}

	result := build(purified, order, p.duration)
	p.usable = false
	other.usable = false
	return result, nil
}

// MaxSplitParts bounds the number of potions Split may return.
const MaxSplitParts = 4096

// Split divides the potion into parts equal potions, each call count
// divided by parts with effect.Round. parts must be between 1 and
// MaxSplitParts. The receiver becomes unusable.
func (p *Potion[T]) Split(parts int) ([]*Potion[T], error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	if parts < 1 || parts > MaxSplitParts {
		return nil, invalidSplitError(parts)
	}

	divided := make(map[string]effect.Intensity[T], len(p.effects))
	for name, intensity := range p.effects {
		divided[name] = intensity.Divide(float64(parts))
	}

	results := make([]*Potion[T], parts)
	for i := range results {
		results[i] = build(divided, p.order, p.duration)
	}
	p.usable = false
	return results, nil
}

// Equal reports whether every effect of the receiver exists in other with
// the same call count. Names only other has are not considered, so the
// relation is not symmetric.
func (p *Potion[T]) Equal(other *Potion[T]) (bool, error) {
	if err := checkBoth(p, other); err != nil {
		return false, err
	}
	for name, intensity := range p.effects {
		theirs, ok := other.effects[name]
		if !ok || theirs.Calls() != intensity.Calls() {
			return false, nil
		}
	}
	return true, nil
}

// CompareIntensity compares the intensity sums of both potions and returns
// -1, 0 or +1.
func (p *Potion[T]) CompareIntensity(other *Potion[T]) (int, error) {
	if err := checkBoth(p, other); err != nil {
		return 0, err
	}
	left, right := p.IntensitySum(), other.IntensitySum()
	switch {
	case left < right:
		return -1, nil
	case left > right:
		return 1, nil
	default:
		return 0, nil
	}
}

// Less reports whether the receiver's intensity sum is below other's.
func (p *Potion[T]) Less(other *Potion[T]) (bool, error) {
	cmp, err := p.CompareIntensity(other)
	return cmp < 0, err
}

// Greater reports whether the receiver's intensity sum is above other's.
func (p *Potion[T]) Greater(other *Potion[T]) (bool, error) {
	cmp, err := p.CompareIntensity(other)
	return cmp > 0, err
}

// LessOrEqual is not supported for potions.
func (p *Potion[T]) LessOrEqual(*Potion[T]) (bool, error) {
	return false, unsupportedComparisonError("<=")
}

// GreaterOrEqual is not supported for potions.
func (p *Potion[T]) GreaterOrEqual(*Potion[T]) (bool, error) {
	return false, unsupportedComparisonError(">=")
}

func checkBoth[T any](left, right *Potion[T]) error {
	if err := left.Check(); err != nil {
		return err
	}
	return right.Check()
}
