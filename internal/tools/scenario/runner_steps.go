package scenario

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/louisbranch/potionlab/internal/alchemy/potion"
	"github.com/louisbranch/potionlab/internal/alchemy/subject"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "subject":
		return r.runSubjectStep(state, step)
	case "brew":
		return r.runBrewStep(state, step)
	case "combine":
		return r.runCombineStep(state, step)
	case "subtract":
		return r.runSubtractStep(state, step)
	case "scale":
		return r.runScaleStep(state, step)
	case "split":
		return r.runSplitStep(state, step)
	case "consume":
		return r.runConsumeStep(state, step)
	case "compare":
		return r.runCompareStep(state, step)
	case "apply":
		return r.runApplyStep(ctx, state, step)
	case "tick":
		return r.runTickStep(ctx, state, step)
	case "forget":
		return r.runForgetStep(state, step)
	case "expect":
		return r.runExpectStep(state, step)
	case "expect_absent":
		return r.runExpectAbsentStep(state, step)
	case "expect_potion":
		return r.runExpectPotionStep(state, step)
	case "expect_remaining":
		return r.runExpectRemainingStep(state, step)
	default:
		return fmt.Errorf("unknown step kind: %s", step.Kind)
	}
}

func (r *Runner) runSubjectStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "name")
	if name == "" {
		return r.failf("subject name is required")
	}
	attrs, err := readAttributes(step.Args, "attrs")
	if err != nil {
		return r.failf("subject %s: %v", name, err)
	}
	_, err = state.driver.AddSubject(name, attrs)
	_, err = r.resolveError(step, err)
	return err
}

func (r *Runner) runBrewStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "name")
	if name == "" {
		return r.failf("brew name is required")
	}
	duration, ok := readInt(step.Args, "duration")
	if !ok {
		return r.failf("brew %s duration is required", name)
	}
	specs, err := readEffectSpecs(step.Args, "effects")
	if err != nil {
		return r.failf("brew %s: %v", name, err)
	}
	builder := potion.NewBuilder[*subject.Subject](duration)
	for _, spec := range specs {
		builder.Add(spec.name, spec.intensity())
	}
	p := builder.Build()
	state.potions[name] = p
	r.logf("brewed %s = %s", name, p)
	return nil
}

func (r *Runner) runCombineStep(state *scenarioState, step Step) error {
	left, right, err := r.operands(state, step)
	if err != nil {
		return err
	}
	result, err := left.Combine(right)
	return r.storeResult(state, step, result, err)
}

func (r *Runner) runSubtractStep(state *scenarioState, step Step) error {
	left, right, err := r.operands(state, step)
	if err != nil {
		return err
	}
	result, err := left.Subtract(right)
	return r.storeResult(state, step, result, err)
}

func (r *Runner) runScaleStep(state *scenarioState, step Step) error {
	source, err := r.potionArg(state, step, "potion")
	if err != nil {
		return err
	}
	factor, ok := readFloat(step.Args, "factor")
	if !ok {
		return r.failf("scale factor is required")
	}
	result, err := source.Scale(factor)
	return r.storeResult(state, step, result, err)
}

func (r *Runner) runSplitStep(state *scenarioState, step Step) error {
	source, err := r.potionArg(state, step, "potion")
	if err != nil {
		return err
	}
	into := requiredString(step.Args, "into")
	if into == "" {
		return r.failf("split target name is required")
	}
	parts, ok := readInt(step.Args, "parts")
	if !ok {
		return r.failf("split parts is required")
	}
	results, err := source.Split(parts)
	if done, err := r.resolveError(step, err); done {
		return err
	}
	for i, part := range results {
		name := fmt.Sprintf("%s_%d", into, i+1)
		state.potions[name] = part
		r.logf("split %s = %s", name, part)
	}
	return nil
}

func (r *Runner) runConsumeStep(state *scenarioState, step Step) error {
	source, err := r.potionArg(state, step, "potion")
	if err != nil {
		return err
	}
	name := requiredString(step.Args, "effect")
	if name == "" {
		return r.failf("consume effect is required")
	}
	intensity, err := source.Consume(name)
	if done, err := r.resolveError(step, err); done {
		return err
	}
	if want, ok := readInt(step.Args, "expect_calls"); ok && intensity.Calls() != want {
		return r.assertf("consume %s calls = %d, want %d", name, intensity.Calls(), want)
	}
	return nil
}

func (r *Runner) runCompareStep(state *scenarioState, step Step) error {
	left, right, err := r.operands(state, step)
	if err != nil {
		return err
	}
	op := requiredString(step.Args, "op")
	var got bool
	switch op {
	case "eq":
		got, err = left.Equal(right)
	case "lt":
		got, err = left.Less(right)
	case "gt":
		got, err = left.Greater(right)
	case "le":
		got, err = left.LessOrEqual(right)
	case "ge":
		got, err = left.GreaterOrEqual(right)
	default:
		return r.failf("compare op %q is not supported", op)
	}
	if done, err := r.resolveError(step, err); done {
		return err
	}
	want, ok := readBool(step.Args, "expect")
	if ok && got != want {
		return r.assertf("%s %s %s = %v, want %v", requiredString(step.Args, "left"), op, requiredString(step.Args, "right"), got, want)
	}
	return nil
}

func (r *Runner) runApplyStep(ctx context.Context, state *scenarioState, step Step) error {
	source, err := r.potionArg(state, step, "potion")
	if err != nil {
		return err
	}
	target := requiredString(step.Args, "target")
	if target == "" {
		return r.failf("apply target is required")
	}
	handle, err := state.driver.Apply(ctx, target, source)
	if done, err := r.resolveError(step, err); done {
		return err
	}
	state.applied++
	if alias := requiredString(step.Args, "as"); alias != "" {
		state.handles[alias] = handle
	}
	return nil
}

func (r *Runner) runTickStep(ctx context.Context, state *scenarioState, step Step) error {
	count := optionalInt(step.Args, "count", 1)
	reports, err := state.driver.Advance(ctx, count)
	if err != nil {
		return err
	}
	for _, report := range reports {
		state.expired += len(report.Expired)
		state.restored += len(report.Restored)
	}
	return nil
}

func (r *Runner) runForgetStep(state *scenarioState, step Step) error {
	target := requiredString(step.Args, "target")
	if target == "" {
		return r.failf("forget target is required")
	}
	_, err := r.resolveError(step, state.driver.Forget(target))
	return err
}

func (r *Runner) runExpectStep(state *scenarioState, step Step) error {
	target := requiredString(step.Args, "target")
	s, err := state.driver.Subject(target)
	if err != nil {
		return err
	}
	want, err := readAttributes(step.Args, "attrs")
	if err != nil {
		return r.failf("expect %s: %v", target, err)
	}
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		got, ok := s.Get(name)
		if !ok {
			if err := r.assertf("%s.%s is missing, want %v", target, name, want[name]); err != nil {
				return err
			}
			continue
		}
		if math.Abs(got-want[name]) > 1e-9 {
			if err := r.assertf("%s.%s = %v, want %v", target, name, got, want[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runExpectAbsentStep(state *scenarioState, step Step) error {
	target := requiredString(step.Args, "target")
	s, err := state.driver.Subject(target)
	if err != nil {
		return err
	}
	attr := requiredString(step.Args, "attr")
	if got, ok := s.Get(attr); ok {
		return r.assertf("%s.%s = %v, want absent", target, attr, got)
	}
	return nil
}

func (r *Runner) runExpectPotionStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "potion")
	p, ok := state.potions[name]
	if !ok {
		return r.failf("unknown potion %q", name)
	}
	if want, ok := readBool(step.Args, "usable"); ok && p.Usable() != want {
		if err := r.assertf("%s usable = %v, want %v", name, p.Usable(), want); err != nil {
			return err
		}
	}
	if want, ok := readBool(step.Args, "depleted"); ok && p.Depleted() != want {
		if err := r.assertf("%s depleted = %v, want %v", name, p.Depleted(), want); err != nil {
			return err
		}
	}
	if want, ok := readInt(step.Args, "duration"); ok && p.Duration() != want {
		if err := r.assertf("%s duration = %d, want %d", name, p.Duration(), want); err != nil {
			return err
		}
	}
	if want, ok := readInt(step.Args, "sum"); ok && p.IntensitySum() != want {
		if err := r.assertf("%s intensity sum = %d, want %d", name, p.IntensitySum(), want); err != nil {
			return err
		}
	}
	calls, err := readCalls(step.Args, "calls")
	if err != nil {
		return r.failf("expect_potion %s: %v", name, err)
	}
	if calls == nil {
		return nil
	}
	if len(calls) != len(p.Names()) {
		if err := r.assertf("%s effects = %v, want %d effects", name, p.Names(), len(calls)); err != nil {
			return err
		}
	}
	for _, effectName := range p.Names() {
		got, _ := p.Calls(effectName)
		want, ok := calls[effectName]
		if !ok {
			continue
		}
		if got != want {
			if err := r.assertf("%s %s calls = %d, want %d", name, effectName, got, want); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runExpectRemainingStep(state *scenarioState, step Step) error {
	alias := requiredString(step.Args, "handle")
	handle, ok := state.handles[alias]
	if !ok {
		return r.failf("unknown application %q", alias)
	}
	remaining, active := state.driver.Remaining(handle)
	if optionalBool(step.Args, "expired", false) {
		if active {
			return r.assertf("%s remaining = %d, want expired", alias, remaining)
		}
		return nil
	}
	want, _ := readInt(step.Args, "remaining")
	if !active {
		return r.assertf("%s expired, want %d remaining", alias, want)
	}
	if remaining != want {
		return r.assertf("%s remaining = %d, want %d", alias, remaining, want)
	}
	return nil
}
