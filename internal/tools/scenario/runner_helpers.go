package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/potionlab/internal/alchemy/effect"
	"github.com/louisbranch/potionlab/internal/alchemy/subject"
	apperrors "github.com/louisbranch/potionlab/internal/platform/errors"
	"github.com/louisbranch/potionlab/internal/sim"
)

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

// resolveError matches opErr against the step's expect_error code. done
// reports that the step must stop without storing results.
func (r *Runner) resolveError(step Step, opErr error) (done bool, err error) {
	want := requiredString(step.Args, "expect_error")
	if opErr == nil {
		if want == "" {
			return false, nil
		}
		if err := r.assertf("%s succeeded, want error %s", step.Kind, want); err != nil {
			return true, err
		}
		return false, nil
	}
	if want == "" {
		return true, opErr
	}
	got := apperrors.CodeOf(opErr)
	if string(got) != want {
		return true, r.assertf("%s error = %s (%v), want %s", step.Kind, got, opErr, want)
	}
	r.logf("%s failed as expected: %v", step.Kind, opErr)
	return true, nil
}

func (r *Runner) potionArg(state *scenarioState, step Step, key string) (*sim.Potion, error) {
	name := requiredString(step.Args, key)
	if name == "" {
		return nil, r.failf("%s %s is required", step.Kind, key)
	}
	p, ok := state.potions[name]
	if !ok {
		return nil, r.failf("unknown potion %q", name)
	}
	return p, nil
}

func (r *Runner) operands(state *scenarioState, step Step) (*sim.Potion, *sim.Potion, error) {
	left, err := r.potionArg(state, step, "left")
	if err != nil {
		return nil, nil, err
	}
	right, err := r.potionArg(state, step, "right")
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (r *Runner) storeResult(state *scenarioState, step Step, result *sim.Potion, opErr error) error {
	if done, err := r.resolveError(step, opErr); done {
		return err
	}
	into := requiredString(step.Args, "into")
	if into == "" {
		return r.failf("%s target name is required", step.Kind)
	}
	state.potions[into] = result
	r.logf("%s %s = %s", step.Kind, into, result)
	return nil
}

type effectSpec struct {
	name  string
	op    string
	attr  string
	value float64
	calls int
}

func (s effectSpec) intensity() effect.Intensity[*subject.Subject] {
	attr, value := s.attr, s.value
	var action effect.Action[*subject.Subject]
	switch s.op {
	case "add":
		action = func(target *subject.Subject) { target.Add(attr, value) }
	case "mul":
		action = func(target *subject.Subject) { target.Multiply(attr, value) }
	case "set":
		action = func(target *subject.Subject) { target.Set(attr, value) }
	}
	return effect.New(action, s.calls)
}

func readEffectSpecs(args map[string]any, key string) ([]effectSpec, error) {
	value, ok := args[key]
	if !ok {
		return nil, nil
	}
	var items []any
	switch typed := value.(type) {
	case []any:
		items = typed
	case map[string]any:
		if len(typed) != 0 {
			return nil, fmt.Errorf("%s must be a list of effects", key)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%s must be a list of effects", key)
	}

	specs := make([]effectSpec, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("effect %d must be a table", i+1)
		}
		spec := effectSpec{
			name:  requiredString(fields, "name"),
			op:    strings.ToLower(requiredString(fields, "op")),
			attr:  requiredString(fields, "attr"),
			calls: optionalInt(fields, "calls", 1),
		}
		if spec.name == "" {
			return nil, fmt.Errorf("effect %d name is required", i+1)
		}
		if spec.attr == "" {
			return nil, fmt.Errorf("effect %s attr is required", spec.name)
		}
		switch spec.op {
		case "add", "mul", "set":
		default:
			return nil, fmt.Errorf("effect %s op %q is not supported", spec.name, spec.op)
		}
		value, ok := readFloat(fields, "value")
		if !ok {
			return nil, fmt.Errorf("effect %s value is required", spec.name)
		}
		spec.value = value
		specs = append(specs, spec)
	}
	return specs, nil
}

func readAttributes(args map[string]any, key string) (map[string]float64, error) {
	value, ok := args[key]
	if !ok {
		return map[string]float64{}, nil
	}
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a table of numbers", key)
	}
	attrs := make(map[string]float64, len(raw))
	for _, name := range sortedKeys(raw) {
		number, ok := readFloat(raw, name)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be a number", key, name)
		}
		attrs[name] = number
	}
	return attrs, nil
}

func readCalls(args map[string]any, key string) (map[string]int, error) {
	value, ok := args[key]
	if !ok {
		return nil, nil
	}
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a table of integers", key)
	}
	calls := make(map[string]int, len(raw))
	for _, name := range sortedKeys(raw) {
		count, ok := readInt(raw, name)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be an integer", key, name)
		}
		calls[name] = count
	}
	return calls, nil
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return ""
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func readFloat(args map[string]any, key string) (float64, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func optionalInt(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case int:
		return typed
	case float64:
		return int(typed)
	default:
		return fallback
	}
}

func optionalBool(args map[string]any, key string, fallback bool) bool {
	value, ok := readBool(args, key)
	if !ok {
		return fallback
	}
	return value
}

func readBool(args map[string]any, key string) (bool, bool) {
	value, ok := args[key]
	if !ok {
		return false, false
	}
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		lower := strings.ToLower(strings.TrimSpace(typed))
		switch lower {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}
