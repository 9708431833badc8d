package scenario

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBrewCollectsOrderedEffects(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new("brew")
scene:brew("tonic", {duration = 3, effects = {
  Effects.add("heal", "health", 10, 2),
  Effects.mul("boost", "speed", 1.5),
}})
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 1 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 1)
	}
	step := scenario.Steps[0]
	if step.Kind != "brew" {
		t.Fatalf("step kind = %q, want %q", step.Kind, "brew")
	}
	if step.Args["name"] != "tonic" {
		t.Fatalf("name = %v, want tonic", step.Args["name"])
	}
	if step.Args["duration"] != 3 {
		t.Fatalf("duration = %v, want 3", step.Args["duration"])
	}

	specs, err := readEffectSpecs(step.Args, "effects")
	if err != nil {
		t.Fatalf("read effects: %v", err)
	}
	want := []effectSpec{
		{name: "heal", op: "add", attr: "health", value: 10, calls: 2},
		{name: "boost", op: "mul", attr: "speed", value: 1.5, calls: 1},
	}
	if !reflect.DeepEqual(specs, want) {
		t.Fatalf("effects = %+v, want %+v", specs, want)
	}
}

func TestAlgebraStepsCaptureOperands(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new("ops")
scene:combine("ab", "a", "b")
scene:subtract("pure", "ab", "b", {expect_error = "POTION_UNUSABLE"})
scene:scale("big", "ab", 2.5)
scene:split("part", "big", 3)
scene:tick()
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	kinds := make([]string, 0, len(scenario.Steps))
	for _, step := range scenario.Steps {
		kinds = append(kinds, step.Kind)
	}
	if !reflect.DeepEqual(kinds, []string{"combine", "subtract", "scale", "split", "tick"}) {
		t.Fatalf("kinds = %v", kinds)
	}

	combine := scenario.Steps[0].Args
	if combine["into"] != "ab" || combine["left"] != "a" || combine["right"] != "b" {
		t.Fatalf("combine args = %v", combine)
	}
	if scenario.Steps[1].Args["expect_error"] != "POTION_UNUSABLE" {
		t.Fatalf("expect_error = %v, want POTION_UNUSABLE", scenario.Steps[1].Args["expect_error"])
	}
	if scenario.Steps[2].Args["factor"] != 2.5 {
		t.Fatalf("factor = %v, want 2.5", scenario.Steps[2].Args["factor"])
	}
	if scenario.Steps[3].Args["parts"] != 3 {
		t.Fatalf("parts = %v, want 3", scenario.Steps[3].Args["parts"])
	}
	if scenario.Steps[4].Args["count"] != 1 {
		t.Fatalf("tick count = %v, want 1", scenario.Steps[4].Args["count"])
	}
}

func TestExpectRemainingWithoutValueMeansExpired(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new("remaining")
scene:expect_remaining("a")
scene:expect_remaining("b", 2)
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Steps[0].Args["expired"] != true {
		t.Fatalf("expired = %v, want true", scenario.Steps[0].Args["expired"])
	}
	if scenario.Steps[1].Args["remaining"] != 2 {
		t.Fatalf("remaining = %v, want 2", scenario.Steps[1].Args["remaining"])
	}
}

func TestScenarioNameDefaultsToFileName(t *testing.T) {
	path := writeScenarioFixture(t, `return Scenario.new()`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "scenario" {
		t.Fatalf("name = %q, want scenario", scenario.Name)
	}
}

func TestScenarioMustReturnScenario(t *testing.T) {
	path := writeScenarioFixture(t, `return 42`)

	_, err := LoadScenarioFromFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "must return Scenario") {
		t.Fatalf("error = %q, want must return Scenario", err.Error())
	}
}

func TestScenarioApplyRequiresTarget(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new("broken")
scene:apply("tonic")
return scene
`)

	if _, err := LoadScenarioFromFile(path); err == nil {
		t.Fatal("expected error for missing apply target")
	}
}

func writeScenarioFixture(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.lua")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}
