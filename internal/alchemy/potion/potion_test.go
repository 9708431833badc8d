package potion

import (
	"errors"
	"reflect"
	"testing"

	"github.com/louisbranch/potionlab/internal/alchemy/effect"
)

type vessel struct {
	size  int
	color string
}

func grow(v *vessel)  { v.size++ }
func paint(v *vessel) { v.color += "r" }

func intensity(calls int) effect.Intensity[*vessel] {
	return effect.New[*vessel](grow, calls)
}

func TestNewCopiesEffects(t *testing.T) {
	source := map[string]effect.Intensity[*vessel]{"grow": intensity(2)}
	p := New(source, 3)
	source["grow"] = intensity(9)
	source["extra"] = intensity(1)

	if calls, _ := p.Calls("grow"); calls != 2 {
		t.Fatalf("grow calls = %d, want 2", calls)
	}
	if _, ok := p.Calls("extra"); ok {
		t.Fatal("expected potion to be isolated from source map")
	}
	if !p.Usable() || p.Depleted() {
		t.Fatalf("usable = %v depleted = %v, want true false", p.Usable(), p.Depleted())
	}
	if p.Duration() != 3 {
		t.Fatalf("duration = %d, want 3", p.Duration())
	}
}

func TestFromActionsWrapsAtIntensityOne(t *testing.T) {
	p := FromActions(map[string]effect.Action[*vessel]{"grow": grow, "paint": paint}, 2)
	if !reflect.DeepEqual(p.Names(), []string{"grow", "paint"}) {
		t.Fatalf("names = %v, want [grow paint]", p.Names())
	}
	if p.IntensitySum() != 2 {
		t.Fatalf("intensity sum = %d, want 2", p.IntensitySum())
	}
}

func TestBuilderKeepsInsertionOrder(t *testing.T) {
	p := NewBuilder[*vessel](1).
		AddAction("zeta", grow).
		Add("alpha", intensity(3)).
		Add("zeta", intensity(2)).
		Build()

	if !reflect.DeepEqual(p.Names(), []string{"zeta", "alpha"}) {
		t.Fatalf("names = %v, want [zeta alpha]", p.Names())
	}
	if calls, _ := p.Calls("zeta"); calls != 2 {
		t.Fatalf("zeta calls = %d, want 2", calls)
	}
}

func TestConsumeMarksEffects(t *testing.T) {
	p := New(map[string]effect.Intensity[*vessel]{
		"grow":  intensity(2),
		"paint": effect.Wrap[*vessel](paint),
	}, 1)

	got, err := p.Consume("grow")
	if err != nil {
		t.Fatalf("consume grow: %v", err)
	}
	target := &vessel{}
	got.Invoke(target)
	if target.size != 2 {
		t.Fatalf("size = %d, want 2", target.size)
	}
	if p.Depleted() {
		t.Fatal("expected potion not depleted after one of two effects")
	}
	if !reflect.DeepEqual(p.Pending(), []string{"paint"}) {
		t.Fatalf("pending = %v, want [paint]", p.Pending())
	}

	if _, err := p.Consume("grow"); !errors.Is(err, ErrEffectConsumed) {
		t.Fatalf("second consume error = %v, want %v", err, ErrEffectConsumed)
	}
	if _, err := p.Consume("missing"); !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("unknown consume error = %v, want %v", err, ErrUnknownEffect)
	}

	if _, err := p.Consume("paint"); err != nil {
		t.Fatalf("consume paint: %v", err)
	}
	if !p.Depleted() {
		t.Fatal("expected potion depleted after every effect consumed")
	}
	if _, err := p.Consume("paint"); !errors.Is(err, ErrDepleted) {
		t.Fatalf("consume after depletion error = %v, want %v", err, ErrDepleted)
	}
}

func TestConsumeSingleEffectTwiceReportsDepletion(t *testing.T) {
	p := New(map[string]effect.Intensity[*vessel]{"grow": intensity(1)}, 1)
	if _, err := p.Consume("grow"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := p.Consume("grow"); !errors.Is(err, ErrDepleted) {
		t.Fatalf("error = %v, want %v", err, ErrDepleted)
	}
}

func TestCheckOrdersDepletedBeforeUnusable(t *testing.T) {
	p := New(map[string]effect.Intensity[*vessel]{"grow": intensity(1)}, 1)
	p.usable = false
	if err := p.Check(); !errors.Is(err, ErrUnusable) {
		t.Fatalf("error = %v, want %v", err, ErrUnusable)
	}
	p.MarkDepleted()
	if err := p.Check(); !errors.Is(err, ErrDepleted) {
		t.Fatalf("error = %v, want %v", err, ErrDepleted)
	}

	var missing *Potion[*vessel]
	if err := missing.Check(); !errors.Is(err, ErrPotionRequired) {
		t.Fatalf("nil check error = %v, want %v", err, ErrPotionRequired)
	}
}

func TestString(t *testing.T) {
	p := NewBuilder[*vessel](4).Add("grow", intensity(2)).AddAction("paint", paint).Build()
	if got := p.String(); got != "potion{grow:2 paint:1} for 4" {
		t.Fatalf("string = %q", got)
	}
}
