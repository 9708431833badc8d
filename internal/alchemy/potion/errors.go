package potion

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/potionlab/internal/platform/errors"
)

var (
	// ErrDepleted indicates every effect of the potion has been consumed.
	ErrDepleted = apperrors.New(apperrors.CodePotionDepleted, "potion is depleted")
	// ErrUnusable indicates the potion was consumed by an algebraic operator.
	ErrUnusable = apperrors.New(apperrors.CodePotionUnusable, "potion is now part of something bigger than itself")
	// ErrEffectConsumed indicates a named effect was already read.
	ErrEffectConsumed = apperrors.New(apperrors.CodeEffectConsumed, "effect is depleted")
	// ErrUnknownEffect indicates the potion never had the named effect.
	ErrUnknownEffect = apperrors.New(apperrors.CodeEffectUnknown, "unknown effect")
	// ErrIncompatibleEffects indicates a subtrahend with effects the minuend lacks.
	ErrIncompatibleEffects = apperrors.New(apperrors.CodeIncompatibleEffects, "different effects in right potion")
	// ErrInvalidSplit indicates a split into fewer than one or more than
	// MaxSplitParts parts.
	ErrInvalidSplit = apperrors.New(apperrors.CodeInvalidSplit, "invalid split")
	// ErrUnsupportedComparison indicates a <= or >= comparison.
	ErrUnsupportedComparison = apperrors.New(apperrors.CodeUnsupportedComparison, "comparison not supported")
	// ErrPotionRequired indicates a nil potion operand.
	ErrPotionRequired = apperrors.New(apperrors.CodePotionMissing, "potion is required")
)

func effectConsumedError(name string) error {
	return apperrors.WithMetadata(
		apperrors.CodeEffectConsumed,
		fmt.Sprintf("effect %s is depleted", name),
		map[string]string{"Effect": name},
	)
}

func unknownEffectError(name string) error {
	return apperrors.WithMetadata(
		apperrors.CodeEffectUnknown,
		fmt.Sprintf("potion has no effect %s", name),
		map[string]string{"Effect": name},
	)
}

func incompatibleEffectsError(names []string) error {
	joined := strings.Join(names, ", ")
	return apperrors.WithMetadata(
		apperrors.CodeIncompatibleEffects,
		"different effects in right potion: "+joined,
		map[string]string{"Effects": joined},
	)
}

func invalidSplitError(parts int) error {
	value := strconv.Itoa(parts)
	return apperrors.WithMetadata(
		apperrors.CodeInvalidSplit,
		"cannot split potion into "+value+" parts",
		map[string]string{"Parts": value},
	)
}

func unsupportedComparisonError(operator string) error {
	return apperrors.WithMetadata(
		apperrors.CodeUnsupportedComparison,
		"comparison "+operator+" is not supported",
		map[string]string{"Operator": operator},
	)
}
