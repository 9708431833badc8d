// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Potion errors
	CodePotionDepleted        Code = "POTION_DEPLETED"
	CodePotionUnusable        Code = "POTION_UNUSABLE"
	CodeEffectConsumed        Code = "POTION_EFFECT_CONSUMED"
	CodeEffectUnknown         Code = "POTION_EFFECT_UNKNOWN"
	CodeIncompatibleEffects   Code = "POTION_INCOMPATIBLE_EFFECTS"
	CodeInvalidSplit          Code = "POTION_INVALID_SPLIT"
	CodeUnsupportedComparison Code = "POTION_UNSUPPORTED_COMPARISON"
	CodePotionMissing         Code = "POTION_MISSING"

	// Ledger errors
	CodeTargetMissing    Code = "LEDGER_TARGET_MISSING"
	CodeTargetActive     Code = "LEDGER_TARGET_ACTIVE"
	CodeSubjectNotFound  Code = "SUBJECT_NOT_FOUND"
	CodeSubjectDuplicate Code = "SUBJECT_DUPLICATE"
	CodeSubjectInvalidID Code = "SUBJECT_INVALID_ID"

	// Simulation errors
	CodeSimClosed Code = "SIM_CLOSED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - bad operands or input
	case CodeIncompatibleEffects,
		CodeInvalidSplit,
		CodeEffectUnknown,
		CodePotionMissing,
		CodeTargetMissing,
		CodeSubjectInvalidID:
		return codes.InvalidArgument

	// FailedPrecondition - bundle or ledger state doesn't allow operation
	case CodePotionDepleted,
		CodePotionUnusable,
		CodeEffectConsumed,
		CodeTargetActive,
		CodeSimClosed:
		return codes.FailedPrecondition

	// Unimplemented - operation deliberately unsupported
	case CodeUnsupportedComparison:
		return codes.Unimplemented

	// NotFound - resource doesn't exist
	case CodeSubjectNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeSubjectDuplicate:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
