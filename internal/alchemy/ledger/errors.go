package ledger

import (
	apperrors "github.com/louisbranch/potionlab/internal/platform/errors"
)

var (
	// ErrTargetRequired indicates a nil target.
	ErrTargetRequired = apperrors.New(apperrors.CodeTargetMissing, "target is required")
	// ErrTargetActive indicates a target still has live applications.
	ErrTargetActive = apperrors.New(apperrors.CodeTargetActive, "target has active applications")
)

func targetActiveError(targetID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeTargetActive,
		"target "+targetID+" has active applications",
		map[string]string{"Target": targetID},
	)
}
