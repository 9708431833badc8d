package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodePotionDepleted        = "POTION_DEPLETED"
	CodePotionUnusable        = "POTION_UNUSABLE"
	CodeEffectConsumed        = "POTION_EFFECT_CONSUMED"
	CodeEffectUnknown         = "POTION_EFFECT_UNKNOWN"
	CodeIncompatibleEffects   = "POTION_INCOMPATIBLE_EFFECTS"
	CodeInvalidSplit          = "POTION_INVALID_SPLIT"
	CodeUnsupportedComparison = "POTION_UNSUPPORTED_COMPARISON"
	CodePotionMissing         = "POTION_MISSING"
	CodeTargetMissing         = "LEDGER_TARGET_MISSING"
	CodeTargetActive          = "LEDGER_TARGET_ACTIVE"
	CodeSubjectNotFound       = "SUBJECT_NOT_FOUND"
	CodeSubjectDuplicate      = "SUBJECT_DUPLICATE"
	CodeSubjectInvalidID      = "SUBJECT_INVALID_ID"
	CodeSimClosed             = "SIM_CLOSED"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Potion errors
		CodePotionDepleted:        "Potion is depleted",
		CodePotionUnusable:        "Potion is now part of something bigger than itself",
		CodeEffectConsumed:        "Effect {{.Effect}} is depleted",
		CodeEffectUnknown:         "Potion has no effect named {{.Effect}}",
		CodeIncompatibleEffects:   "Different effects in right potion: {{.Effects}}",
		CodeInvalidSplit:          "Potion cannot be split into {{.Parts}} parts",
		CodeUnsupportedComparison: "Comparison {{.Operator}} is not supported for potions",
		CodePotionMissing:         "A potion is required",

		// Ledger errors
		CodeTargetMissing:    "A target is required",
		CodeTargetActive:     "Target {{.Target}} still has active applications",
		CodeSubjectNotFound:  "Subject {{.Subject}} was not found",
		CodeSubjectDuplicate: "Subject {{.Subject}} already exists",
		CodeSubjectInvalidID: "Subject id cannot be empty",

		// Simulation errors
		CodeSimClosed: "The simulation has already finished",
	},
}
