package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrInvalidSettings = "INVALID_SETTINGS"
	ErrConfigInvalid   = "CONFIG_INVALID"

	// Planning and execution errors
	ErrPlanFailed           = "PLAN_FAILED"
	ErrApplyPartial         = "APPLY_PARTIAL"
	ErrLocked               = "LOCKED"
	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"

	// Storage errors
	ErrPresetNotFound = "PRESET_NOT_FOUND"
	ErrBatchNotFound  = "BATCH_NOT_FOUND"
	ErrJournalError   = "JOURNAL_ERROR"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnNothingToDo    = "NOTHING_TO_DO"
	WarnApplyPartial   = ErrApplyPartial
	WarnSourcesMissing = "SOURCES_MISSING"
	WarnJournalFailed  = ErrJournalError
	WarnAuditFailed    = "AUDIT_FAILED"
	WarnStateNotSaved  = "STATE_NOT_SAVED"
	WarnPresetSkipped  = "PRESET_SKIPPED"
)
