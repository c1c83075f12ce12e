package apperror

const (
	// Client errors (4xx)
	CodeBadRequest            = "BAD_REQUEST"
	CodeValidation            = "VALIDATION_ERROR"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeConfiguration         = "CONFIGURATION_ERROR"
	CodeInsufficientAuthority = "INSUFFICIENT_AUTHORITY"
	CodeNoPendingStepForActor = "NO_PENDING_STEP_FOR_ACTOR"
	CodeBudgetExceeded        = "BUDGET_EXCEEDED"
	CodeConflict              = "CONFLICT"

	// Server errors (5xx)
	CodeInternalError = "INTERNAL_ERROR"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
)
