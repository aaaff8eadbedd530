package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeProcessing      = "PROCESSING"

	// Attendance and check-in conflicts
	CodeUnknownStudent      = "UNKNOWN_STUDENT"
	CodeModeMismatch        = "MODE_MISMATCH"
	CodeOutOfRange          = "OUT_OF_RANGE"
	CodeLocationUnavailable = "LOCATION_UNAVAILABLE"
	CodeAlreadyCheckedIn    = "ALREADY_CHECKED_IN"
	CodeNotYetCheckedIn     = "NOT_YET_CHECKED_IN"
	CodeAlreadyCheckedOut   = "ALREADY_CHECKED_OUT"

	// Leave workflow
	CodeInvalidTransition = "INVALID_TRANSITION"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
