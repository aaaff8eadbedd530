package checkinerrors

import (
	"net/http"

	"go-school/internal/shared/apperror"
)

var (
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeAlreadyCheckedIn,
		"already checked in today",
		http.StatusConflict,
	)
	ErrNotYetCheckedIn = apperror.New(
		apperror.CodeNotYetCheckedIn,
		"not checked in yet today",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeAlreadyCheckedOut,
		"already checked out today",
		http.StatusConflict,
	)
	ErrOutOfRange = apperror.New(
		apperror.CodeOutOfRange,
		"you are outside the school premises",
		http.StatusUnprocessableEntity,
	)
	ErrLocationUnavailable = apperror.New(
		apperror.CodeLocationUnavailable,
		"location is required to check in at this school",
		http.StatusBadRequest,
	)
	ErrInvalidCoordinates = apperror.New(
		apperror.CodeValidation,
		"latitude must be within [-90, 90] and longitude within [-180, 180]",
		http.StatusBadRequest,
	)
	ErrModeMismatch = apperror.New(
		apperror.CodeModeMismatch,
		"this school does not use teacher check-in",
		http.StatusConflict,
	)
	ErrTeacherRequired = apperror.New(
		apperror.CodeForbidden,
		"only teachers can check in",
		http.StatusForbidden,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"from and to must be YYYY-MM-DD with from <= to",
		http.StatusBadRequest,
	)
)

type OutOfRangeDetails struct {
	DistanceMeters float64 `json:"distance_meters"`
	AllowedRadius  float64 `json:"allowed_radius"`
}

// OutOfRange reports how far the position was from the school and the permitted radius.
func OutOfRange(distance, radius float64) *apperror.AppError {
	return ErrOutOfRange.WithDetails(OutOfRangeDetails{DistanceMeters: distance, AllowedRadius: radius})
}
