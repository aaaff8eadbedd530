package attendanceerrors

import (
	"net/http"

	"go-school/internal/shared/apperror"
)

var (
	ErrModeMismatch = apperror.New(
		apperror.CodeModeMismatch,
		"this school records attendance through teacher check-in",
		http.StatusConflict,
	)
	ErrPeriodRequired = apperror.New(
		apperror.CodeValidation,
		"period is required for period-wise attendance",
		http.StatusBadRequest,
	)
	ErrPeriodNotAllowed = apperror.New(
		apperror.CodeValidation,
		"period is only accepted for period-wise attendance",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrFutureDate = apperror.New(
		apperror.CodeValidation,
		"attendance cannot be recorded for a future date",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeValidation,
		"invalid month format, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeValidation,
		"status must be one of present, absent, late, half_day, leave",
		http.StatusBadRequest,
	)
	ErrDuplicateStudent = apperror.New(
		apperror.CodeValidation,
		"a student appears more than once in the records",
		http.StatusBadRequest,
	)
	ErrUnknownStudent = apperror.New(
		apperror.CodeUnknownStudent,
		"student does not belong to this class",
		http.StatusBadRequest,
	)
	ErrStudentRequired = apperror.New(
		apperror.CodeValidation,
		"student_id is required",
		http.StatusBadRequest,
	)
)
