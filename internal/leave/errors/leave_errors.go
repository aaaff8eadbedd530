package leaveerrors

import (
	"net/http"

	"go-school/internal/shared/apperror"
)

var (
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeValidation,
		"leave_type must be one of casual, sick, emergency, personal, other",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"end_date cannot be before start_date",
		http.StatusBadRequest,
	)
	ErrReasonTooShort = apperror.New(
		apperror.CodeValidation,
		"reason must be at least 10 characters",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeValidation,
		"action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeValidation,
		"status must be pending, approved or rejected",
		http.StatusBadRequest,
	)
	ErrInvalidApplicantType = apperror.New(
		apperror.CodeValidation,
		"applicant_type must be student or teacher",
		http.StatusBadRequest,
	)
	ErrApplicantRequired = apperror.New(
		apperror.CodeForbidden,
		"only students and teachers can apply for leave",
		http.StatusForbidden,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"leave request can no longer change state",
		http.StatusConflict,
	)
)
