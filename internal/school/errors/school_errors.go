package schoolerrors

import (
	"net/http"

	"go-school/internal/shared/apperror"
)

var (
	ErrSchoolNotFound = apperror.New(
		apperror.CodeNotFound,
		"school not found",
		http.StatusNotFound,
	)
	ErrInvalidSchoolID = apperror.New(
		apperror.CodeValidation,
		"invalid school id",
		http.StatusBadRequest,
	)
	ErrInvalidLocation = apperror.New(
		apperror.CodeValidation,
		"latitude must be within [-90, 90] and longitude within [-180, 180]",
		http.StatusBadRequest,
	)
	ErrInvalidRadius = apperror.New(
		apperror.CodeValidation,
		"radius_meters must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidMode = apperror.New(
		apperror.CodeValidation,
		"attendance mode must be one of simple, period_wise, check_in_out",
		http.StatusBadRequest,
	)
	ErrInvalidLateAfter = apperror.New(
		apperror.CodeValidation,
		"late_after must use the HH:MM format",
		http.StatusBadRequest,
	)
	ErrInvalidTimezone = apperror.New(
		apperror.CodeValidation,
		"unknown timezone",
		http.StatusBadRequest,
	)
	ErrGeocoderUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"address search is temporarily unavailable",
		http.StatusServiceUnavailable,
	)
)
