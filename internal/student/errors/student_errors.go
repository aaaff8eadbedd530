package studenterrors

import (
	"net/http"

	"go-school/internal/shared/apperror"
)

var (
	ErrClassRequired = apperror.New(
		apperror.CodeValidation,
		"class_id is required",
		http.StatusBadRequest,
	)
	ErrStudentNotFound = apperror.New(
		apperror.CodeNotFound,
		"student not found",
		http.StatusNotFound,
	)
)
