package autherrors

import (
	"net/http"

	"go-school/internal/shared/apperror"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New(apperror.CodeInvalidToken, "invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New(apperror.CodeTokenExpired, "token expired", http.StatusUnauthorized)
	ErrMissingClaim  = apperror.New(apperror.CodeInvalidToken, "token is missing a required claim", http.StatusUnauthorized)
)
