// Package auth issues and verifies the bearer tokens that carry a caller's session.
// Users and passwords live in the school's identity provider; this service only trusts
// tokens signed with the shared HS256 secret.
package auth

import (
	"errors"
	"time"

	autherrors "go-school/internal/auth/errors"
	"go-school/internal/shared/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	SchoolID  string `json:"school_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TeacherID string `json:"teacher_id,omitempty"`
	StudentID string `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}

func IssueToken(secret string, sess session.Session, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		SchoolID:  sess.SchoolID,
		UserID:    sess.UserID,
		Role:      string(sess.Role),
		TeacherID: sess.TeacherID,
		StudentID: sess.StudentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies tokenString and returns the session it carries. Teachers must carry
// teacher_id and students student_id; school, teacher and student ids must be UUIDs.
func ParseToken(secret, tokenString string) (session.Session, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return session.Session{}, autherrors.ErrTokenExpired
		}
		return session.Session{}, autherrors.ErrInvalidToken
	}
	if !token.Valid {
		return session.Session{}, autherrors.ErrInvalidToken
	}

	sess := session.Session{
		SchoolID:  claims.SchoolID,
		UserID:    claims.UserID,
		Role:      session.Role(claims.Role),
		TeacherID: claims.TeacherID,
		StudentID: claims.StudentID,
	}
	if sess.UserID == "" || sess.SchoolID == "" || sess.Role == "" {
		return session.Session{}, autherrors.ErrMissingClaim
	}
	switch sess.Role {
	case session.RoleTeacher:
		if sess.TeacherID == "" {
			return session.Session{}, autherrors.ErrMissingClaim
		}
	case session.RoleStudent:
		if sess.StudentID == "" {
			return session.Session{}, autherrors.ErrMissingClaim
		}
	case session.RoleSchoolAdmin, session.RoleSuperAdmin:
	default:
		return session.Session{}, autherrors.ErrInvalidToken
	}
	// Services key rows by these ids, so they must be UUIDs when present.
	for _, id := range []string{sess.SchoolID, sess.TeacherID, sess.StudentID} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return session.Session{}, autherrors.ErrInvalidToken
		}
	}
	return sess, nil
}
