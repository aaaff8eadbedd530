// Package session carries the caller identity that every school-scoped operation needs.
// It is built once per request by the auth middleware and passed explicitly to services.
package session

import (
	"github.com/gin-gonic/gin"
)

type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleSchoolAdmin Role = "school_admin"
	RoleTeacher     Role = "teacher"
	RoleStudent     Role = "student"
)

// Gin context keys written by middleware.AuthMiddleware.
const (
	KeySchoolID  = "school_id"
	KeyUserID    = "user_id"
	KeyRole      = "role"
	KeyTeacherID = "teacher_id"
	KeyStudentID = "student_id"
)

type Session struct {
	SchoolID  string
	UserID    string
	Role      Role
	TeacherID string
	StudentID string
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleSchoolAdmin || s.Role == RoleSuperAdmin
}

// ProfileID is the teacher or student id of the caller, empty for admins.
func (s Session) ProfileID() string {
	switch s.Role {
	case RoleTeacher:
		return s.TeacherID
	case RoleStudent:
		return s.StudentID
	default:
		return ""
	}
}

func FromGin(c *gin.Context) Session {
	return Session{
		SchoolID:  c.GetString(KeySchoolID),
		UserID:    c.GetString(KeyUserID),
		Role:      Role(c.GetString(KeyRole)),
		TeacherID: c.GetString(KeyTeacherID),
		StudentID: c.GetString(KeyStudentID),
	}
}

// Set writes the session into a gin context; used by the auth middleware and handler tests.
func Set(c *gin.Context, s Session) {
	c.Set(KeySchoolID, s.SchoolID)
	c.Set(KeyUserID, s.UserID)
	c.Set(KeyRole, string(s.Role))
	c.Set(KeyTeacherID, s.TeacherID)
	c.Set(KeyStudentID, s.StudentID)
}
