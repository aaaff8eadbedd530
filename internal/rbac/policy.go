package rbac

import "go-school/internal/shared/session"

const AllSchools = "*"

func grants(role session.Role, perms ...[2]string) []Grant {
	out := make([]Grant, len(perms))
	for i, p := range perms {
		out[i] = Grant{Role: string(role), SchoolID: AllSchools, Resource: p[0], Action: p[1]}
	}
	return out
}

// DefaultPolicy is loaded into every enforcer. Schools can add grants through the
// school_role_permissions table but cannot revoke these.
func DefaultPolicy() []Grant {
	var p []Grant
	p = append(p, grants(session.RoleSuperAdmin,
		[2]string{"school", "read"}, [2]string{"school", "update"},
		[2]string{"student", "read"},
		[2]string{"attendance", "read"}, [2]string{"attendance", "create"},
		[2]string{"attendance_history", "read"},
		[2]string{"checkin_history", "read"},
		[2]string{"leave", "read"}, [2]string{"leave", "approve"},
	)...)
	p = append(p, grants(session.RoleSchoolAdmin,
		[2]string{"school", "read"}, [2]string{"school", "update"},
		[2]string{"student", "read"},
		[2]string{"attendance", "read"}, [2]string{"attendance", "create"},
		[2]string{"attendance_history", "read"},
		[2]string{"checkin_history", "read"},
		[2]string{"leave", "read"}, [2]string{"leave", "approve"},
	)...)
	p = append(p, grants(session.RoleTeacher,
		[2]string{"school", "read"},
		[2]string{"student", "read"},
		[2]string{"attendance", "read"}, [2]string{"attendance", "create"},
		[2]string{"attendance_history", "read"},
		[2]string{"checkin", "read"}, [2]string{"checkin", "create"}, [2]string{"checkin", "update"},
		[2]string{"checkin_history", "read"},
		[2]string{"leave", "read"}, [2]string{"leave", "create"}, [2]string{"leave", "cancel"},
	)...)
	p = append(p, grants(session.RoleStudent,
		[2]string{"school", "read"},
		[2]string{"attendance_history", "read"},
		[2]string{"leave", "read"}, [2]string{"leave", "create"}, [2]string{"leave", "cancel"},
	)...)
	return p
}
