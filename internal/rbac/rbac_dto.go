package rbac

import "go-school/internal/domain"

type EnforceRequest = domain.EnforceRequest

type EnforceResponse = domain.EnforceResponse

type PermissionResponse = domain.PermissionResponse

// Grant is one row of the policy: role may act on resource in school ("*" for every school).
type Grant struct {
	Role     string
	SchoolID string
	Resource string
	Action   string
}
