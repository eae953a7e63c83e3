package auth

import "errors"

const (
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
)

const (
	PermConnectionsRead   = "connections:read"
	PermConnectionsWrite  = "connections:write"
	PermConnectionsDelete = "connections:delete"
	PermCandidatesRead    = "candidates:read"
	PermCandidatesWrite   = "candidates:write"
	PermCandidatesHire    = "candidates:hire"
)

// Permissions lists what each role may do.
var Permissions = map[string][]string{
	RoleAdmin: {
		PermConnectionsRead,
		PermConnectionsWrite,
		PermConnectionsDelete,
		PermCandidatesRead,
		PermCandidatesWrite,
		PermCandidatesHire,
	},
	RoleRecruiter: {
		PermConnectionsRead,
		PermConnectionsWrite,
		PermCandidatesRead,
		PermCandidatesWrite,
		PermCandidatesHire,
	},
}

func HasPermission(role, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func IsAdmin(claims *Claims) bool {
	return claims != nil && claims.Role == RoleAdmin
}

func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleRecruiter:
		return nil
	default:
		return errors.New("invalid role")
	}
}
