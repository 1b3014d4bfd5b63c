package models

// Role identifies what a user is allowed to act as. The set is closed:
// anything else coming off the wire is dropped by ParseRoles.
type Role string

const (
	RoleAsambalAdmin Role = "admin_asambal"
	RoleClubAdmin    Role = "admin_club"
	RoleCoach        Role = "profesor"
	RolePlayer       Role = "jugador"
)

func validRole(r Role) bool {
	switch r {
	case RoleAsambalAdmin, RoleClubAdmin, RoleCoach, RolePlayer:
		return true
	}
	return false
}

// ParseRoles is the single normalization boundary for the role field.
// Historical documents stored roles as a plain string, an array, or a map
// keyed by role name; everything becomes a deduplicated []Role here and no
// other component re-implements this.
func ParseRoles(raw interface{}) []Role {
	var candidates []string
	switch v := raw.(type) {
	case nil:
	case string:
		candidates = append(candidates, v)
	case Role:
		candidates = append(candidates, string(v))
	case []string:
		candidates = append(candidates, v...)
	case []Role:
		for _, r := range v {
			candidates = append(candidates, string(r))
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	case map[string]interface{}:
		// Map-shaped role fields carry per-role payloads; a key set to
		// false or nil marks a revoked role, not a granted one.
		for key, val := range v {
			if val == nil {
				continue
			}
			if granted, ok := val.(bool); ok && !granted {
				continue
			}
			candidates = append(candidates, key)
		}
	}

	var roles []Role
	for _, c := range candidates {
		r := Role(c)
		if !validRole(r) {
			continue
		}
		if !HasRole(roles, r) {
			roles = append(roles, r)
		}
	}
	return roles
}

func HasRole(roles []Role, r Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the role sets intersect.
func HasAnyRole(roles []Role, wanted ...Role) bool {
	for _, w := range wanted {
		if HasRole(roles, w) {
			return true
		}
	}
	return false
}

// IsAdminRole reports whether the set carries a federation or club admin role.
func IsAdminRole(roles []Role) bool {
	return HasAnyRole(roles, RoleAsambalAdmin, RoleClubAdmin)
}
