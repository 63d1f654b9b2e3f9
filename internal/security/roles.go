package security

import "strings"

const (
	RoleUser      = "USER"
	RoleRecruiter = "RECRUITER"
	RoleAdmin     = "ADMIN"

	RolePrefix = "ROLE_"
)

// NormalizeRole приводит имя роли к виду ROLE_<NAME>. Идемпотентна:
// "ADMIN" и "ROLE_ADMIN" дают "ROLE_ADMIN".
func NormalizeRole(role string) string {
	role = strings.TrimSpace(role)
	if strings.HasPrefix(role, RolePrefix) {
		return role
	}
	return RolePrefix + role
}

func NormalizeRoles(roles []string) []string {
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		if strings.TrimSpace(role) == "" {
			continue
		}
		normalized = append(normalized, NormalizeRole(role))
	}
	return normalized
}

// HasRole сравнивает в нормализованном виде.
func HasRole(roles []string, role string) bool {
	want := NormalizeRole(role)
	for _, have := range roles {
		if NormalizeRole(have) == want {
			return true
		}
	}
	return false
}
