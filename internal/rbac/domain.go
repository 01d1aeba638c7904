package rbac

import "time"

// Role represents a named permission grouping. A principal's effective
// permissions are exactly its role's permission set.
type Role struct {
	ID          int64
	Name        string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPermission reports exact set membership. No hierarchy, no wildcard
// matching, no implicit admin bypass.
func (r Role) HasPermission(capability string) bool {
	for _, p := range r.Permissions {
		if p == capability {
			return true
		}
	}
	return false
}
