package shared

// Core platform permissions.
const (
	PermBankView   = "bank.view"
	PermBankCreate = "bank.create"
	PermBankUpdate = "bank.update"
	PermBankDelete = "bank.delete"

	PermUsersView = "users.view"
	PermRolesView = "roles.view"
)

// CoreScopes lists all permissions known to the platform.
func CoreScopes() []string {
	return []string{
		PermBankView,
		PermBankCreate,
		PermBankUpdate,
		PermBankDelete,
		PermUsersView,
		PermRolesView,
	}
}
