package auth

import "github.com/miftajuneidi2008/ansar-dfp/internal/model"

// Permissions is the fixed capability set of a role.
type Permissions struct {
	CanSubmitApplications  bool
	CanViewOwnApplications bool
	CanViewAllApplications bool
	CanApproveApplications bool
	CanManageUsers         bool
	CanManageOrganization  bool
}

// rolePermissions maps each role to its capabilities. Approvers view "all"
// applications filtered by their assignments; admins view everything but
// never act on applications.
var rolePermissions = map[string]Permissions{
	model.RoleBranchUser: {
		CanSubmitApplications:  true,
		CanViewOwnApplications: true,
	},
	model.RoleHeadOfficeApprover: {
		CanViewAllApplications: true,
		CanApproveApplications: true,
	},
	model.RoleSystemAdmin: {
		CanViewAllApplications: true,
		CanManageUsers:         true,
		CanManageOrganization:  true,
	},
}

// PermissionsFor returns the capability set of a role. Unknown roles get no
// capabilities.
func PermissionsFor(role string) Permissions {
	return rolePermissions[role]
}
