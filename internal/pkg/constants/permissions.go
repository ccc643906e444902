package constants

const (
	ViewRoster         = "view_roster"
	ManageMembers      = "manage_members"
	ManageLeaves       = "manage_leaves"
	IssueCertificates  = "issue_certificates"
	ManageCertificates = "manage_certificates"
	UpdateChurch       = "update_church"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewRoster:         {Pastor},
	ManageMembers:      {Pastor},
	ManageLeaves:       {Pastor},
	IssueCertificates:  {Pastor},
	ManageCertificates: {Pastor},
	UpdateChurch:       {Pastor},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
