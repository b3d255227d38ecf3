package models

// Role is the account role assigned by the remote property service.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleBroker   Role = "broker"
)

// User is an account as returned by the auth endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `json:"role"`

	// SavedProperties is the user's saved-property ids as reported by the
	// auth endpoints, used to seed the session's saved set.
	SavedProperties []string `json:"savedProperties,omitempty"`
}

// DashboardPath returns the role-specific dashboard route the UI navigates
// to after a successful listing submission.
func (u *User) DashboardPath() string {
	switch u.Role {
	case RoleOwner:
		return "/dashboard/owner"
	case RoleBroker:
		return "/dashboard/broker"
	default:
		return "/dashboard/customer"
	}
}
