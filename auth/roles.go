package auth

// Role values as issued by the backend. Anything else is treated as a
// regular customer. These drive post-login navigation only; the backend is
// the authority on what a role may actually do.
const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

// LandingRoute returns the page a user should land on after signing in.
func LandingRoute(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleStaff:
		return "/staff/dashboard"
	default:
		return "/"
	}
}
