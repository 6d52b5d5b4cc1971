package auth

// Backend auth endpoints.
const (
	RouteRegister       = "/auth/register"
	RouteLogin          = "/auth/login"
	RouteLogout         = "/auth/logout"
	RouteForgotPassword = "/auth/forgot-password"
	RouteChangePassword = "/auth/change-password"
)
