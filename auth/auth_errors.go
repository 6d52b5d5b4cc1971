package auth

import "errors"

var (
	RegistrationFailedErr = errors.New("registration failed")
	LoginFailedErr        = errors.New("login failed")
	RequestRejectedErr    = errors.New("request rejected by backend")
	NotAuthenticatedErr   = errors.New("not authenticated")
)
