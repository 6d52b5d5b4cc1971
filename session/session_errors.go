package session

import "errors"

var (
	NoRefreshTokenErr    = errors.New("no refresh token available")
	MalformedRefreshErr  = errors.New("malformed refresh response")
	RefreshRejectedErr   = errors.New("refresh token rejected")
	TransportRequiredErr = errors.New("transport is required")
	StoreRequiredErr     = errors.New("credential store is required")
)
