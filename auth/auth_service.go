// Package auth is the thin façade between the presentation layer and the
// session manager. Each operation issues exactly one call through the
// session, interprets the typed payload, updates the credential store on
// success, and reports pending/success/error status on the application bus.
// Retry and refresh coordination live entirely in the session package.
package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-storefront-client/credentials"
	"github.com/jrsteele09/go-storefront-client/session"
	"github.com/jrsteele09/go-storefront-client/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service exposes the auth operations to the presentation layer.
type Service struct {
	session *session.Manager
	store   credentials.Store
	bus     session.Bus
}

// Option defines a function type to modify the Service instance.
type Option func(*Service)

// WithBus attaches an application event bus for login and status
// notifications.
func WithBus(bus session.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

// NewService initializes an auth Service with required dependencies.
func NewService(sessionManager *session.Manager, options ...Option) (*Service, error) {
	if sessionManager == nil {
		return nil, errors.New("[auth.NewService] session manager is required")
	}

	service := &Service{
		session: sessionManager,
		store:   sessionManager.Store(),
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Register creates a new account. The credential store is untouched; the
// user signs in afterwards.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*credentials.User, error) {
	s.reportPending(OperationRegister)

	payload, err := s.post(ctx, RouteRegister, req)
	if err != nil {
		s.reportError(OperationRegister, err)
		return nil, err
	}
	if !payload.Success || payload.Data == nil {
		err := errors.Wrap(RegistrationFailedErr, payload.Message)
		s.reportError(OperationRegister, err)
		return nil, err
	}

	user := payload.Data.User.toUser()
	s.reportSuccess(OperationRegister, payload.Message)
	return &user, nil
}

// Login authenticates and atomically replaces the credential store with the
// issued token pair and user identity.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*credentials.User, error) {
	s.reportPending(OperationLogin)

	payload, err := s.post(ctx, RouteLogin, req)
	if err != nil {
		s.reportError(OperationLogin, err)
		return nil, err
	}
	if !payload.Success || payload.Data == nil || payload.Data.AccessToken == "" {
		err := errors.Wrap(LoginFailedErr, payload.Message)
		s.reportError(OperationLogin, err)
		return nil, err
	}

	user := payload.Data.User.toUser()
	s.store.Replace(credentials.Credentials{
		AccessToken:  payload.Data.AccessToken,
		RefreshToken: payload.Data.RefreshToken,
		User:         &user,
	})

	log.Info().Str("role", user.Role).Msg("signed in")
	s.publish(session.TopicLoggedIn)
	s.reportSuccess(OperationLogin, payload.Message)
	return &user, nil
}

// Logout revokes the refresh token on the backend and clears the local
// session. Local state is cleared even when the network call fails.
func (s *Service) Logout(ctx context.Context) error {
	s.reportPending(OperationLogout)

	if refreshToken := s.store.RefreshToken(); refreshToken != "" {
		if _, err := s.post(ctx, RouteLogout, logoutRequest{RefreshToken: refreshToken}); err != nil {
			log.Warn().Err(err).Msg("logout request failed, clearing local session anyway")
		}
	}

	s.session.SignOut()
	s.reportSuccess(OperationLogout, "")
	return nil
}

// Refresh explicitly runs a token refresh. It joins the session manager's
// shared refresh cycle, so an explicit refresh concurrent with a
// 401-triggered one never double-fires.
func (s *Service) Refresh(ctx context.Context) (*credentials.User, error) {
	s.reportPending(OperationRefresh)

	if err := s.session.Refresh(ctx); err != nil {
		s.reportError(OperationRefresh, err)
		return nil, err
	}

	snapshot := s.store.Snapshot()
	s.reportSuccess(OperationRefresh, "")
	return snapshot.User, nil
}

// ForgotPassword asks the backend to email a reset token.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	s.reportPending(OperationForgotPassword)

	payload, err := s.post(ctx, RouteForgotPassword, ForgotPasswordRequest{Email: email})
	if err != nil {
		s.reportError(OperationForgotPassword, err)
		return "", err
	}
	if !payload.Success {
		err := errors.Wrap(RequestRejectedErr, payload.Message)
		s.reportError(OperationForgotPassword, err)
		return "", err
	}

	s.reportSuccess(OperationForgotPassword, payload.Message)
	return payload.Message, nil
}

// ResetPassword completes the forgot-password flow.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	s.reportPending(OperationResetPassword)

	payload, err := s.post(ctx, RouteChangePassword, req)
	if err != nil {
		s.reportError(OperationResetPassword, err)
		return "", err
	}
	if !payload.Success {
		err := errors.Wrap(RequestRejectedErr, payload.Message)
		s.reportError(OperationResetPassword, err)
		return "", err
	}

	s.reportSuccess(OperationResetPassword, payload.Message)
	return payload.Message, nil
}

// CurrentUser returns the authenticated principal, or NotAuthenticatedErr.
func (s *Service) CurrentUser() (*credentials.User, error) {
	snapshot := s.store.Snapshot()
	if !snapshot.IsAuthenticated() || snapshot.User == nil {
		return nil, NotAuthenticatedErr
	}
	return snapshot.User, nil
}

// IsAuthenticated reports whether a session is live.
func (s *Service) IsAuthenticated() bool {
	return s.store.Snapshot().IsAuthenticated()
}

func (s *Service) post(ctx context.Context, path string, body any) (*AuthResponse, error) {
	resp, err := s.session.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var payload AuthResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (s *Service) publish(topic string, args ...interface{}) {
	if s.bus != nil {
		s.bus.Publish(topic, args...)
	}
}
