package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/session"
	"github.com/straye-as/earsip/internal/transform"
	"go.uber.org/zap"
)

// AuthService owns the session: login stores the bearer token, logout and
// upstream 401s clear it
type AuthService struct {
	exec    Executor
	session *session.Session
	paths   config.AuthConfig
	logger  *zap.Logger
}

func NewAuthService(exec Executor, sess *session.Session, cfg *config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{exec: exec, session: sess, paths: *cfg, logger: logger}
}

// Session returns the session this service authenticates
func (s *AuthService) Session() *session.Session {
	return s.session
}

// Login exchanges credentials for a bearer token and stores it on the session
func (s *AuthService) Login(ctx context.Context, input domain.LoginInput) (*domain.LoginResult, error) {
	if err := schema.Struct(input); err != nil {
		return nil, err
	}

	result, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    http.MethodPost,
		Path:      s.paths.LoginPath,
		Body:      input,
		Validator: schema.RawLogin,
	}, transform.NormalizeLogin, nil)
	if err != nil {
		return nil, err
	}

	s.session.SetToken(result.Token)

	// Some deployments return only the token
	if result.User.Email == "" {
		user, err := s.Me(ctx)
		if err != nil {
			s.logger.Warn("failed to load user after login", zap.Error(err))
		} else {
			result.User = *user
		}
	}

	s.logger.Info("operator logged in", zap.Int64("user_id", result.User.ID))
	return &result, nil
}

// Logout revokes the upstream token and clears the session. An already
// expired token is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	if !s.session.Authenticated() {
		return nil
	}

	_, err := s.exec.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: s.paths.LogoutPath})
	s.session.Clear("logout")

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return nil
	}
	return err
}

// Me returns the operator the session belongs to
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	if !s.session.Authenticated() {
		return nil, ErrUnauthorized
	}
	user, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    http.MethodGet,
		Path:      s.paths.UserPath,
		Validator: schema.RawRecord,
	}, transform.NormalizeUser, schema.User)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
