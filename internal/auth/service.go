package auth

import (
	"context"
	"strings"
	"time"

	pkgauth "github.com/phantomlabs/phantom-backend/pkg/auth"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/security"
)

// Service authenticates the single dashboard operator.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type service struct {
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewService wires auth dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.JWTConfig.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt secret required")
	}
	if params.PasswordConfig.OperatorHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "operator password hash required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		jwt:      params.JWTConfig,
		password: params.PasswordConfig,
		now:      now,
	}, nil
}

// Login verifies the operator credentials and mints an access token.
// Unknown usernames and wrong passwords produce the same error so the
// endpoint does not leak which half was wrong.
func (s *service) Login(_ context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password required")
	}

	if !strings.EqualFold(username, s.password.OperatorUsername) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(req.Password, s.password.OperatorHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	issuedAt := s.now()
	token, err := pkgauth.MintAccessToken(s.jwt, issuedAt, pkgauth.AccessTokenPayload{Username: username})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   issuedAt.Add(s.jwt.Expiration()),
	}, nil
}
