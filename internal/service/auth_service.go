package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/middleware"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/tenant"
	"github.com/mmynk/clarity/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	tenants       *tenant.Directory
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, tenants *tenant.Directory, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		tenants:       tenants,
		logger:        logger,
	}
}

// Register creates a new institution together with its first Admin account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email, "institution", req.Msg.InstitutionName)

	user, err := s.authenticator.Register(ctx, req.Msg.Name, req.Msg.Email, req.Msg.Password, req.Msg.InstitutionName)
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, toConnectError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "institution_id", user.InstitutionID)
	return connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if strings.TrimSpace(req.Msg.Email) == "" || req.Msg.Password == "" {
		return nil, toConnectError(auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, toConnectError(auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token}), nil
}

// GetCurrentUser returns the authenticated user and their institution.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, toConnectError(auth.ErrMissingToken)
	}

	inst, err := s.tenants.ResolveInstitution(ctx, user.InstitutionID)
	if err != nil {
		s.logger.Error("GetCurrentUser failed", "user_id", user.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{
		User:        toAPIUser(user),
		Institution: toAPIInstitution(inst),
	}), nil
}

// CreateUser adds an account to the caller's institution. Admin only.
func (s *AuthService) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	actor := auth.UserFromContext(ctx)
	s.logger.Info("CreateUser request", "email", req.Msg.Email, "role", req.Msg.Role, "actor_id", middleware.GetUserID(ctx))

	role, err := models.ParseRole(req.Msg.Role)
	if err != nil {
		if aerr := auth.Authorize(actor, models.RoleAdmin); aerr != nil {
			return nil, toConnectError(aerr)
		}
		return nil, toConnectError(auth.ErrInvalidRole)
	}

	user, err := s.authenticator.CreateUser(ctx, actor, req.Msg.Name, req.Msg.Email, req.Msg.Password, role)
	if err != nil {
		s.logger.Warn("CreateUser failed", "email", req.Msg.Email, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role.String(), "institution_id", user.InstitutionID)
	return connect.NewResponse(&api.CreateUserResponse{User: toAPIUser(user)}), nil
}
