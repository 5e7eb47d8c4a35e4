package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fooddelivery/apperr"
	"fooddelivery/models"
	"fooddelivery/utils"
	"fooddelivery/validation"
)

type UserStore interface {
	CreateUserWithRole(ctx context.Context, u *models.User, role string) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	AssignRole(ctx context.Context, userID uuid.UUID, role string) error
}

// TokenIssuer signs bearer tokens. *middleware.Auth implements it.
type TokenIssuer interface {
	IssueToken(userID uuid.UUID, roles []string) (string, time.Time, error)
}

type UserService struct {
	store  UserStore
	tokens TokenIssuer
	log    zerolog.Logger
}

func NewUserService(store UserStore, tokens TokenIssuer, log zerolog.Logger) *UserService {
	return &UserService{store: store, tokens: tokens, log: log}
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User      *models.User `json:"user"`
	Roles     []string     `json:"roles"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Signup registers a customer and logs them in.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*AuthResult, error) {
	if err := validation.Signup(&req); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", utils.ErrorWithTrace(err, "signup"))
	}
	u := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:    strings.TrimSpace(req.Phone),
		Password: hash,
	}
	if err := s.store.CreateUserWithRole(ctx, u, models.RoleCustomer); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID.String()).Msg("customer signed up")
	return s.issue(u, []string{models.RoleCustomer})
}

// Login checks the credentials. Unknown email and wrong password look the
// same to the caller.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	if err := validation.Login(&req); err != nil {
		return nil, err
	}
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthenticated("Invalid email or password.")
		}
		return nil, err
	}
	if err := utils.CheckPassword(u.Password, req.Password); err != nil {
		return nil, apperr.Unauthenticated("Invalid email or password.")
	}
	roles, err := s.store.GetUserRoles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(u, roles)
}

func (s *UserService) issue(u *models.User, roles []string) (*AuthResult, error) {
	token, exp, err := s.tokens.IssueToken(u.ID, roles)
	if err != nil {
		return nil, apperr.Internal("issue token", utils.ErrorWithTrace(err, "sign token"))
	}
	return &AuthResult{User: u, Roles: roles, Token: token, ExpiresAt: exp}, nil
}

// BootstrapAdmin grants the admin role to an existing account. It is run at
// startup; an unknown email is logged and skipped.
func (s *UserService) BootstrapAdmin(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			s.log.Warn().Str("email", email).Msg("bootstrap admin account does not exist yet")
			return nil
		}
		return err
	}
	if err := s.store.AssignRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	s.log.Info().Str("user_id", u.ID.String()).Msg("admin role granted")
	return nil
}
