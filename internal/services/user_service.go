package services

import (
	"context"
	"strings"

	"gulmohar/billing/internal/auth"
	"gulmohar/billing/internal/clock"
	"gulmohar/billing/internal/config"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/repository"
	"gulmohar/billing/internal/utils"
	"gulmohar/billing/internal/validator"
)

// RegisterInput is the admin-only staff registration payload.
type RegisterInput struct {
	Username string      `json:"username" validate:"required,min=3,max=50"`
	Password string      `json:"password" validate:"required"`
	FullName string      `json:"fullName" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Role     models.Role `json:"role" validate:"omitempty,role"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// IUserService covers the small staff-account surface bills need for
// attribution.
type IUserService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	FindByID(ctx context.Context, userID utils.SixID) (*models.User, error)
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	// SeedAdmin creates the configured admin account unless it exists.
	SeedAdmin(ctx context.Context) (created bool, err error)
}

type userService struct {
	users repository.UserRepository
	clock clock.Clock
	cfg   *config.Config
	log   *logger.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, clk clock.Clock, cfg *config.Config, log *logger.Logger) IUserService {
	return &userService{users: users, clock: clk, cfg: cfg, log: log.Named("users")}
}

func (s *userService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	invalid := func() error {
		return ierr.NewError("invalid credentials").
			WithHint("Invalid username or password").
			Mark(ierr.ErrUnauthorized)
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, invalid()
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, invalid()
	}
	if !user.IsActive {
		return nil, ierr.NewErrorf("user %s is deactivated", user.Username).
			WithHint("Your account has been deactivated").
			Mark(ierr.ErrUnauthorized)
	}

	token, err := auth.GenerateJWT(user, s.cfg.JwtSecret, s.cfg.JwtTTL, s.clock.Now())
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	s.log.Infow("user logged in", "user_id", user.ID.String(), "username", user.Username)
	return &LoginResult{User: user, Token: token}, nil
}

func (s *userService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validator.ValidateRequest(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleStaff
	}
	return s.create(ctx, in)
}

func (s *userService) SeedAdmin(ctx context.Context) (bool, error) {
	_, err := s.users.FindByUsername(ctx, s.cfg.AdminUsername)
	if err == nil {
		return false, nil
	}
	if !ierr.IsNotFound(err) {
		return false, err
	}

	_, err = s.create(ctx, RegisterInput{
		Username: s.cfg.AdminUsername,
		Password: s.cfg.AdminPassword,
		FullName: "System Administrator",
		Email:    s.cfg.AdminEmail,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) create(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Password must be between %d and 72 characters", auth.MinPasswordLength).
			Mark(ierr.ErrValidation)
	}

	user := &models.User{
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}
	user.Touch(s.clock.Now())
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infow("user created", "user_id", user.ID.String(), "username", user.Username, "role", user.Role)
	return user, nil
}
