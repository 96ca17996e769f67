package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/redis"
	"github.com/storerate/storerate-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password does not meet the policy")
	ErrInvalidName        = errors.New("name must be between 3 and 60 characters")
	ErrInvalidAddress     = errors.New("address must be at most 400 characters")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleMismatch       = errors.New("account role does not match this portal")
)

type AuthService interface {
	Register(name, email, password, address, role string) (*model.User, error)
	Login(email, password string, expectedRole model.UserRole) (*model.User, string, error)
	Logout(ctx context.Context, token string) error
	UpdatePassword(userID uint, currentPassword, newPassword string) error
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtSecret   string
	tokenExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenExpiry time.Duration) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
	}
}

// Register creates a new account. Unlike Login it returns no token: the
// client is expected to log in after registering.
func (s *authService) Register(name, email, password, address, role string) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	if role == "" {
		role = string(model.RoleUser)
	}
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Address:      address,
		Role:         model.UserRole(role),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, nil
}

// Login authenticates the user and issues an access token. When
// expectedRole is non-empty, accounts with a different role are rejected
// with ErrRoleMismatch so each portal only admits its own audience.
func (s *authService) Login(email, password string, expectedRole model.UserRole) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrInvalidCredentials
	}

	if expectedRole != "" && user.Role != expectedRole {
		logger.Warn("Login failed: role mismatch", map[string]interface{}{
			"email":    email,
			"role":     user.Role,
			"expected": expectedRole,
		})
		return user, "", ErrRoleMismatch
	}

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, token, nil
}

// Logout blacklists the access token for its remaining lifetime. A no-op
// when Redis is not configured: the token then simply ages out.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// Expired or malformed tokens need no blacklisting
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return redis.BlacklistToken(ctx, token, ttl)
}

func (s *authService) UpdatePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrWrongPassword
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	logger.Info("Password updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ValidatePassword enforces the platform password policy: 8 to 16
// characters with at least one uppercase letter and one special character.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 16 {
		return ErrWeakPassword
	}
	var hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}

func validateName(name string) error {
	length := len(strings.TrimSpace(name))
	if length < 3 || length > 60 {
		return ErrInvalidName
	}
	return nil
}

func validateAddress(address string) error {
	if len(address) > 400 {
		return ErrInvalidAddress
	}
	return nil
}
