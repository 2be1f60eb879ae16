package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/models"
	"medstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the identity carried by a validated token.
type Claims struct {
	Subject string
	Role    string
}

// RegisterInput is the data a customer signs up with.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Address  models.Address
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	users     repositories.UserRepository
	admins    repositories.AdminRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repositories.UserRepository,
	admins repositories.AdminRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		admins:    admins,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser hashes the password, stores an active user and signs them in.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", apperrors.AlreadyExists("user", "email", email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: string(hashedPassword),
		Address:  in.Address,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID, models.RoleUser)
	if err != nil {
		return nil, "", err
	}
	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return user, token, nil
}

// LoginUser authenticates a customer and returns a JWT token if successful.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.Unauthorized("Invalid credentials")
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return nil, "", apperrors.Unauthorized("Account is disabled")
	}

	token, err := s.issueToken(user.ID, models.RoleUser)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginAdmin authenticates an administrator.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*models.Admin, string, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.Unauthorized("Invalid credentials")
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.issueToken(admin.ID, admin.Role)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// GetAdmin returns the profile of an administrator.
func (s *AuthService) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

// EnsureAdmin creates the bootstrap administrator unless it already exists.
// An empty email disables the bootstrap.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if password == "" {
		return errors.New("ADMIN_PASSWORD is required to create the initial admin")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.Admin{Email: email, Password: string(hashedPassword), Role: models.RoleAdmin}
	if err := s.admins.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "initial admin created", slog.String("email", email))
	return nil
}

func (s *AuthService) issueToken(subject, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  now.Add(s.tokenTTL).Unix(),
		"iat":  now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning its identity if valid.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	return &Claims{Subject: sub, Role: role}, nil
}
