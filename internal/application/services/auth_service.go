package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/infrastructure/config"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and token validation. Password
// hashing and credential issuance live here, outside the collaboration
// core, which only ever sees an authenticated user id.
type AuthService struct {
	userRepo  ports.UserRepository
	jwtConfig config.JWTConfig
	logger    *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, jwtConfig config.JWTConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// Register creates a new account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" || email == "" || req.Password == "" {
		return nil, entities.Invalid("Please provide all fields")
	}
	if len(username) < entities.MinUsernameLen {
		return nil, entities.Invalid(fmt.Sprintf("Username must be at least %d characters long", entities.MinUsernameLen))
	}
	if len(username) > entities.MaxUsernameLen {
		return nil, entities.Invalid(fmt.Sprintf("Username cannot exceed %d characters", entities.MaxUsernameLen))
	}
	if len(req.Password) < entities.MinPasswordLen {
		return nil, entities.Invalid(fmt.Sprintf("Password must be at least %d characters long", entities.MinPasswordLen))
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, entities.Conflict("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Infow("User registered", "user_id", user.ID, "email", user.Email)

	user.PasswordHash = ""
	return &ports.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token. The same message
// covers an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, entities.Invalid("Please provide email and password")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		s.logger.Warnw("Login attempt with unknown email", "email", req.Email)
		return nil, entities.Forbidden("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warnw("Login attempt with invalid password", "user_id", user.ID)
		return nil, entities.Forbidden("Invalid email or password")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Infow("User logged in", "user_id", user.ID)

	user.PasswordHash = ""
	return &ports.AuthResponse{Token: token, User: user}, nil
}

// ValidateToken validates a JWT and returns the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	return &ports.Claims{UserID: userID, Email: claims.Email}, nil
}

func (s *AuthService) generateToken(user *entities.User) (string, error) {
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
