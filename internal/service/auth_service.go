package service

import (
	"alcyxob/boxing-app/internal/config"
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = newError(ErrConflict, "user with this email already exists")
	ErrAuthenticationFailed = newError(ErrUnauthorized, "invalid email or password")
	ErrInvalidToken         = newError(ErrUnauthorized, "invalid or expired token")
	ErrInvalidEmail         = newError(ErrValidation, "invalid email format")
	ErrMissingCredentials   = newError(ErrValidation, "username, email and password are required")
	ErrWeakPassword         = newError(ErrValidation, "password must be at least 6 characters")
)

const (
	tokenIssuer       = "boxing-app"
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TokenPair is what a successful login or refresh hands to the client.
type TokenPair struct {
	AccessToken      string    `json:"token"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// Claims is the payload of both token kinds.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ParseAccessToken(token string) (*Claims, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

// --- Service Implementation ---

type authService struct {
	userRepo repository.UserRepository
	cfg      config.JWTConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, cfg config.JWTConfig, logger *zap.Logger) AuthService {
	if cfg.Secret == "" {
		panic("JWT secret cannot be empty")
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 20 * time.Minute
	}
	if cfg.RefreshExpiration <= 0 {
		cfg.RefreshExpiration = 7 * 24 * time.Hour
	}
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a regular user account and logs it in.
func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.createUser(ctx, username, email, password, domain.RoleUser)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) createUser(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError("lookup user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// unique index catches a concurrent registration with the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, storageError("create user", err)
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

// Login checks the password and issues a fresh token pair.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, validationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAuthenticationFailed
		}
		return nil, nil, storageError("lookup user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrAuthenticationFailed
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = ""
	return user, tokens, nil
}

// Refresh validates a refresh token and issues a new pair for the same user.
// The role is re-read so a promotion takes effect on the next refresh.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecretOrDefault())
	if err != nil {
		return nil, err
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storageError("lookup user", err)
	}
	return s.issueTokens(user)
}

func (s *authService) ParseAccessToken(token string) (*Claims, error) {
	return s.parse(token, s.cfg.Secret)
}

func (s *authService) GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("lookup user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is already taken.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.createUser(ctx, "admin", email, password, domain.RoleAdmin)
	if errors.Is(err, ErrUserAlreadyExists) {
		return nil
	}
	if err == nil {
		s.logger.Info("bootstrap admin created", zap.String("email", email))
	}
	return err
}

// --- JWT Helpers ---

func (s *authService) issueTokens(user *domain.User) (*TokenPair, error) {
	now := s.now()
	pair := &TokenPair{
		AccessExpiresAt:  now.Add(s.cfg.Expiration),
		RefreshExpiresAt: now.Add(s.cfg.RefreshExpiration),
	}
	var err error
	if pair.AccessToken, err = s.sign(user, now, pair.AccessExpiresAt, s.cfg.Secret); err != nil {
		return nil, err
	}
	if pair.RefreshToken, err = s.sign(user, now, pair.RefreshExpiresAt, s.cfg.RefreshSecretOrDefault()); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *authService) sign(user *domain.User, issuedAt, expiresAt time.Time, secret string) (string, error) {
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *authService) parse(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
