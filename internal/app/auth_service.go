package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chacha-backend/internal/config"
	"chacha-backend/internal/model"
	"chacha-backend/internal/pkg/jwtutil"
	"chacha-backend/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrBadGoogleToken     = errors.New("google credential missing email")
)

// AuthService handles registration, login, Google sign-in, and profile
// updates. Tokens carry email, name, and age so the mascot can personalize
// replies without a DB round trip.
type AuthService struct {
	users *repository.UserRepository
	cfg   config.AuthConfig
}

// AuthResult is a freshly issued token plus the user it identifies.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func NewAuthService(users *repository.UserRepository, cfg config.AuthConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

func (s *AuthService) tokenTTL() time.Duration {
	hours := s.cfg.TokenExpHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// Register creates a user. Supplying the configured admin code grants the
// admin flag; a wrong code is ignored rather than rejected.
func (s *AuthService) Register(name, email, password, adminCode string, age *int) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      adminCode != "" && adminCode == s.cfg.AdminCode,
		Age:          age,
		Provider:     "local",
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// GoogleLogin accepts a Google ID token, creating the account on first
// sign-in. The token's signature is Google's concern; the claims are decoded
// as-is and only the email is required.
func (s *AuthService) GoogleLogin(credential string) (*AuthResult, error) {
	claims, err := jwtutil.DecodeUnverified(credential)
	if err != nil {
		return nil, ErrBadGoogleToken
	}
	email, _ := claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadGoogleToken
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{
			Name:     name,
			Email:    email,
			Provider: "google",
		}
		if err := s.users.Create(user); err != nil {
			return nil, err
		}
	}
	return s.issue(user)
}

// UpdateProfile changes name and/or age and re-issues the token so its
// personalization claims stay current.
func (s *AuthService) UpdateProfile(email string, name *string, age *int) (*AuthResult, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	fields := map[string]any{}
	if name != nil && strings.TrimSpace(*name) != "" {
		fields["name"] = strings.TrimSpace(*name)
		user.Name = strings.TrimSpace(*name)
	}
	if age != nil {
		fields["age"] = *age
		user.Age = age
	}
	if err := s.users.UpdateFields(email, fields); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) GetUserByEmail(email string) (*model.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.cfg.JWTSecret, s.tokenTTL(), user.Email, user.Name, user.Age)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
