package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"passvault-server/internal/domain"
	"passvault-server/internal/repository"
	"passvault-server/pkg/hash"
	"passvault-server/pkg/jwt"

	"github.com/google/uuid"
)

// AuthService handles registration, login and principal resolution.
// Sessions are stateless signed tokens; logout is purely client-side
// (the cookie is cleared, a leaked token stays valid until expiry).
type AuthService struct {
	accountRepo repository.AccountRepository
	jwtSecret   string
	sessionTTL  time.Duration
}

func NewAuthService(accountRepo repository.AccountRepository, jwtSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		jwtSecret:   jwtSecret,
		sessionTTL:  sessionTTL,
	}
}

// SessionTTL exposes the configured session lifetime so transport code
// can keep the cookie Max-Age aligned with the signed expiry.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Register creates an account and immediately opens a session for it,
// matching the behavior of login.
func (s *AuthService) Register(req *domain.RegisterRequest) (*domain.SessionResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.accountRepo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := hash.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.openSession(account)
}

// Login verifies the password against the stored bcrypt hash. Unknown
// email and wrong password produce the identical error.
func (s *AuthService) Login(req *domain.LoginRequest) (*domain.SessionResponse, error) {
	account, err := s.accountRepo.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := hash.Compare(account.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(account)
}

// ResolvePrincipal maps a verified token subject back to its account.
// The account may have been deleted after the token was issued.
func (s *AuthService) ResolvePrincipal(userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	return account.Public(), nil
}

func (s *AuthService) openSession(account *domain.Account) (*domain.SessionResponse, error) {
	token, err := jwt.GenerateToken(account.ID, s.sessionTTL, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &domain.SessionResponse{
		Account:   account.Public(),
		Token:     token,
		ExpiresIn: int64(s.sessionTTL.Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
