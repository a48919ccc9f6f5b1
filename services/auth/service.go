package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"github.com/SandipanKhanra/letschat/services/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// PolicyError reports a password that fails the configured policy. Its
// message is written for the end user and is safe to return verbatim.
type PolicyError struct {
	message string
}

func (e *PolicyError) Error() string {
	return e.message
}

// dummyHash is a bcrypt digest of an unguessable throwaway value. Compared
// against when the email is unknown so that the response time matches the
// wrong-password path.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

type MailService interface {
	SendWelcome(to string, displayName string) error
}

type Service struct {
	config      *config.Config
	users       *user.Service
	mailService MailService
	logger      *logging.Service
}

func NewService(cfg *config.Config, users *user.Service, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		users:  users,
		logger: logger,
	}
}

func (s *Service) SetMailService(mailService MailService) {
	s.mailService = mailService
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		return &PolicyError{message: fmt.Sprintf("password must be at least %d characters", s.config.Auth.MinLength)}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	var missing []string

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if s.config.Auth.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if s.config.Auth.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if s.config.Auth.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if s.config.Auth.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		return &PolicyError{message: fmt.Sprintf("password must contain at least %s", strings.Join(missing, ", "))}
	}

	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to hash password", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) Register(email, password, displayName string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &user.User{
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
	}

	if err := s.users.Create(newUser); err != nil {
		return nil, err
	}

	s.sendWelcomeEmail(newUser)

	return newUser, nil
}

// VerifyCredentials resolves an email/password pair to a user. An unknown
// email and a wrong password both cost one bcrypt comparison and return the
// same error, so callers cannot be used as an account oracle.
func (s *Service) VerifyCredentials(email, password string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			if s.logger != nil {
				s.logger.Warn("login failed - unknown email")
			}
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if s.logger != nil {
			s.logger.Warn("login failed - wrong password",
				zap.Uint("user_id", account.ID))
		}
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// sendWelcomeEmail is best effort: delivery runs on its own goroutine and a
// failure never rolls back or fails the signup.
func (s *Service) sendWelcomeEmail(account *user.User) {
	if s.mailService == nil || !s.config.Mail.Enabled {
		return
	}

	go func(email, name string) {
		if err := s.mailService.SendWelcome(email, name); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to send welcome email", zap.Error(err))
			}
		}
	}(account.Email, account.DisplayName)
}
