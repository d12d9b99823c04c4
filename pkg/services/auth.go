package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/navarrastar/mentorship-landing/pkg/models"
	"github.com/navarrastar/mentorship-landing/pkg/storage"
	"github.com/navarrastar/mentorship-landing/pkg/utils"
)

var (
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	errMissingSession = errors.New("missing session id")
)

// SessionState says whether the demo session points at a known user
type SessionState string

const (
	SessionNone        SessionState = "none"
	SessionActive      SessionState = "active"
	SessionUnknownUser SessionState = "unknown-user"
)

// DemoSession is the result of reading the session pointer. Only
// SessionActive counts as logged in.
type DemoSession struct {
	State SessionState
	Email string
	User  *models.DemoUser
}

// LoggedIn reports whether the session points at a registered user
func (s DemoSession) LoggedIn() bool {
	return s.State == SessionActive && s.User != nil
}

// DemoAuthService manages demo accounts and one session pointer per client.
// sessionID identifies the client; an empty id has no session.
type DemoAuthService interface {
	SignUp(ctx context.Context, sessionID, fullName, email, password string) (*models.DemoUser, error)
	LogIn(ctx context.Context, sessionID, email, password string) (*models.DemoUser, error)
	LogOut(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) (DemoSession, error)
}

type demoAuthServiceImpl struct {
	kv     storage.Store
	logger *slog.Logger

	// mu serializes the registry read-modify-write
	mu sync.Mutex
}

// NewDemoAuthService creates a demo auth service backed by the key-value store
func NewDemoAuthService(kv storage.Store) DemoAuthService {
	return &demoAuthServiceImpl{
		kv:     kv,
		logger: slog.Default().With("component", "demo-auth"),
	}
}

func (s *demoAuthServiceImpl) SignUp(ctx context.Context, sessionID, fullName, email, password string) (*models.DemoUser, error) {
	user := models.DemoUser{
		FullName: strings.TrimSpace(fullName),
		Email:    models.NormalizeEmail(email),
		Password: strings.TrimSpace(password),
	}

	fields := map[string]string{}
	if utf8.RuneCountInString(user.FullName) < 2 {
		fields["fullName"] = "Please enter your full name"
	}
	if user.Email == "" {
		fields["email"] = "Please enter your email"
	}
	if user.Password == "" {
		fields["password"] = "Please choose a password"
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}

	if sessionID == "" {
		return nil, errMissingSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == user.Email {
			return nil, ErrDuplicateAccount
		}
	}

	users = append(users, user)
	if err := storage.SetJSON(ctx, s.kv, storage.KeyDemoUsers, users); err != nil {
		return nil, fmt.Errorf("error saving demo users: %w", err)
	}
	if err := s.setSession(ctx, sessionID, user.Email); err != nil {
		return nil, err
	}

	s.logger.Info("demo account created", "contact", utils.Fingerprint(user.Email))
	return &user, nil
}

func (s *demoAuthServiceImpl) LogIn(ctx context.Context, sessionID, email, password string) (*models.DemoUser, error) {
	if sessionID == "" {
		return nil, errMissingSession
	}
	normalized := models.NormalizeEmail(email)
	password = strings.TrimSpace(password)

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == normalized && strings.TrimSpace(u.Password) == password {
			if err := s.setSession(ctx, sessionID, u.Email); err != nil {
				return nil, err
			}
			user := u
			return &user, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (s *demoAuthServiceImpl) LogOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, storage.SessionKey(sessionID)); err != nil {
		return fmt.Errorf("error clearing demo session: %w", err)
	}
	return nil
}

// CurrentUser reads the session pointer fresh on every call
func (s *demoAuthServiceImpl) CurrentUser(ctx context.Context, sessionID string) (DemoSession, error) {
	if sessionID == "" {
		return DemoSession{State: SessionNone}, nil
	}

	var email string
	ok, err := storage.GetJSON(ctx, s.kv, storage.SessionKey(sessionID), &email)
	if err != nil {
		s.logger.Warn("unreadable demo session", "error", err)
		return DemoSession{State: SessionUnknownUser}, nil
	}
	if !ok || email == "" {
		return DemoSession{State: SessionNone}, nil
	}

	users, err := s.users(ctx)
	if err != nil {
		return DemoSession{}, err
	}
	normalized := models.NormalizeEmail(email)
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == normalized {
			user := u
			return DemoSession{State: SessionActive, Email: email, User: &user}, nil
		}
	}
	return DemoSession{State: SessionUnknownUser, Email: email}, nil
}

func (s *demoAuthServiceImpl) users(ctx context.Context) ([]models.DemoUser, error) {
	var users []models.DemoUser
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyDemoUsers, &users); err != nil {
		return nil, fmt.Errorf("error reading demo users: %w", err)
	}
	return users, nil
}

func (s *demoAuthServiceImpl) setSession(ctx context.Context, sessionID, email string) error {
	if err := storage.SetJSON(ctx, s.kv, storage.SessionKey(sessionID), email); err != nil {
		return fmt.Errorf("error saving demo session: %w", err)
	}
	return nil
}
