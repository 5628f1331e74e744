package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/gateway/backend"
	"driver-companion/internal/logx"
	"driver-companion/internal/session"
)

// Backend is the part of the backend client used for login and logout.
type Backend interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error)
	Logout(ctx context.Context) error
}

// Status is the local login state.
type Status struct {
	Authenticated bool           `json:"authenticated"`
	Driver        *domain.Driver `json:"driver,omitempty"`
}

// Service logs the driver in and out and answers who is logged in.
type Service struct {
	backend  Backend
	store    session.Store
	validate *validator.Validate
	logger   logx.Logger
	now      func() time.Time

	mu       sync.Mutex
	onLogout []func()
}

// NewService creates an auth Service.
func NewService(b Backend, store session.Store, logger logx.Logger) *Service {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		backend:  b,
		store:    store,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// OnLogout registers fn to run after every logout, explicit or forced.
func (s *Service) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Login validates the credentials and opens a driver session.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (domain.Driver, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := s.validate.Struct(creds); err != nil {
		return domain.Driver{}, fmt.Errorf("credentials: %w", apperr.ErrValidation)
	}

	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("login rejected", logx.Email("email", creds.Email), logx.Err(err))
		return domain.Driver{}, err
	}

	s.logger.Info("driver logged in", logx.DriverID(res.Driver.ID))
	return res.Driver, nil
}

// Logout ends the session. Local state is cleared even when the backend call fails.
func (s *Service) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)
	s.SessionEnded()
	if err != nil {
		return err
	}
	s.logger.Info("driver logged out")
	return nil
}

// SessionEnded runs the logout hooks. It is also called when the backend
// rejected the session.
func (s *Service) SessionEnded() {
	s.mu.Lock()
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Status reports whether a usable session exists and, if so, the stored driver.
func (s *Service) Status(ctx context.Context) (Status, error) {
	ok, err := session.Authenticated(ctx, s.store, s.now())
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{}, nil
	}
	sess, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return Status{}, nil
		}
		return Status{}, err
	}
	d := backend.ParseDriver(sess.Driver)
	return Status{Authenticated: true, Driver: &d}, nil
}

// DriverID returns the id of the logged-in driver, or "" when nobody is logged in.
func (s *Service) DriverID(ctx context.Context) string {
	sess, err := s.store.Load(ctx)
	if err != nil || len(sess.Driver) == 0 {
		return ""
	}
	return backend.ParseDriver(sess.Driver).ID
}
