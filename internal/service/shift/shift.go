package shift

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
)

// Backend is the part of the backend client that manages the driver's duty state.
type Backend interface {
	GetProfile(ctx context.Context) (domain.Driver, error)
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Driver, error)
	ClockIn(ctx context.Context, loc *domain.Location) error
	ClockOut(ctx context.Context) error
	BreakIn(ctx context.Context) error
	BreakOut(ctx context.Context) error
}

// Tracker is started while the driver is on duty.
type Tracker interface {
	Start()
	Stop()
}

// Service coordinates the driver's shift: profile, clock-in/out and breaks.
type Service struct {
	backend          Backend
	tracker          Tracker
	validate         *validator.Validate
	logger           logx.Logger
	operationTimeout time.Duration
}

// NewService creates a shift Service. tracker may be nil.
func NewService(b Backend, tracker Tracker, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		backend:          b,
		tracker:          tracker,
		validate:         validator.New(),
		logger:           logger,
		operationTimeout: timeout,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Profile returns the driver profile with its duty state.
func (s *Service) Profile(ctx context.Context) (domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.backend.GetProfile(ctx)
}

// UpdateProfile validates and saves the editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Driver, error) {
	upd = trimUpdate(upd)
	if upd == (domain.ProfileUpdate{}) {
		return domain.Driver{}, fmt.Errorf("profile update is empty: %w", apperr.ErrValidation)
	}
	if err := s.validate.Struct(upd); err != nil {
		return domain.Driver{}, fmt.Errorf("profile update: %v: %w", err, apperr.ErrValidation)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.backend.UpdateProfile(ctx, upd)
}

func trimUpdate(u domain.ProfileUpdate) domain.ProfileUpdate {
	u.Name = strings.TrimSpace(u.Name)
	u.Phone = strings.TrimSpace(u.Phone)
	u.VehicleType = strings.TrimSpace(u.VehicleType)
	u.VehicleNumber = strings.TrimSpace(u.VehicleNumber)
	u.LicenseNumber = strings.TrimSpace(u.LicenseNumber)
	u.EmergencyContact = strings.TrimSpace(u.EmergencyContact)
	return u
}

// ClockIn starts the shift, optionally at loc, and starts location tracking.
func (s *Service) ClockIn(ctx context.Context, loc *domain.Location) error {
	if loc != nil {
		if err := s.validate.Struct(loc); err != nil {
			return fmt.Errorf("clock-in location: %w", apperr.ErrValidation)
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.backend.ClockIn(ctx, loc); err != nil {
		return err
	}

	if s.tracker != nil {
		s.tracker.Start()
	}
	s.logger.Info("driver clocked in", logx.Bool("with_location", loc != nil))
	return nil
}

// ClockOut ends the shift and stops location tracking.
func (s *Service) ClockOut(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.backend.ClockOut(ctx); err != nil {
		return err
	}

	if s.tracker != nil {
		s.tracker.Stop()
	}
	s.logger.Info("driver clocked out")
	return nil
}

// StartBreak pauses the shift.
func (s *Service) StartBreak(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.backend.BreakIn(ctx)
}

// EndBreak resumes the shift.
func (s *Service) EndBreak(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.backend.BreakOut(ctx)
}

// Resume starts location tracking when the profile shows the driver on duty,
// e.g. after a restart during a shift.
func (s *Service) Resume(ctx context.Context) (domain.Driver, error) {
	d, err := s.Profile(ctx)
	if err != nil {
		return domain.Driver{}, err
	}
	if d.Duty.OnDuty && s.tracker != nil {
		s.tracker.Start()
	}
	return d, nil
}
