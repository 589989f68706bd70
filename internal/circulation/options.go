package circulation

import (
	"errors"
	"log/slog"
	"time"
)

// Option configures a Service.
type Option func(*Service) error

// WithClock replaces time.Now, for tests and for replaying a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now == nil {
			return errors.New("circulation: clock must not be nil")
		}
		s.now = now
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			return errors.New("circulation: logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}
