package service

import "time"

type settings struct {
	now func() time.Time
}

// Option настраивает сервис при создании
type Option func(*settings)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
