package repository

import "github.com/okian/soltify/pkg/logger"

// Option applies a configuration option to the BadgerStore.
type Option func(*BadgerStore)

// WithInMemory keeps the database in memory only. The directory is ignored.
func WithInMemory() Option {
	return func(s *BadgerStore) {
		s.inMemory = true
	}
}

// WithHistoryLimit caps the number of run summaries kept.
func WithHistoryLimit(n int) Option {
	return func(s *BadgerStore) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *BadgerStore) {
		if l != nil {
			s.log = l
		}
	}
}
