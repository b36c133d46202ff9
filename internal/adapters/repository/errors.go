package repository

import (
	"errors"
	"fmt"

	"github.com/okian/soltify/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrNoSnapshot      = fmt.Errorf("no snapshot: %w", model.ErrNotFound)
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	ErrMissingRunID    = errors.New("snapshot without run id")
)
