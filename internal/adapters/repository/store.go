// Package repository persists the radar state between runs.
package repository

import (
	"context"
	"time"

	"github.com/okian/soltify/internal/domain/model"
)

// Snapshot is everything a run carries over to the next one.
type Snapshot struct {
	RunID   string             `json:"run_id"`
	LastRun time.Time          `json:"last_run"`
	Songs   []model.Song       `json:"songs"`
	Artists []model.ArtistNode `json:"artists"`
	Profile []model.TasteEntry `json:"profile"`
	Albums  []model.Release    `json:"albums"`
	Singles []model.Release    `json:"singles"`
}

// Run is the summary kept for every saved snapshot.
type Run struct {
	RunID   string    `json:"run_id"`
	LastRun time.Time `json:"last_run"`
	Songs   int       `json:"songs"`
	Artists int       `json:"artists"`
	Profile int       `json:"profile"`
	Albums  int       `json:"albums"`
	Singles int       `json:"singles"`
}

// Store provides read/write access to the persisted state.
type Store interface {
	// Load returns the latest snapshot.
	// Returns an error wrapping model.ErrNotFound when nothing was saved yet.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the latest snapshot and appends a run summary.
	Save(ctx context.Context, snap Snapshot) error

	// Runs returns up to limit run summaries, newest first. A limit <= 0 returns all.
	Runs(ctx context.Context, limit int) ([]Run, error)

	Close() error
}

func summarize(s Snapshot) Run {
	return Run{
		RunID:   s.RunID,
		LastRun: s.LastRun,
		Songs:   len(s.Songs),
		Artists: len(s.Artists),
		Profile: len(s.Profile),
		Albums:  len(s.Albums),
		Singles: len(s.Singles),
	}
}
