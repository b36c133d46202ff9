// Package service runs the radar: it refreshes the taste profile from new
// liked songs, finds and gates new releases, ranks them and writes the
// playlists, snapshot and exports.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/soltify/internal/adapters/repository"
	"github.com/okian/soltify/internal/adapters/worker"
	"github.com/okian/soltify/internal/config"
	"github.com/okian/soltify/internal/domain/gate"
	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/source"
	"github.com/okian/soltify/pkg/logger"
)

// MusicService is the streaming service the radar reads from and writes to.
type MusicService interface {
	source.LikedSongs
	source.RelatedArtists
	source.ArtistReleases
	source.Playlists
	// ResolveRelease fills in catalogue data of a release known only by
	// artist and name. Fails with model.ErrNotFound when the catalogue
	// does not carry it.
	ResolveRelease(ctx context.Context, rel model.Release) (model.Release, error)
}

// Exporter writes the human-readable output of a run.
type Exporter interface {
	WriteProfile(ctx context.Context, entries []model.TasteEntry) error
	WriteReleases(ctx context.Context, kind model.ReleaseKind, releases []model.Release) error
}

// Progress receives stage updates for the console.
type Progress interface {
	Stage(msg string)
	Done(msg string)
	Warn(msg string)
	Fail(msg string)
}

type nopProgress struct{}

func (nopProgress) Stage(string) {}
func (nopProgress) Done(string)  {}
func (nopProgress) Warn(string)  {}
func (nopProgress) Fail(string)  {}

// Service implements one radar run over its collaborators.
type Service struct {
	mu      sync.Mutex
	running bool

	cfg       *config.Config
	store     repository.Store
	music     MusicService
	critics   source.CriticReviews
	confirmer gate.Confirmer
	exporter  Exporter
	progress  Progress
	pool      *worker.Pool

	dryRun bool
	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfirmer sets who answers content filter questions.
func WithConfirmer(c gate.Confirmer) Option {
	return func(s *Service) {
		s.confirmer = c
	}
}

// WithExporter sets the writer of the CSV exports.
func WithExporter(e Exporter) Option {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithProgress sets the console progress sink.
func WithProgress(p Progress) Option {
	return func(s *Service) {
		if p != nil {
			s.progress = p
		}
	}
}

// WithDryRun leaves playlists and the snapshot untouched.
func WithDryRun(dry bool) Option {
	return func(s *Service) {
		s.dryRun = dry
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunIDs overrides the run id generator.
func WithRunIDs(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. cfg must be validated.
func New(cfg *config.Config, store repository.Store, music MusicService, critics source.CriticReviews, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		store:    store,
		music:    music,
		critics:  critics,
		progress: nopProgress{},
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.pool = worker.NewPool("releases", worker.WithSize(cfg.ScanWorkers), worker.WithLogger(s.logger.Named("pool")))

	return s
}

// Result summarizes a finished run.
type Result struct {
	RunID       string
	ColdStart   bool
	NewSongs    int
	Artists     int
	ProfileSize int
	Admitted    map[model.ReleaseKind]int
	Removed     map[model.ReleaseKind]int
	OutOfWindow int
	Albums      []model.Release
	Singles     []model.Release
	Took        time.Duration
}

// TopArtists returns the n best entries of the saved profile above the
// configured threshold. n <= 0 returns all of them.
func (s *Service) TopArtists(ctx context.Context, n int) ([]model.TasteEntry, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	entries := sortProfile(snap.Profile, s.cfg.ScoreThreshold)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// History returns up to n saved run summaries, newest first.
func (s *Service) History(ctx context.Context, n int) ([]repository.Run, error) {
	return s.store.Runs(ctx, n)
}
