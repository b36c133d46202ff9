package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/soltify/internal/adapters/repository"
	"github.com/okian/soltify/internal/adapters/worker"
	"github.com/okian/soltify/internal/config"
	"github.com/okian/soltify/internal/domain/dedupe"
	"github.com/okian/soltify/internal/domain/gate"
	"github.com/okian/soltify/internal/domain/graph"
	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/ranking"
	"github.com/okian/soltify/internal/domain/releases"
	"github.com/okian/soltify/internal/domain/source"
	"github.com/okian/soltify/internal/domain/taste"
	"github.com/okian/soltify/internal/domain/tier"
	"github.com/okian/soltify/pkg/logger"
	"github.com/okian/soltify/pkg/metrics"
)

// run holds the state of one Run call.
type run struct {
	id      string
	now     time.Time
	minDate time.Time
	log     logger.Logger

	snap    repository.Snapshot
	songs   []model.Song
	graph   *graph.Graph
	profile *taste.Profile

	albums   *releases.List
	singles  *releases.List
	albumPl  source.Playlist
	singlePl source.Playlist
	gates    map[model.ReleaseKind]*gate.Gate

	res Result
}

// Run performs one full radar pass. Any upstream failure aborts the run
// before anything is saved, so the previous snapshot stays authoritative.
func (s *Service) Run(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Result{}, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	r := &run{id: s.newID(), now: s.now()}
	r.log = s.logger.With(logger.String("run_id", r.id))
	r.minDate = r.now.AddDate(0, 0, -s.cfg.MaxDays)
	r.res = Result{
		RunID:    r.id,
		Admitted: map[model.ReleaseKind]int{},
		Removed:  map[model.ReleaseKind]int{},
	}
	r.log.Info(ctx, "radar run started", logger.Time("min_date", r.minDate), logger.Bool("dry_run", s.dryRun))

	steps := []struct {
		stage string
		fn    func(context.Context, *run) error
	}{
		{"Loading saved state", s.loadState},
		{"Reading new liked songs", s.readLibrary},
		{"Building taste profile", s.buildProfile},
		{"Reading playlists", s.readPlaylists},
		{"Checking favourite artists for new releases", s.scanPrimary},
		{"Checking critic reviews for more releases", s.scanCritics},
		{"Ranking releases", s.rank},
		{"Writing playlists and state", s.persist},
		{"Writing exports", s.export},
	}
	for _, st := range steps {
		s.progress.Stage(st.stage)
		if err := st.fn(ctx, r); err != nil {
			s.progress.Fail(fmt.Sprintf("%s: %v", st.stage, err))
			metrics.RecordRunFailure()
			r.log.Error(ctx, "radar run failed", logger.String("stage", st.stage), logger.Error(err))
			s.writeMetrics(ctx, r)
			return r.res, err
		}
	}

	r.res.Took = time.Since(start)
	metrics.RecordRunCompleted(r.res.Took, r.now)
	s.writeMetrics(ctx, r)
	s.progress.Done(fmt.Sprintf("Done: %d albums, %d singles", len(r.res.Albums), len(r.res.Singles)))
	r.log.Info(ctx, "radar run completed",
		logger.Int("new_songs", r.res.NewSongs),
		logger.Int("profile", r.res.ProfileSize),
		logger.Int("albums", len(r.res.Albums)),
		logger.Int("singles", len(r.res.Singles)),
		logger.Duration("took", r.res.Took),
	)
	return r.res, nil
}

func (s *Service) loadState(ctx context.Context, r *run) error {
	snap, err := s.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		r.res.ColdStart = true
		snap = repository.Snapshot{LastRun: r.now.AddDate(0, 0, -config.MaxHistoryDays)}
		s.progress.Warn("No saved state found. The whole library will be read.")
		r.log.Warn(ctx, "no snapshot, cold start", logger.Time("last_run", snap.LastRun))
	default:
		return fmt.Errorf("load snapshot: %w", err)
	}
	r.snap = snap

	r.graph = graph.New(s.music, graph.WithNodes(snap.Artists), graph.WithLogger(r.log.Named("graph")))
	r.profile = taste.FromEntries(snap.Profile)
	r.albums = releases.NewList(model.KindAlbum, snap.Albums)
	r.singles = releases.NewList(model.KindSingle, snap.Singles)
	return nil
}

// readLibrary reads liked songs newest first until the first one already
// seen by an earlier run.
func (s *Service) readLibrary(ctx context.Context, r *run) error {
	known := make(map[string]struct{}, len(r.snap.Songs))
	for _, song := range r.snap.Songs {
		known[song.ID] = struct{}{}
	}

	var fresh []model.Song
	err := source.Scan(ctx, s.music.SavedSongs, func(song model.Song) bool {
		if _, ok := known[song.ID]; ok {
			return false
		}
		fresh = append(fresh, song)
		return true
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLibrary, err)
	}

	r.songs = append(fresh, r.snap.Songs...)
	r.res.NewSongs = len(fresh)
	s.progress.Done(fmt.Sprintf("%d new liked songs", len(fresh)))
	r.log.Info(ctx, "library read", logger.Int("new_songs", len(fresh)), logger.Int("total_songs", len(r.songs)))
	return nil
}

func (s *Service) buildProfile(ctx context.Context, r *run) error {
	fresh := r.songs[:r.res.NewSongs]
	for _, song := range fresh {
		r.graph.Name(song.ArtistID, song.ArtistName)
	}
	b := taste.NewBuilder(r.graph,
		taste.WithParams(s.cfg.TasteParams()),
		taste.WithClock(func() time.Time { return r.now }),
		taste.WithLogger(r.log.Named("taste")),
	)
	if err := b.Update(ctx, r.profile, fresh); err != nil {
		return fmt.Errorf("%w: %w", ErrProfile, err)
	}

	r.res.ProfileSize = r.profile.Len()
	r.res.Artists = r.graph.Len()
	metrics.UpdateProfileArtists(r.profile.Len())
	s.progress.Done(fmt.Sprintf("Taste profile covers %d artists", r.profile.Len()))
	return nil
}

// readPlaylists marks releases the listener deleted from a playlist.
func (s *Service) readPlaylists(ctx context.Context, r *run) error {
	var err error
	if r.albumPl, err = s.loadPlaylist(ctx, s.cfg.AlbumPlaylist); err != nil {
		return err
	}
	if r.singlePl, err = s.loadPlaylist(ctx, s.cfg.SinglePlaylist); err != nil {
		return err
	}

	for _, pair := range []struct {
		list *releases.List
		pl   source.Playlist
	}{{r.albums, r.albumPl}, {r.singles, r.singlePl}} {
		r.res.Removed[pair.list.Kind] = pair.list.MarkRemoved(pair.pl.SongURIs)
	}

	r.gates = map[model.ReleaseKind]*gate.Gate{
		model.KindAlbum:  s.newGate(ctx, r, r.albums),
		model.KindSingle: s.newGate(ctx, r, r.singles),
	}
	return nil
}

func (s *Service) loadPlaylist(ctx context.Context, name string) (source.Playlist, error) {
	pl, err := s.music.LoadPlaylist(ctx, name)
	if err != nil {
		return pl, fmt.Errorf("%w: %q: %w", ErrPlaylist, name, err)
	}
	return pl, nil
}

func (s *Service) newGate(ctx context.Context, r *run, list *releases.List) *gate.Gate {
	opts := []gate.Option{
		gate.WithGenreLookup(s.critics),
		gate.WithLogger(r.log.Named("gate").With(logger.String("list", string(list.Kind)))),
	}
	if s.confirmer != nil {
		opts = append(opts, gate.WithConfirmer(s.confirmer))
	}
	known := dedupe.NewInMemoryDeduper(list.Keys()...)
	r.log.Debug(ctx, "dedup index loaded", logger.String("list", string(list.Kind)), logger.Int("keys", int(known.Size())))
	return gate.New(s.cfg.GatePolicy(), known, opts...)
}

// scanPrimary asks the music service for new releases of tier 1 artists.
func (s *Service) scanPrimary(ctx context.Context, r *run) error {
	entries := taste.SortAndFilter(r.profile, s.cfg.ScoreThreshold)
	primary := tier.Primary(tier.Directives(entries, s.cfg.Cutoffs()))

	// fetched concurrently, admitted in profile order
	found, err := worker.Map(ctx, s.pool, primary, func(ctx context.Context, artist model.TasteEntry) ([]model.Release, error) {
		rels, err := s.music.RecentReleases(ctx, artist.ArtistID, r.minDate)
		if err != nil {
			return nil, fmt.Errorf("%w: releases of %s: %w", ErrReleases, artist.ArtistName, err)
		}
		return rels, nil
	})
	if err != nil {
		return err
	}
	for _, rels := range found {
		for i := range rels {
			if err := s.admit(ctx, r, &rels[i]); err != nil {
				return err
			}
		}
	}
	r.log.Info(ctx, "primary scan done", logger.Int("artists", len(primary)))
	return nil
}

// scanCritics walks the critic listing until a whole page is older than the
// time window.
func (s *Service) scanCritics(ctx context.Context, r *run) error {
	pages := 0
	cursor := ""
	for {
		page, err := s.critics.NewReleases(ctx, cursor)
		if err != nil {
			return fmt.Errorf("%w: critic listing: %w", ErrReleases, err)
		}
		pages++

		inWindow := 0
		for i := range page.Items {
			rel := &page.Items[i]
			if rel.ReleaseDate.Before(r.minDate) {
				r.res.OutOfWindow++
				metrics.RecordReleaseRejected(string(gate.ReasonOutOfWindow))
				r.log.Debug(ctx, "critic release outside window",
					logger.String("artist", rel.ArtistName),
					logger.String("release", rel.Name),
					logger.Time("release_date", rel.ReleaseDate),
				)
				continue
			}
			inWindow++
			if err := s.admit(ctx, r, rel); err != nil {
				return err
			}
		}
		if inWindow == 0 || !page.More {
			break
		}
		cursor = page.Next
	}
	r.log.Info(ctx, "critic scan done", logger.Int("pages", pages))
	return nil
}

// admit runs one candidate through the gate of its list.
func (s *Service) admit(ctx context.Context, r *run, rel *model.Release) error {
	list := r.albums
	if rel.Kind == model.KindSingle {
		list = r.singles
	}

	v, err := r.gates[list.Kind].Admit(ctx, rel, r.profile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReleases, err)
	}
	if v.Decision != gate.Admit {
		return nil
	}

	if len(rel.SongURIs) == 0 {
		resolved, err := s.music.ResolveRelease(ctx, *rel)
		switch {
		case err == nil:
			*rel = resolved
		case errors.Is(err, model.ErrNotFound):
			r.log.Warn(ctx, "release not in catalogue", logger.String("artist", rel.ArtistName), logger.String("release", rel.Name))
		default:
			return fmt.Errorf("%w: resolve %q: %w", ErrReleases, rel.Name, err)
		}
	}

	list.Add(*rel)
	r.res.Admitted[list.Kind]++
	return nil
}

// rank refreshes the taste scores of every listed release and orders the lists.
func (s *Service) rank(ctx context.Context, r *run) error {
	for _, list := range []*releases.List{r.albums, r.singles} {
		for i := range list.Releases {
			rel := &list.Releases[i]
			if e, ok := lookup(r.profile, rel); ok {
				rel.TasteScore = e.Score
			}
		}
		list.Releases = ranking.RankAndSort(list.Releases, s.cfg.WeightTaste, s.cfg.WeightCritic)

		active, removed := list.Counts()
		metrics.UpdateReleaseListSize(string(list.Kind), active, removed)
		r.log.Debug(ctx, "list ranked", logger.String("kind", string(list.Kind)), logger.Int("active", active), logger.Int("removed", removed))
	}
	r.res.Albums = r.albums.Releases
	r.res.Singles = r.singles.Releases
	return nil
}

func lookup(p *taste.Profile, rel *model.Release) (model.TasteEntry, bool) {
	if rel.ArtistID != "" {
		if e, ok := p.Get(rel.ArtistID); ok {
			return e, true
		}
	}
	return p.LookupName(rel.ArtistName)
}

func (s *Service) persist(ctx context.Context, r *run) error {
	if s.dryRun {
		s.progress.Warn("Dry run: playlists and state left untouched")
		return nil
	}

	if err := s.music.ReplacePlaylist(ctx, r.albumPl.ID, r.albums.PlaylistURIs()); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrPlaylist, r.albumPl.Name, err)
	}
	if err := s.music.ReplacePlaylist(ctx, r.singlePl.ID, r.singles.PlaylistURIs()); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrPlaylist, r.singlePl.Name, err)
	}

	snap := repository.Snapshot{
		RunID:   r.id,
		LastRun: r.now,
		Songs:   r.songs,
		Artists: r.graph.Nodes(),
		Profile: r.profile.Entries(),
		Albums:  r.albums.Releases,
		Singles: r.singles.Releases,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Service) export(ctx context.Context, r *run) error {
	if s.exporter == nil {
		return nil
	}
	if err := s.exporter.WriteProfile(ctx, taste.SortAndFilter(r.profile, s.cfg.ScoreThreshold)); err != nil {
		return fmt.Errorf("export profile: %w", err)
	}
	if err := s.exporter.WriteReleases(ctx, model.KindAlbum, r.albums.Releases); err != nil {
		return fmt.Errorf("export albums: %w", err)
	}
	if err := s.exporter.WriteReleases(ctx, model.KindSingle, r.singles.Releases); err != nil {
		return fmt.Errorf("export singles: %w", err)
	}
	return nil
}

func (s *Service) writeMetrics(ctx context.Context, r *run) {
	if s.cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(s.cfg.MetricsTextfile); err != nil {
		r.log.Warn(ctx, "metrics textfile not written", logger.Error(err))
	}
}

func sortProfile(entries []model.TasteEntry, threshold float64) []model.TasteEntry {
	return taste.SortAndFilter(taste.FromEntries(entries), threshold)
}
