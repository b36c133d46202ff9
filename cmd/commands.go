package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/okian/soltify/internal/adapters/aoty"
	"github.com/okian/soltify/internal/adapters/export"
	"github.com/okian/soltify/internal/adapters/prompt"
	"github.com/okian/soltify/internal/adapters/repository"
	"github.com/okian/soltify/internal/adapters/spotify"
	"github.com/okian/soltify/internal/adapters/upstream"
	service "github.com/okian/soltify/internal/app"
	"github.com/okian/soltify/internal/config"
	"github.com/okian/soltify/pkg/logger"
)

var errNoToken = errors.New("spotify token is not set (RADAR_SPOTIFY_TOKEN)")

// globals holds flags shared by every command.
type globals struct {
	logLevel string
	cacheDir string
	cfg      *config.Config
}

type runFlags struct {
	dryRun   bool
	yes      bool
	keep     bool
	quiet    bool
	plain    bool
	force    bool
	maxDays  int
	outDir   string
	textfile string

	allowRemaster bool
	allowLive     bool
	allowAcoustic bool
	allowRemix    bool
	allowCover    bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "soltify",
		Short: "Release radar driven by your liked songs",
		Long: `soltify builds a taste profile from your liked songs and related artists,
finds new albums and singles from your favourite artists and from critic
reviews, and keeps two ranked playlists up to date.

Examples:
  soltify run                # Full run, asks about live/remix/... releases
  soltify run --yes          # Filter flagged releases without asking
  soltify run --dry-run      # Rank and export but leave playlists alone
  soltify profile --top 20   # Show the top of the saved taste profile
  soltify history            # List past runs`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.cacheDir, "cache-dir", "", "Directory of the saved state")

	root.AddCommand(newRunCmd(g), newProfileCmd(g), newHistoryCmd(g))
	return root
}

// load reads the configuration (defaults, optional file, env) and applies
// the global flags on top.
func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if g.cacheDir != "" {
		cfg.CacheDir = g.cacheDir
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	g.cfg = cfg
	return nil
}

func newRunCmd(g *globals) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh the taste profile and the release playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.apply(cmd, g.cfg); err != nil {
				return err
			}
			return runRadar(cmd, g.cfg, f)
		},
	}
	f.register(cmd)
	return cmd
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Leave playlists and saved state untouched")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Filter every flagged release without asking")
	cmd.Flags().BoolVar(&f.keep, "keep", false, "Keep every flagged release without asking")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "No progress output")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "Unstyled progress output, one line per stage")
	cmd.Flags().BoolVar(&f.force, "force-filter", false, "Drop flagged releases instead of asking")
	cmd.Flags().IntVar(&f.maxDays, "max-days", 0, "Only consider releases from the last N days (1-365)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "Directory of the CSV exports")
	cmd.Flags().StringVar(&f.textfile, "metrics-textfile", "", "Write run metrics to this file")
	cmd.Flags().BoolVar(&f.allowRemaster, "allow-remaster", false, "Admit remastered releases without asking")
	cmd.Flags().BoolVar(&f.allowLive, "allow-live", false, "Admit live releases without asking")
	cmd.Flags().BoolVar(&f.allowAcoustic, "allow-acoustic", false, "Admit acoustic releases without asking")
	cmd.Flags().BoolVar(&f.allowRemix, "allow-remix", false, "Admit remixes without asking")
	cmd.Flags().BoolVar(&f.allowCover, "allow-cover", false, "Admit covers without asking")
	cmd.MarkFlagsMutuallyExclusive("yes", "keep")
}

// apply overrides cfg with the flags set on cmd and validates the result.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("max-days") {
		cfg.MaxDays = f.maxDays
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if flags.Changed("metrics-textfile") {
		cfg.MetricsTextfile = f.textfile
	}
	if flags.Changed("force-filter") {
		cfg.ForceFilter = f.force
	}
	for _, a := range []struct {
		name string
		val  bool
		dst  *bool
	}{
		{"allow-remaster", f.allowRemaster, &cfg.AllowRemaster},
		{"allow-live", f.allowLive, &cfg.AllowLive},
		{"allow-acoustic", f.allowAcoustic, &cfg.AllowAcoustic},
		{"allow-remix", f.allowRemix, &cfg.AllowRemix},
		{"allow-cover", f.allowCover, &cfg.AllowCover},
	} {
		if flags.Changed(a.name) {
			*a.dst = a.val
		}
	}
	return cfg.Validate()
}

// confirmer picks who answers filter questions.
func (f *runFlags) confirmer(console *prompt.Console) service.Option {
	switch {
	case f.yes:
		return service.WithConfirmer(&prompt.AutoConfirmer{Answer: true})
	case f.keep:
		return service.WithConfirmer(&prompt.AutoConfirmer{Answer: false})
	default:
		return service.WithConfirmer(prompt.NewInteractive(console))
	}
}

func runRadar(cmd *cobra.Command, cfg *config.Config, f *runFlags) error {
	ctx := cmd.Context()
	log := logger.Named("radar")
	if cfg.SpotifyToken == "" {
		return errNoToken
	}

	console := prompt.NewConsole(f.quiet)
	if f.plain {
		console = prompt.NewPlainConsole(cmd.OutOrStdout())
	}

	store, err := repository.Open(cfg.CacheDir, repository.WithLogger(log.Named("store")))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing store", logger.Error(err))
		}
	}()

	music := spotify.New(cfg.SpotifyBaseURL, cfg.SpotifyToken,
		spotify.WithMarket(cfg.SpotifyMarket),
		spotify.WithUpstream(upstream.New("spotify",
			upstream.WithTimeout(cfg.HTTPTimeout()),
			upstream.WithRate(cfg.SpotifyRPS),
			upstream.WithLogger(log.Named("spotify")),
		)),
		spotify.WithLogger(log.Named("spotify")),
	)
	critics := aoty.New(cfg.CriticBaseURL,
		aoty.WithMaxPages(cfg.CriticMaxPages),
		aoty.WithUpstream(upstream.New("aoty",
			upstream.WithTimeout(cfg.HTTPTimeout()),
			upstream.WithRate(cfg.CriticRPS),
			upstream.WithLogger(log.Named("aoty")),
		)),
		aoty.WithLogger(log.Named("aoty")),
	)

	exp := export.New(cfg.OutDir, log.Named("export"))
	svc := service.New(cfg, store, music, critics,
		f.confirmer(console),
		service.WithExporter(exp),
		service.WithProgress(console),
		service.WithDryRun(f.dryRun),
		service.WithLogger(log),
	)

	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if !f.quiet {
		pterm.Info.Printfln("Run %s took %s: %d new songs, %d albums, %d singles. Exports in %s",
			res.RunID, res.Took.Round(time.Millisecond), res.NewSongs, len(res.Albums), len(res.Singles), exp.Dir())
	}
	return nil
}

func newProfileCmd(g *globals) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the saved taste profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeStore, err := offlineService(g.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := svc.TopArtists(cmd.Context(), top)
			if err != nil {
				return err
			}
			data := pterm.TableData{{"#", "Artist", "Score", "Liked", "Related liked"}}
			for i, e := range entries {
				data = append(data, []string{
					strconv.Itoa(i + 1),
					e.ArtistName,
					strconv.FormatFloat(e.Score, 'f', 2, 64),
					strconv.Itoa(e.LikedSongCount),
					strconv.Itoa(e.LikedRelatedCount),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 25, "Number of artists to show (0 for all)")
	return cmd
}

func newHistoryCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeStore, err := offlineService(g.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			data := pterm.TableData{{"Run", "Finished", "Songs", "Artists", "Profile", "Albums", "Singles"}}
			for _, r := range runs {
				data = append(data, []string{
					r.RunID,
					r.LastRun.Local().Format("2006-01-02 15:04"),
					strconv.Itoa(r.Songs),
					strconv.Itoa(r.Artists),
					strconv.Itoa(r.Profile),
					strconv.Itoa(r.Albums),
					strconv.Itoa(r.Singles),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	return cmd
}

// offlineService opens the saved state for read-only commands.
func offlineService(cfg *config.Config) (*service.Service, func(), error) {
	if _, err := os.Stat(cfg.CacheDir); err != nil {
		return nil, nil, fmt.Errorf("no saved state in %q: %w", cfg.CacheDir, err)
	}
	store, err := repository.Open(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	return service.New(cfg, store, nil, nil), func() { _ = store.Close() }, nil
}
