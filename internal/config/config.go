// Package config defines the radar configuration and its defaults.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"

	"github.com/okian/soltify/internal/domain/gate"
	"github.com/okian/soltify/internal/domain/taste"
	"github.com/okian/soltify/internal/domain/tier"
)

// MaxHistoryDays bounds how far back releases are looked for.
const MaxHistoryDays = 365

// DefaultGenres are the genres a baseline artist's release may belong to.
var DefaultGenres = []string{
	"Art Pop",
	"Contemporary Folk",
	"Country",
	"Folk",
	"Indie Pop",
	"Indie Rock",
	"Pop",
	"Psychedelic",
	"Rock",
	"Singer-Songwriter",
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Files and storage.
	OutDir          string `koanf:"out_dir"`
	CacheDir        string `koanf:"cache_dir"`
	MetricsTextfile string `koanf:"metrics_textfile"`

	// Playlists the release lists are written to.
	AlbumPlaylist  string `koanf:"album_playlist"`
	SinglePlaylist string `koanf:"single_playlist"`

	// Music service access.
	SpotifyBaseURL string  `koanf:"spotify_base_url"`
	SpotifyToken   string  `koanf:"spotify_token"`
	SpotifyMarket  string  `koanf:"spotify_market"`
	SpotifyRPS     float64 `koanf:"spotify_rps"`

	// Critic-review site access.
	CriticBaseURL   string  `koanf:"critic_base_url"`
	CriticRPS       float64 `koanf:"critic_rps"`
	CriticMaxPages  int     `koanf:"critic_max_pages"`
	HTTPTimeoutSecs int     `koanf:"http_timeout_secs"`

	// Taste profile.
	PtsLike             float64 `koanf:"pts_like"`
	PtsRelated          float64 `koanf:"pts_related"`
	PtsRelatedOfRelated float64 `koanf:"pts_related_of_related"`
	DecayAgeYears       float64 `koanf:"decay_age_years"`
	MaxAgeYears         float64 `koanf:"max_age_years"`
	ScoreThreshold      float64 `koanf:"score_threshold"`

	// Release finder.
	CutoffT1      float64  `koanf:"cutoff_t1"`
	CutoffT2      float64  `koanf:"cutoff_t2"`
	CutoffT3      float64  `koanf:"cutoff_t3"`
	CriticT3      float64  `koanf:"critic_t3"`
	CriticT4      float64  `koanf:"critic_t4"`
	MinCritics    int      `koanf:"min_critics"`
	AllowedGenres []string `koanf:"allowed_genres"`
	MaxDays       int      `koanf:"max_days"`
	ScanWorkers   int      `koanf:"scan_workers"`

	// Content filters.
	AllowRemaster bool `koanf:"allow_remaster"`
	AllowLive     bool `koanf:"allow_live"`
	AllowAcoustic bool `koanf:"allow_acoustic"`
	AllowRemix    bool `koanf:"allow_remix"`
	AllowCover    bool `koanf:"allow_cover"`
	ForceFilter   bool `koanf:"force_filter"`

	// Sorting.
	WeightTaste  float64 `koanf:"weight_taste"`
	WeightCritic float64 `koanf:"weight_critic"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		OutDir:         "soltify_output",
		CacheDir:       "soltify_cache",
		AlbumPlaylist:  "Radar: Albums",
		SinglePlaylist: "Radar: Singles",

		SpotifyBaseURL:  "https://api.spotify.com/v1",
		SpotifyMarket:   "US",
		SpotifyRPS:      5,
		CriticBaseURL:   "https://www.albumoftheyear.org",
		CriticRPS:       1,
		CriticMaxPages:  20,
		HTTPTimeoutSecs: 30,

		PtsLike:       10,
		PtsRelated:    0.5,
		DecayAgeYears: 5,
		MaxAgeYears:   15,

		CutoffT1:      75,
		CutoffT2:      30,
		CutoffT3:      10,
		CriticT3:      72,
		CriticT4:      82,
		MinCritics:    5,
		AllowedGenres: append([]string(nil), DefaultGenres...),
		MaxDays:       60,
		ScanWorkers:   4,

		WeightTaste:  75,
		WeightCritic: 25,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.MaxDays <= 0 || c.MaxDays > MaxHistoryDays:
		return fmt.Errorf("%w: max_days must be in 1..%d, got %d", ErrInvalidConfig, MaxHistoryDays, c.MaxDays)
	case c.DecayAgeYears < 0 || c.MaxAgeYears <= 0:
		return fmt.Errorf("%w: decay_age_years and max_age_years must be positive", ErrInvalidConfig)
	case c.DecayAgeYears > c.MaxAgeYears:
		return fmt.Errorf("%w: decay_age_years (%g) exceeds max_age_years (%g)", ErrInvalidConfig, c.DecayAgeYears, c.MaxAgeYears)
	case c.PtsLike < 0 || c.PtsRelated < 0 || c.PtsRelatedOfRelated < 0:
		return fmt.Errorf("%w: point values must not be negative", ErrInvalidConfig)
	case c.WeightTaste < 0 || c.WeightCritic < 0:
		return fmt.Errorf("%w: sort weights must not be negative", ErrInvalidConfig)
	case c.MinCritics < 0:
		return fmt.Errorf("%w: min_critics must not be negative", ErrInvalidConfig)
	case c.ScanWorkers < 1:
		return fmt.Errorf("%w: scan_workers must be at least 1, got %d", ErrInvalidConfig, c.ScanWorkers)
	case c.OutDir == "" || c.CacheDir == "":
		return fmt.Errorf("%w: out_dir and cache_dir must not be empty", ErrInvalidConfig)
	}
	return nil
}

// TasteParams returns the taste builder parameters.
func (c *Config) TasteParams() taste.Params {
	return taste.Params{
		PtsLike:             c.PtsLike,
		PtsRelated:          c.PtsRelated,
		PtsRelatedOfRelated: c.PtsRelatedOfRelated,
		DecayAgeYears:       c.DecayAgeYears,
		MaxAgeYears:         c.MaxAgeYears,
	}
}

// Cutoffs returns the tier cutoffs.
func (c *Config) Cutoffs() tier.Cutoffs {
	return tier.Cutoffs{T1: c.CutoffT1, T2: c.CutoffT2, T3: c.CutoffT3}
}

// AllowFlags returns the content filter flags in filter order.
func (c *Config) AllowFlags() gate.AllowFlags {
	var f gate.AllowFlags
	f[gate.Remaster] = c.AllowRemaster
	f[gate.Live] = c.AllowLive
	f[gate.Acoustic] = c.AllowAcoustic
	f[gate.Remix] = c.AllowRemix
	f[gate.Cover] = c.AllowCover
	return f
}

// GatePolicy returns the release admission policy.
func (c *Config) GatePolicy() gate.Policy {
	return gate.Policy{
		Cutoffs:       c.Cutoffs(),
		CriticT3:      c.CriticT3,
		CriticT4:      c.CriticT4,
		MinCritics:    c.MinCritics,
		AllowedGenres: append([]string(nil), c.AllowedGenres...),
		Allow:         c.AllowFlags(),
		ForceFilter:   c.ForceFilter,
	}
}

// HTTPTimeout returns the per-request timeout of the collaborator clients.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}
