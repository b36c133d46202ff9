// Package export writes the taste profile and release lists as CSV files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/types"
	"github.com/okian/soltify/pkg/logger"
)

// File names inside the output directory.
const (
	ProfileFile = "taste_profile.csv"
	AlbumsFile  = "albums.csv"
	SinglesFile = "singles.csv"
)

// Writer writes export files into one directory.
type Writer struct {
	dir string
	log logger.Logger
}

// New creates a Writer for dir. The directory is created on first write.
func New(dir string, l logger.Logger) *Writer {
	if l == nil {
		l = logger.Nop()
	}
	return &Writer{dir: dir, log: l}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteProfile writes entries in the given order.
func (w *Writer) WriteProfile(ctx context.Context, entries []model.TasteEntry) error {
	records := make([][]string, 0, len(entries)+1)
	records = append(records, types.ProfileHeader)
	for _, e := range entries {
		records = append(records, types.NewProfileRow(e).Record())
	}
	return w.write(ctx, ProfileFile, records)
}

// WriteReleases writes a ranked release list to the file of its kind.
func (w *Writer) WriteReleases(ctx context.Context, kind model.ReleaseKind, releases []model.Release) error {
	name := AlbumsFile
	if kind == model.KindSingle {
		name = SinglesFile
	}

	records := make([][]string, 0, len(releases)+1)
	records = append(records, types.ReleaseHeader)
	for i, r := range releases {
		records = append(records, types.NewReleaseRow(i+1, r).Record())
	}
	return w.write(ctx, name, records)
}

// write replaces name atomically through a temp file in the same directory.
func (w *Writer) write(ctx context.Context, name string, records [][]string) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", w.dir, err)
	}

	tmp, err := os.CreateTemp(w.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	cw := csv.NewWriter(tmp)
	if err := cw.WriteAll(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}

	w.log.Info(ctx, "export written", logger.String("path", path), logger.Int("rows", len(records)-1))
	return nil
}
