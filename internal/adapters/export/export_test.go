package export_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/soltify/internal/adapters/export"
	"github.com/okian/soltify/internal/domain/model"
)

func readCSV(path string) [][]string {
	f, err := os.Open(path)
	So(err, ShouldBeNil)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	So(err, ShouldBeNil)
	return rows
}

func TestWriter(t *testing.T) {
	Convey("Given a writer on a fresh directory", t, func() {
		dir := filepath.Join(t.TempDir(), "out")
		w := export.New(dir, nil)
		ctx := context.Background()

		Convey("When writing the taste profile", func() {
			err := w.WriteProfile(ctx, []model.TasteEntry{
				{ArtistName: "Big Thief", Score: 12.3456, LikedSongCount: 2, LikedRelatedCount: 1},
				{ArtistName: "Wednesday, Karly Hartzman", Score: 0.5, LikedRelatedCount: 1},
			})

			Convey("Then the rows follow the header with three-decimal scores", func() {
				So(err, ShouldBeNil)
				rows := readCSV(filepath.Join(dir, export.ProfileFile))
				So(len(rows), ShouldEqual, 3)
				So(rows[0], ShouldResemble, []string{"artist", "score", "liked_song_count", "liked_related_count"})
				So(rows[1], ShouldResemble, []string{"Big Thief", "12.346", "2", "1"})
				So(rows[2][0], ShouldEqual, "Wednesday, Karly Hartzman")
			})
		})

		Convey("When writing release lists of both kinds", func() {
			rel := []model.Release{{
				Name:         "Dragon",
				ArtistName:   "Big Thief",
				ReleaseDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
				TasteScore:   80,
				CriticRating: 84,
				NumCritics:   12,
				SortScore:    100,
			}}
			So(w.WriteReleases(ctx, model.KindAlbum, rel), ShouldBeNil)
			So(w.WriteReleases(ctx, model.KindSingle, nil), ShouldBeNil)

			Convey("Then each kind lands in its own file", func() {
				albums := readCSV(filepath.Join(dir, export.AlbumsFile))
				So(len(albums), ShouldEqual, 2)
				So(albums[1][0], ShouldEqual, "1")
				So(albums[1][2], ShouldEqual, "Dragon")
				So(albums[1][3], ShouldEqual, "2026-09-01")

				singles := readCSV(filepath.Join(dir, export.SinglesFile))
				So(len(singles), ShouldEqual, 1)
			})

			Convey("Then no temp files are left behind", func() {
				matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
				So(err, ShouldBeNil)
				So(matches, ShouldBeEmpty)
			})
		})
	})
}
