package types_test

import (
	"testing"
	"time"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestProfileRow(t *testing.T) {
	convey.Convey("Given a taste entry", t, func() {
		e := model.TasteEntry{ArtistID: "x", ArtistName: "Adrianne Lenker", Score: 12.3456, LikedSongCount: 3, LikedRelatedCount: 7}

		convey.Convey("When formatted for export", func() {
			row := types.NewProfileRow(e)

			convey.Convey("Then the score keeps three decimals", func() {
				convey.So(row.Score, convey.ShouldEqual, "12.346")
				convey.So(row.Record(), convey.ShouldResemble, []string{"Adrianne Lenker", "12.346", "3", "7"})
				convey.So(len(types.ProfileHeader), convey.ShouldEqual, len(row.Record()))
			})
		})

		convey.Convey("When the score is whole", func() {
			e.Score = 10
			convey.So(types.NewProfileRow(e).Score, convey.ShouldEqual, "10.000")
		})
	})
}

func TestReleaseRow(t *testing.T) {
	convey.Convey("Given a ranked release", t, func() {
		r := model.Release{
			ArtistName:   "Wednesday",
			Name:         "Bleeds",
			ReleaseDate:  time.Date(2025, time.September, 19, 0, 0, 0, 0, time.UTC),
			TasteScore:   41.5,
			CriticRating: 84,
			NumCritics:   21,
			SortScore:    1125,
		}

		convey.Convey("Then it formats as a CSV record", func() {
			row := types.NewReleaseRow(1, r)
			convey.So(row.Record(), convey.ShouldResemble, []string{"1", "Wednesday", "Bleeds", "2025-09-19", "41.500", "84.0", "21", "1125.00", "false"})
			convey.So(len(types.ReleaseHeader), convey.ShouldEqual, len(row.Record()))
		})
	})
}
