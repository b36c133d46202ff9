package tier_test

import (
	"testing"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given cutoffs 75/30/10", t, func() {
		c := tier.Cutoffs{T1: 75, T2: 30, T3: 10}

		Convey("Then scores fall into the highest reached tier", func() {
			So(tier.Classify(80, c), ShouldEqual, tier.Tier1)
			So(tier.Classify(75, c), ShouldEqual, tier.Tier1)
			So(tier.Classify(30, c), ShouldEqual, tier.Tier2)
			So(tier.Classify(29.99, c), ShouldEqual, tier.Tier3)
			So(tier.Classify(10, c), ShouldEqual, tier.Tier3)
			So(tier.Classify(9.5, c), ShouldEqual, tier.Baseline)
		})

		Convey("Then the predicates are inclusive", func() {
			e := model.TasteEntry{Score: 30}
			So(tier.IsTier2(e, 30), ShouldBeTrue)
			So(tier.IsTier1(e, 75), ShouldBeFalse)
			So(tier.IsTier3(e, 10), ShouldBeTrue)
		})

		Convey("Then tiers print their names", func() {
			So(tier.Tier1.String(), ShouldEqual, "tier1")
			So(tier.Baseline.String(), ShouldEqual, "baseline")
		})
	})
}

func TestDirectives(t *testing.T) {
	Convey("Given a sorted profile", t, func() {
		entries := []model.TasteEntry{
			{ArtistID: "a", Score: 120},
			{ArtistID: "b", Score: 40},
			{ArtistID: "c", Score: 12},
			{ArtistID: "d", Score: 2},
		}
		ds := tier.Directives(entries, tier.Cutoffs{T1: 75, T2: 30, T3: 10})

		Convey("Then baseline artists get no directive", func() {
			So(len(ds), ShouldEqual, 3)
			So(ds[0].Tier, ShouldEqual, tier.Tier1)
			So(ds[1].Tier, ShouldEqual, tier.Tier2)
			So(ds[2].Tier, ShouldEqual, tier.Tier3)
		})

		Convey("Then only tier 1 artists are primary scans", func() {
			primary := tier.Primary(ds)
			So(len(primary), ShouldEqual, 1)
			So(primary[0].ArtistID, ShouldEqual, "a")
		})
	})
}
