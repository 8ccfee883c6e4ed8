package matching_test

import (
	"testing"

	matching "github.com/quadra2003/networking-lunches/internal/domain/matching"
	model "github.com/quadra2003/networking-lunches/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBucket(t *testing.T) {
	Convey("Given slot participants with shared location lists", t, func() {
		ps := []*model.Participant{
			participant("a", []string{"corp"}, model.Associate, []model.Slot{model.WeekdayLunch}, []string{"tustin", "irvine"}),
			participant("b", []string{"lit"}, model.Senior, []model.Slot{model.WeekdayLunch}, []string{"irvine"}),
			participant("c", []string{"fam"}, model.Partner, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
		}

		Convey("When bucketing by location", func() {
			buckets := matching.Bucket(ps, model.WeekdayLunch)

			Convey("Then only the first location choice counts", func() {
				So(buckets, ShouldHaveLength, 2)
				So(buckets[0].Location, ShouldEqual, "tustin")
				So(memberIDs(buckets[0].Members), ShouldResemble, []string{"a", "c"})
				So(buckets[1].Location, ShouldEqual, "irvine")
				So(memberIDs(buckets[1].Members), ShouldResemble, []string{"b"})
			})
		})
	})

	Convey("Given a participant with per-slot location overrides", t, func() {
		override := &model.Participant{
			ID:                    "o",
			Experience:            model.Associate,
			Availability:          []model.Slot{model.WeekdayLunch},
			UsesSeparateLocations: true,
			Locations:             []string{"tustin"},
			SlotLocations: map[model.Slot][]string{
				model.WeekdayLunch: {"orange"},
			},
		}

		Convey("When bucketing the slot with an override", func() {
			buckets := matching.Bucket([]*model.Participant{override}, model.WeekdayLunch)

			Convey("Then the override list wins over the shared list", func() {
				So(buckets, ShouldHaveLength, 1)
				So(buckets[0].Location, ShouldEqual, "orange")
			})
		})

		Convey("When bucketing a slot without an override", func() {
			buckets := matching.Bucket([]*model.Participant{override}, model.WeekendLunch)

			Convey("Then the participant is silently excluded", func() {
				So(buckets, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a participant with no locations at all", t, func() {
		ps := []*model.Participant{
			participant("a", []string{"corp"}, model.Associate, []model.Slot{model.WeekdayLunch}, nil),
			participant("b", []string{"lit"}, model.Senior, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
		}

		Convey("When bucketing", func() {
			buckets := matching.Bucket(ps, model.WeekdayLunch)

			Convey("Then only the located participant is bucketed", func() {
				So(buckets, ShouldHaveLength, 1)
				So(memberIDs(buckets[0].Members), ShouldResemble, []string{"b"})
			})
		})
	})
}
