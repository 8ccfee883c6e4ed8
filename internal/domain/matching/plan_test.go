package matching_test

import (
	"errors"
	"testing"

	matching "github.com/quadra2003/networking-lunches/internal/domain/matching"
	model "github.com/quadra2003/networking-lunches/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlan(t *testing.T) {
	Convey("Given five participants sharing a slot and location", t, func() {
		avail := []model.Slot{model.WeekdayLunch}
		locs := []string{"tustin"}
		ps := []*model.Participant{
			participant("c1", []string{"corp"}, model.Associate, avail, locs),
			participant("c2", []string{"corp"}, model.Senior, avail, locs),
			participant("l1", []string{"lit"}, model.NewlyAdmitted, avail, locs),
			participant("l2", []string{"lit"}, model.Partner, avail, locs),
			participant("f1", []string{"fam"}, model.Associate, avail, locs),
		}

		Convey("When planning the cycle", func() {
			groups, _, err := matching.Plan(ps, "2026-q3")

			Convey("Then two groups cover all five participants", func() {
				So(err, ShouldBeNil)
				So(groups, ShouldHaveLength, 2)
				total := 0
				for _, g := range groups {
					So(g.Slot, ShouldEqual, model.WeekdayLunch)
					So(g.Location, ShouldEqual, "tustin")
					So(g.Cycle, ShouldEqual, "2026-q3")
					So(len(g.MemberIDs), ShouldBeGreaterThanOrEqualTo, matching.MinGroupSize)
					So(len(g.MemberIDs), ShouldBeLessThanOrEqualTo, matching.MaxGroupSize)
					total += len(g.MemberIDs)
				}
				So(total, ShouldEqual, 5)
			})

			Convey("And planning again produces the identical partition", func() {
				again, _, err := matching.Plan(ps, "2026-q3")
				So(err, ShouldBeNil)
				So(again, ShouldResemble, groups)
			})
		})
	})

	Convey("Given a participant with no locations", t, func() {
		ps := []*model.Participant{
			participant("a", []string{"corp"}, model.Associate, []model.Slot{model.WeekdayLunch}, nil),
			participant("b", []string{"lit"}, model.Senior, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
			participant("c", []string{"fam"}, model.Partner, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
		}

		Convey("When planning", func() {
			groups, _, err := matching.Plan(ps, "2026-q3")

			Convey("Then the unlocated participant is in no group", func() {
				So(err, ShouldBeNil)
				for _, g := range groups {
					So(g.MemberIDs, ShouldNotContain, "a")
				}
			})
		})
	})

	Convey("Given a sparse weekend-dinner slot with a secondary-preference filler", t, func() {
		ps := []*model.Participant{
			participant("p1", []string{"corp"}, model.Associate, []model.Slot{model.WeekendDinner}, []string{"tustin"}),
			participant("p2", []string{"lit"}, model.Senior, []model.Slot{model.WeekendDinner}, []string{"tustin"}),
			participant("p3", []string{"fam"}, model.Partner, []model.Slot{model.WeekdayLunch, model.WeekendDinner}, []string{"tustin"}),
		}

		Convey("When planning", func() {
			groups, _, err := matching.Plan(ps, "2026-q3")

			Convey("Then the slot forms exactly one group of three", func() {
				So(err, ShouldBeNil)
				So(groups, ShouldHaveLength, 1)
				So(groups[0].Slot, ShouldEqual, model.WeekendDinner)
				So(groups[0].MemberIDs, ShouldHaveLength, 3)
			})
		})
	})

	Convey("Given fewer than two eligible participants", t, func() {
		ps := []*model.Participant{
			participant("solo", []string{"corp"}, model.Associate, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
		}

		Convey("When planning", func() {
			groups, _, err := matching.Plan(ps, "2026-q3")

			Convey("Then the plan is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(groups, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a participant with an unknown experience level", t, func() {
		bad := participant("bad", []string{"corp"}, model.ExperienceLevel("intern"), []model.Slot{model.WeekdayLunch}, []string{"tustin"})

		Convey("When planning", func() {
			_, _, err := matching.Plan([]*model.Participant{bad}, "2026-q3")

			Convey("Then a validation error names the participant and field", func() {
				var verr *matching.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.ParticipantID, ShouldEqual, "bad")
				So(verr.Field, ShouldEqual, "experience")
				So(errors.Is(err, matching.ErrInvalidParticipant), ShouldBeTrue)
			})
		})
	})

	Convey("Given a backfilled participant placed in two slots", t, func() {
		// Two viable buckets: weekday-lunch (3 primaries incl. the
		// filler) and weekend-dinner (2 primaries + the filler).
		ps := []*model.Participant{
			participant("w1", []string{"corp"}, model.Associate, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
			participant("w2", []string{"lit"}, model.Senior, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
			participant("both", []string{"fam"}, model.Partner, []model.Slot{model.WeekdayLunch, model.WeekendDinner}, []string{"tustin"}),
			participant("d1", []string{"corp"}, model.Associate, []model.Slot{model.WeekendDinner}, []string{"tustin"}),
			participant("d2", []string{"lit"}, model.Senior, []model.Slot{model.WeekendDinner}, []string{"tustin"}),
		}

		Convey("When planning", func() {
			groups, _, err := matching.Plan(ps, "2026-q3")
			So(err, ShouldBeNil)

			Convey("Then the filler appears in a group for each slot", func() {
				hits := 0
				for _, g := range groups {
					for _, id := range g.MemberIDs {
						if id == "both" {
							hits++
						}
					}
				}
				So(hits, ShouldEqual, 2)
			})

			Convey("And the back-reference points at the most recent group", func() {
				last := matching.LastAssigned(groups)
				lastGroup := groups[last["both"]]
				So(lastGroup.Slot, ShouldEqual, model.WeekendDinner)
			})
		})
	})
}

func TestPlanStats(t *testing.T) {
	Convey("Given a sparse slot filled by a secondary preference", t, func() {
		ps := []*model.Participant{
			participant("p1", []string{"corp"}, model.Associate, []model.Slot{model.WeekendDinner}, []string{"tustin"}),
			participant("p2", []string{"lit"}, model.Senior, []model.Slot{model.WeekendDinner}, []string{"tustin"}),
			participant("p3", []string{"fam"}, model.Partner, []model.Slot{model.WeekdayLunch, model.WeekendDinner}, []string{"tustin"}),
		}

		Convey("When planning", func() {
			_, stats, err := matching.Plan(ps, "2026-q3")

			Convey("Then the backfill placement is counted", func() {
				So(err, ShouldBeNil)
				So(stats.Backfilled, ShouldEqual, 1)
				So(stats.Dropped, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a slot whose members split into singleton locations", t, func() {
		ps := []*model.Participant{
			participant("a", []string{"corp"}, model.Associate, []model.Slot{model.WeekdayLunch}, []string{"tustin"}),
			participant("b", []string{"lit"}, model.Senior, []model.Slot{model.WeekdayLunch}, []string{"irvine"}),
		}

		Convey("When planning", func() {
			groups, stats, err := matching.Plan(ps, "2026-q3")

			Convey("Then both undersized groups are dropped and counted", func() {
				So(err, ShouldBeNil)
				So(groups, ShouldBeEmpty)
				So(stats.Backfilled, ShouldEqual, 0)
				So(stats.Dropped, ShouldEqual, 2)
			})
		})
	})
}
