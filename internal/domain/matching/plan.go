package matching

import (
	"github.com/quadra2003/networking-lunches/internal/domain/model"
)

// PlannedGroup is one draft group produced by Plan, not yet persisted
// and carrying no id.
type PlannedGroup struct {
	Cycle     string
	Slot      model.Slot
	Location  string
	MemberIDs []string
}

// PlanStats summarizes the placement work of one plan: how many
// secondary-preference placements the classifier made into sparse
// slots, and how many undersized groups were discarded before output.
type PlanStats struct {
	Backfilled int
	Dropped    int
}

// Plan partitions a cycle's participants into draft groups. It is the
// pure half of a matching run: classify by slot, bucket each slot by
// first-choice location, build diversity-balanced groups per bucket,
// and drop any group smaller than MinGroupSize. The commit half (id
// allocation, status writes) belongs to the caller.
//
// Plan is deterministic for identical input order. Fewer than two
// eligible participants yields an empty plan, not an error; malformed
// input yields a *ValidationError.
func Plan(participants []*model.Participant, cycle string) ([]PlannedGroup, PlanStats, error) {
	var stats PlanStats
	if err := validate(participants); err != nil {
		return nil, stats, err
	}

	bySlot := Classify(participants)

	// Every participant with availability gets exactly one primary
	// placement; anything beyond that is backfill.
	primaries := 0
	for _, p := range participants {
		if len(p.Availability) > 0 {
			primaries++
		}
	}
	placements := 0
	for _, slot := range model.Slots {
		placements += len(bySlot[slot])
	}
	stats.Backfilled = placements - primaries

	var planned []PlannedGroup
	for _, slot := range model.Slots {
		slotMembers := bySlot[slot]
		if len(slotMembers) < MinGroupSize {
			continue
		}
		for _, bucket := range Bucket(slotMembers, slot) {
			for _, group := range BuildGroups(bucket.Members) {
				if len(group) < MinGroupSize {
					stats.Dropped++
					continue
				}
				ids := make([]string, len(group))
				for i, p := range group {
					ids[i] = p.ID
				}
				planned = append(planned, PlannedGroup{
					Cycle:     cycle,
					Slot:      slot,
					Location:  bucket.Location,
					MemberIDs: ids,
				})
			}
		}
	}

	return planned, stats, nil
}

// LastAssigned maps each placed participant to the index of the last
// planned group containing them. Backfill can place one participant in
// two groups; the back-reference written at commit time points at the
// most recent one.
func LastAssigned(groups []PlannedGroup) map[string]int {
	last := make(map[string]int)
	for i, g := range groups {
		for _, id := range g.MemberIDs {
			last[id] = i
		}
	}
	return last
}

// validate fails fast on field values outside their fixed sets rather
// than letting an unknown band or slot skew the partition silently.
func validate(participants []*model.Participant) error {
	for _, p := range participants {
		if p.Experience.Rank() < 0 {
			return &ValidationError{
				ParticipantID: p.ID,
				Field:         "experience",
				Reason:        "unknown experience level " + string(p.Experience),
			}
		}
		for _, s := range p.Availability {
			if _, err := model.ParseSlot(string(s)); err != nil {
				return &ValidationError{
					ParticipantID: p.ID,
					Field:         "availability",
					Reason:        "unknown slot " + string(s),
				}
			}
		}
	}
	return nil
}
