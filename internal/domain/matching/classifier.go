// Package matching implements the grouping pipeline for one cycle:
// slot classification, location bucketing, and diversity-balanced group
// building, driven by Plan. Everything here is pure; persistence is the
// caller's concern.
package matching

import (
	"github.com/quadra2003/networking-lunches/internal/domain/model"
)

// backfillThreshold is the slot population below which secondary
// availability preferences are pulled in.
const backfillThreshold = 3

// Classify assigns each participant to one or more slot buckets.
//
// The primary pass places everyone under their first availability
// preference; participants with no availability are skipped. The
// backfill pass then tops up any slot with fewer than backfillThreshold
// primary members using participants who list that slot as a secondary
// preference. Backfill can place one participant in two buckets; that
// trade favors slot viability over single assignment and is kept
// deliberately.
func Classify(participants []*model.Participant) map[model.Slot][]*model.Participant {
	buckets := make(map[model.Slot][]*model.Participant, len(model.Slots))
	for _, slot := range model.Slots {
		buckets[slot] = nil
	}

	for _, p := range participants {
		if len(p.Availability) == 0 {
			continue
		}
		primary := p.Availability[0]
		buckets[primary] = append(buckets[primary], p)
	}

	for _, slot := range model.Slots {
		if len(buckets[slot]) >= backfillThreshold {
			continue
		}
		for _, p := range participants {
			if len(p.Availability) == 0 || p.Availability[0] == slot {
				continue
			}
			if listsSlot(p, slot) {
				buckets[slot] = append(buckets[slot], p)
			}
		}
	}

	return buckets
}

func listsSlot(p *model.Participant, slot model.Slot) bool {
	for _, s := range p.Availability {
		if s == slot {
			return true
		}
	}
	return false
}
