package matching

import (
	"github.com/quadra2003/networking-lunches/internal/domain/model"
)

// LocationBucket pairs a location with the slot participants whose
// first-choice location it is.
type LocationBucket struct {
	Location string
	Members  []*model.Participant
}

// Bucket splits a slot's participants by their first-choice location
// for that slot. Buckets come back in first-seen order so downstream
// iteration is deterministic. Participants whose resolved location list
// is empty are silently excluded; that is a valid submission, not an
// error.
func Bucket(participants []*model.Participant, slot model.Slot) []LocationBucket {
	index := make(map[string]int)
	var buckets []LocationBucket

	for _, p := range participants {
		locs := p.LocationsFor(slot)
		if len(locs) == 0 {
			continue
		}
		first := locs[0]
		i, ok := index[first]
		if !ok {
			i = len(buckets)
			index[first] = i
			buckets = append(buckets, LocationBucket{Location: first})
		}
		buckets[i].Members = append(buckets[i].Members, p)
	}

	return buckets
}
