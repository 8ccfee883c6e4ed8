package seed

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/quadra2003/networking-lunches/internal/domain/model"
)

// Signup mirrors the POST /participants request schema.
type Signup struct {
	SubmissionID  string              `json:"submission_id"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	PracticeAreas []string            `json:"practice_areas"`
	Experience    string              `json:"experience"`
	Availability  []string            `json:"availability"`
	Locations     []string            `json:"locations"`
	SlotLocations map[string][]string `json:"slot_locations,omitempty"`
	Cycle         string              `json:"cycle"`
}

// weighted pools; the first entries are deliberately more common so the
// matcher sees realistic clustering per practice area and location.
var (
	practiceAreas = []string{
		"corporate", "litigation", "family", "real-estate",
		"tax", "immigration", "ip", "criminal-defense",
	}
	areaWeights = []int{5, 5, 3, 3, 2, 2, 1, 1}

	experienceBands = []string{
		string(model.NewlyAdmitted), string(model.Associate),
		string(model.Senior), string(model.Partner),
	}
	bandWeights = []int{2, 4, 3, 1}

	locations = []string{
		"tustin", "irvine", "santa-ana", "costa-mesa", "orange", "anaheim",
	}
	locationWeights = []int{4, 4, 3, 2, 2, 1}
)

// Generate produces count signups for one cycle. The same seed always
// yields the same slice.
func Generate(count int, cycle string, seed int64) []Signup {
	rng := rand.New(rand.NewSource(seed))

	signups := make([]Signup, count)
	for i := range signups {
		name := fmt.Sprintf("attorney-%04d", i)
		areas := pickDistinct(rng, practiceAreas, areaWeights, 1+rng.Intn(2))
		avail := pickSlots(rng)
		locs := pickDistinct(rng, locations, locationWeights, 1+rng.Intn(3))

		signups[i] = Signup{
			SubmissionID:  deterministicID(rng),
			Name:          name,
			Email:         name + "@example.com",
			PracticeAreas: areas,
			Experience:    pickWeighted(rng, experienceBands, bandWeights),
			Availability:  avail,
			Locations:     locs,
			Cycle:         cycle,
		}
	}
	return signups
}

// deterministicID builds a UUID from the seeded source so reruns submit
// identical submission ids and exercise the dedupe path.
func deterministicID(rng *rand.Rand) string {
	var b [16]byte
	rng.Read(b[:]) //nolint:errcheck // rand.Read never fails
	id, err := uuid.FromBytes(b[:])
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// pickWeighted selects one item from pool according to weights.
func pickWeighted(rng *rand.Rand, pool []string, weights []int) string {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return pool[i]
		}
		n -= w
	}
	return pool[len(pool)-1]
}

// pickDistinct selects up to n distinct items from pool.
func pickDistinct(rng *rand.Rand, pool []string, weights []int, n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for attempts := 0; len(out) < n && attempts < n*8; attempts++ {
		item := pickWeighted(rng, pool, weights)
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// pickSlots returns one to three slots in canonical order; the first pick
// is biased toward weekday lunch, the most popular slot in practice.
func pickSlots(rng *rand.Rand) []string {
	count := 1 + rng.Intn(3)
	picked := make(map[model.Slot]bool, count)
	for len(picked) < count {
		if rng.Intn(3) > 0 {
			picked[model.WeekdayLunch] = true
			continue
		}
		picked[model.Slots[rng.Intn(len(model.Slots))]] = true
	}
	out := make([]string, 0, count)
	for _, s := range model.Slots {
		if picked[s] {
			out = append(out, string(s))
		}
	}
	return out
}
