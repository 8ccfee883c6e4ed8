package matching

import (
	"sort"

	"github.com/quadra2003/networking-lunches/internal/domain/model"
)

// Group size bounds. The builder targets MaxGroupSize; groups that end
// up below MinGroupSize are dropped by Plan, not here.
const (
	MinGroupSize = 2
	MaxGroupSize = 4
)

// BuildGroups partitions one slot+location bucket into ceil(N/4)
// diversity-balanced groups.
//
// The input is stable-sorted by experience band, partitioned by primary
// practice area in first-seen order, and then dealt out category by
// category, each member going to the currently smallest group (ties to
// the lowest index). Spreading a category across groups before filling
// any single one maximizes per-group practice-area diversity, and the
// fixed tie-break keeps the output deterministic for a given input
// order. Not globally optimal, by contract.
func BuildGroups(participants []*model.Participant) [][]*model.Participant {
	if len(participants) == 0 {
		return nil
	}

	sorted := make([]*model.Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Experience.Rank() < sorted[j].Experience.Rank()
	})

	// Partition by primary practice area, insertion order = first time
	// the category appears in the experience-sorted scan. An empty
	// practice-area list files under the empty category.
	areaIndex := make(map[string]int)
	var areas []string
	byArea := make(map[string][]*model.Participant)
	for _, p := range sorted {
		area := p.PrimaryPracticeArea()
		if _, ok := areaIndex[area]; !ok {
			areaIndex[area] = len(areas)
			areas = append(areas, area)
		}
		byArea[area] = append(byArea[area], p)
	}

	groupCount := (len(sorted) + MaxGroupSize - 1) / MaxGroupSize
	groups := make([][]*model.Participant, groupCount)
	placed := make(map[string]bool, len(sorted))

	for _, area := range areas {
		for _, p := range byArea[area] {
			i := smallestGroup(groups)
			groups[i] = append(groups[i], p)
			placed[p.ID] = true
		}
	}

	// Safety pass: the partition above covers every input, but keep the
	// smallest-group rule for anything that slipped through.
	for _, p := range sorted {
		if !placed[p.ID] {
			i := smallestGroup(groups)
			groups[i] = append(groups[i], p)
		}
	}

	var out [][]*model.Participant
	for _, g := range groups {
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// smallestGroup returns the index of the group with the fewest members,
// breaking ties by the lowest index.
func smallestGroup(groups [][]*model.Participant) int {
	best := 0
	for i := 1; i < len(groups); i++ {
		if len(groups[i]) < len(groups[best]) {
			best = i
		}
	}
	return best
}
