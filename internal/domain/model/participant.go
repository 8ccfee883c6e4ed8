// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Slot is one of the four canonical scheduling windows.
type Slot string

// Canonical slots. Slots lists them in canonical order; all per-slot
// iteration in the matching pipeline follows this order so runs are
// deterministic.
const (
	WeekdayLunch  Slot = "weekday-lunch"
	WeekdayDinner Slot = "weekday-dinner"
	WeekendLunch  Slot = "weekend-lunch"
	WeekendDinner Slot = "weekend-dinner"
)

// Slots is the canonical slot ordering.
var Slots = []Slot{WeekdayLunch, WeekdayDinner, WeekendLunch, WeekendDinner}

// ParseSlot validates a raw slot label.
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case WeekdayLunch, WeekdayDinner, WeekendLunch, WeekendDinner:
		return Slot(s), nil
	}
	return "", fmt.Errorf("unknown slot %q", s)
}

// String returns the wire label for the slot.
func (s Slot) String() string { return string(s) }

// ExperienceLevel is a band in a fixed ordered set. The ordering is the
// secondary diversity sort key when groups are built.
type ExperienceLevel string

// Experience bands, ascending seniority.
const (
	NewlyAdmitted ExperienceLevel = "newly-admitted"
	Associate     ExperienceLevel = "associate"
	Senior        ExperienceLevel = "senior"
	Partner       ExperienceLevel = "partner"
)

// ExperienceLevels is the fixed band ordering, junior first.
var ExperienceLevels = []ExperienceLevel{NewlyAdmitted, Associate, Senior, Partner}

// ParseExperienceLevel validates a raw band label.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch ExperienceLevel(s) {
	case NewlyAdmitted, Associate, Senior, Partner:
		return ExperienceLevel(s), nil
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

// Rank returns the band's position in the fixed ordering, or -1 for a
// value outside the set.
func (e ExperienceLevel) Rank() int {
	for i, band := range ExperienceLevels {
		if band == e {
			return i
		}
	}
	return -1
}

// String returns the wire label for the band.
func (e ExperienceLevel) String() string { return string(e) }

// Status tracks a participant through one cycle.
type Status string

// Participant statuses.
const (
	StatusPending Status = "pending"
	StatusMatched Status = "matched"
)

// Participant is one person's validated preference record for a cycle.
// The matching core reads every field and writes only Status and
// MatchGroupID.
type Participant struct {
	ID    string
	Name  string
	Email string

	// PracticeAreas is ordered; the first entry is the primary category
	// used as the diversity key.
	PracticeAreas []string

	Experience ExperienceLevel

	// Availability is ordered by preference; the first entry is the
	// primary slot. Empty means the participant is never matched.
	Availability []Slot

	// Locations applies when UsesSeparateLocations is false.
	Locations []string

	// SlotLocations holds per-slot location overrides, consulted only
	// when UsesSeparateLocations is true. A missing slot key reads as an
	// empty preference list.
	SlotLocations map[Slot][]string

	UsesSeparateLocations bool

	Status       Status
	MatchGroupID string
	Cycle        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationsFor resolves the location preference list that applies to a
// slot: the per-slot override when the participant opted in, the shared
// list otherwise.
func (p *Participant) LocationsFor(slot Slot) []string {
	if p.UsesSeparateLocations {
		return p.SlotLocations[slot]
	}
	return p.Locations
}

// PrimaryPracticeArea returns the diversity key, or the empty string
// when no practice areas were given.
func (p *Participant) PrimaryPracticeArea() string {
	if len(p.PracticeAreas) == 0 {
		return ""
	}
	return p.PracticeAreas[0]
}
