package model

import "time"

// MatchGroup is the output unit of a matching run: a small set of
// participants assigned to meet in one slot at one location. The core
// creates groups with IsFinalized false; everything after that belongs
// to the admin surface.
type MatchGroup struct {
	ID       string
	Cycle    string
	Slot     Slot
	Location string

	// MemberIDs holds participant ids, 2 to 4 of them at creation.
	MemberIDs []string

	IsFinalized bool

	// Set by the admin surface when the group is finalized.
	MeetingTime time.Time
	Venue       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Size returns the member count.
func (g *MatchGroup) Size() int { return len(g.MemberIDs) }
