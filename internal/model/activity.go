package model

import "time"

// Activity represents an extracurricular offering as stored in the
// `activities` table.  Activities are created by the seed procedure or
// by an administrator, never implicitly.  The participant set is loaded
// through the activity_participants association table.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – unique, trimmed activity name (minimum 3 characters).
//  Description     – what the activity is about (minimum 10 characters).
//  Schedule        – free-form schedule text shown to students.
//  MaxParticipants – enrollment ceiling, always positive.
//  CreatedAt       – creation timestamp (nil for legacy rows until the
//                    heal pass backfills it).
//  CreatedBy       – user ID of the creator (nil when seeded).
//  Participants    – currently enrolled users, loaded eagerly by the
//                    repository.  Never persisted directly.
type Activity struct {
    ID              int64      // activities.id
    Name            string     // activities.name
    Description     string     // activities.description
    Schedule        string     // activities.schedule
    MaxParticipants int        // activities.max_participants
    CreatedAt       *time.Time // activities.created_at (nullable)
    CreatedBy       *int64     // activities.created_by (nullable)
    Participants    []User     // loaded via activity_participants
}

// AvailableSpots returns how many enrollment slots remain.  It is
// computed from the loaded participant set rather than stored, so it
// cannot drift from the relation itself.
func (a *Activity) AvailableSpots() int {
    if n := a.MaxParticipants - len(a.Participants); n > 0 {
        return n
    }
    return 0
}

// IsFull reports whether the activity has reached its enrollment
// ceiling.
func (a *Activity) IsFull() bool {
    return len(a.Participants) >= a.MaxParticipants
}
