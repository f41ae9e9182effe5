// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by lodgecore.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityVillage identifies a housing cluster record.
	EntityVillage EntityType = "village"
	// EntityBungalow identifies a bungalow record.
	EntityBungalow EntityType = "bungalow"
	// EntityParticipant identifies a person profile record.
	EntityParticipant EntityType = "participant"
	// EntityStage identifies a scheduled event record.
	EntityStage EntityType = "stage"
	// EntityRegistration identifies an enrollment record.
	EntityRegistration EntityType = "registration"
)

// AmenityClass classifies the bathroom amenities shared by a village.
type AmenityClass string

// Village amenity classes.
const (
	AmenitiesShared  AmenityClass = "shared"
	AmenitiesPrivate AmenityClass = "private"
)

// BedKind distinguishes the physical bed formats in a bungalow.
type BedKind string

// Supported bed kinds.
const (
	BedSingle BedKind = "single"
	BedDouble BedKind = "double"
)

// Gender is binary in this domain.
type Gender string

// Participant genders.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Role classifies a registration within its stage and drives assignment
// priority and segregation rules.
type Role string

// Registration roles in scheduler priority order.
const (
	RoleInstructor  Role = "instructor"
	RoleMusician    Role = "musician"
	RoleStaff       Role = "staff"
	RoleParticipant Role = "participant"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and override handling.
const (
	// SeverityBlock blocks transaction commit and is never overridable.
	SeverityBlock Severity = "block"
	// SeverityWarn surfaces an advisory conflict that callers may override.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// ConflictCode is the fixed vocabulary of placement rejection reasons.
type ConflictCode string

// Placement conflict codes. The first four guard physical or temporal
// impossibility and always reject; the remaining three are advisory.
const (
	CodeBedNotFound           ConflictCode = "BED_NOT_FOUND"
	CodeParticipantNotInStage ConflictCode = "PARTICIPANT_NOT_IN_STAGE"
	CodeBedOccupiedOverlap    ConflictCode = "BED_OCCUPIED_OVERLAP"
	CodeBungalowFullForPeriod ConflictCode = "BUNGALOW_FULL_FOR_PERIOD"
	CodeGenderMixing          ConflictCode = "GENDER_MIXING_NOT_ALLOWED"
	CodeDifferentStages       ConflictCode = "DIFFERENT_STAGES_NOT_ALLOWED"
	CodeRoleSegregation       ConflictCode = "ROLE_SEGREGATION_VIOLATION"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Village is a housing cluster sharing an amenity classification. Villages
// are inventory configuration and read-only to the allocation engine.
type Village struct {
	Base
	Code      string       `json:"code"`
	Amenities AmenityClass `json:"amenities"`
}

// BedOccupant is the denormalized per-bed snapshot persisted beside the
// authoritative Registration. Allocation decisions must never read it; the
// synchronizer rebuilds it after every placement change.
type BedOccupant struct {
	RegistrationID string   `json:"registration_id"`
	ParticipantID  string   `json:"participant_id"`
	Name           string   `json:"name"`
	Gender         Gender   `json:"gender"`
	Age            int      `json:"age,omitempty"`
	Nationality    string   `json:"nationality,omitempty"`
	Languages      []string `json:"languages"`
	Role           Role     `json:"role"`
	StartDate      string   `json:"start_date"`
	StartTime      string   `json:"start_time,omitempty"`
	EndDate        string   `json:"end_date"`
	EndTime        string   `json:"end_time,omitempty"`
	StageName      string   `json:"stage_name"`
	WasForced      bool     `json:"was_forced,omitempty"`
}

// Bed is an individually assignable sleeping slot.
type Bed struct {
	ID       string       `json:"id"`
	Kind     BedKind      `json:"kind"`
	Occupant *BedOccupant `json:"occupant"`
}

// Bungalow is a room with a fixed bed inventory and capacity. Occupancy is
// the count of beds with a non-nil cached occupant and never exceeds
// Capacity.
type Bungalow struct {
	Base
	VillageCode string `json:"village_code"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Occupancy   int    `json:"occupancy"`
	Beds        []Bed  `json:"beds"`
}

// FindBed returns the bed with the given id, if present.
func (b Bungalow) FindBed(bedID string) (Bed, bool) {
	for _, bed := range b.Beds {
		if bed.ID == bedID {
			return bed, true
		}
	}
	return Bed{}, false
}

// BedIDs lists the bungalow's bed identifiers in inventory order.
func (b Bungalow) BedIDs() []string {
	out := make([]string, 0, len(b.Beds))
	for _, bed := range b.Beds {
		out = append(out, bed.ID)
	}
	return out
}

// IsEmpty reports whether no bed carries a cached occupant.
func (b Bungalow) IsEmpty() bool { return b.Occupancy == 0 }

// HasBedKind reports whether any bed of the given kind exists.
func (b Bungalow) HasBedKind(kind BedKind) bool {
	for _, bed := range b.Beds {
		if bed.Kind == kind {
			return true
		}
	}
	return false
}

// Participant is a person profile independent of any event, created once
// and reused across stages.
type Participant struct {
	Base
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Gender      Gender   `json:"gender"`
	Age         int      `json:"age"`
	Nationality string   `json:"nationality"`
	Languages   []string `json:"languages"`
	Category    string   `json:"category"`
}

// FullName joins the participant's first and last names.
func (p Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PrimaryLanguage returns the first declared language, used for grouping.
func (p Participant) PrimaryLanguage() string {
	if len(p.Languages) == 0 {
		return ""
	}
	return p.Languages[0]
}

// Stage is a scheduled, time-bounded activity with its own capacity and
// default presence dates.
type Stage struct {
	Base
	Name           string    `json:"name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Capacity       int       `json:"capacity"`
	Classification string    `json:"classification"`
	MusicianSlots  int       `json:"musician_slots"`
}

// Period returns the stage's default presence window.
func (s Stage) Period() Period {
	return Period{Start: s.StartDate, End: s.EndDate}
}

// Assignment links a registration to a specific bed.
type Assignment struct {
	BungalowID string `json:"bungalow_id"`
	BedID      string `json:"bed_id"`
}

// Registration links one participant to one stage for a presence window.
// It is the allocatable unit: assignments attach here, never to the
// participant directly. Unique per (participant, stage) pair.
type Registration struct {
	Base
	ParticipantID string      `json:"participant_id"`
	StageID       string      `json:"stage_id"`
	Role          Role        `json:"role"`
	ArrivalDate   *time.Time  `json:"arrival_date"`
	ArrivalTime   string      `json:"arrival_time,omitempty"`
	DepartureDate *time.Time  `json:"departure_date"`
	DepartureTime string      `json:"departure_time,omitempty"`
	Assignment    *Assignment `json:"assignment"`
	WasForced     bool        `json:"was_forced,omitempty"`
}

// Assigned reports whether the registration currently holds a bed.
func (r Registration) Assigned() bool { return r.Assignment != nil }

// EffectivePeriod is the registration's actual presence window: explicit
// arrival/departure dates when set, else the stage's default dates.
func (r Registration) EffectivePeriod(stage Stage) Period {
	p := stage.Period()
	if r.ArrivalDate != nil {
		p.Start = *r.ArrivalDate
	}
	if r.DepartureDate != nil {
		p.End = *r.DepartureDate
	}
	return p
}

// Action enumerates mutation kinds captured in the audit trail.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change captures a single entity mutation within a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Code     ConflictCode
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
