package core

import "lodgecore/pkg/domain"

type (
	EntityType         = domain.EntityType
	AmenityClass       = domain.AmenityClass
	BedKind            = domain.BedKind
	Gender             = domain.Gender
	Role               = domain.Role
	Severity           = domain.Severity
	ConflictCode       = domain.ConflictCode
	Base               = domain.Base
	Village            = domain.Village
	Bungalow           = domain.Bungalow
	Bed                = domain.Bed
	BedOccupant        = domain.BedOccupant
	Participant        = domain.Participant
	Stage              = domain.Stage
	Registration       = domain.Registration
	Assignment         = domain.Assignment
	Period             = domain.Period
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityVillage      = domain.EntityVillage
	EntityBungalow     = domain.EntityBungalow
	EntityParticipant  = domain.EntityParticipant
	EntityStage        = domain.EntityStage
	EntityRegistration = domain.EntityRegistration
)

const (
	AmenitiesShared  = domain.AmenitiesShared
	AmenitiesPrivate = domain.AmenitiesPrivate
)

const (
	BedSingle = domain.BedSingle
	BedDouble = domain.BedDouble
)

const (
	GenderMale   = domain.GenderMale
	GenderFemale = domain.GenderFemale
)

const (
	RoleInstructor  = domain.RoleInstructor
	RoleMusician    = domain.RoleMusician
	RoleStaff       = domain.RoleStaff
	RoleParticipant = domain.RoleParticipant
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	CodeBedNotFound           = domain.CodeBedNotFound
	CodeParticipantNotInStage = domain.CodeParticipantNotInStage
	CodeBedOccupiedOverlap    = domain.CodeBedOccupiedOverlap
	CodeBungalowFullForPeriod = domain.CodeBungalowFullForPeriod
	CodeGenderMixing          = domain.CodeGenderMixing
	CodeDifferentStages       = domain.CodeDifferentStages
	CodeRoleSegregation       = domain.CodeRoleSegregation
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
