package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateVillage(Village) (Village, error)
	UpdateVillage(code string, mutator func(*Village) error) (Village, error)
	DeleteVillage(code string) error
	CreateBungalow(Bungalow) (Bungalow, error)
	UpdateBungalow(id string, mutator func(*Bungalow) error) (Bungalow, error)
	DeleteBungalow(id string) error
	CreateParticipant(Participant) (Participant, error)
	UpdateParticipant(id string, mutator func(*Participant) error) (Participant, error)
	DeleteParticipant(id string) error
	CreateStage(Stage) (Stage, error)
	UpdateStage(id string, mutator func(*Stage) error) (Stage, error)
	DeleteStage(id string) error
	CreateRegistration(Registration) (Registration, error)
	UpdateRegistration(id string, mutator func(*Registration) error) (Registration, error)
	DeleteRegistration(id string) error
	FindVillage(code string) (Village, bool)
	FindBungalow(id string) (Bungalow, bool)
	FindParticipant(id string) (Participant, bool)
	FindStage(id string) (Stage, bool)
	FindRegistration(id string) (Registration, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// allocation decisions.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetVillage(code string) (Village, bool)
	ListVillages() []Village
	GetBungalow(id string) (Bungalow, bool)
	ListBungalows() []Bungalow
	GetParticipant(id string) (Participant, bool)
	ListParticipants() []Participant
	GetStage(id string) (Stage, bool)
	ListStages() []Stage
	GetRegistration(id string) (Registration, bool)
	ListRegistrations() []Registration
}
