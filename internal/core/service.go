package core

import (
	"context"
	"fmt"
	"time"

	"lodgecore/internal/infra/persistence/memory"
)

// DefaultMusicianVillage is the village code musicians are routed to unless
// overridden via WithMusicianVillage.
const DefaultMusicianVillage = "C"

// Service exposes the allocation engine and transactional CRUD operations
// over the lodging schema.
type Service struct {
	store           PersistentStore
	logger          Logger
	clock           Clock
	metrics         MetricsRecorder
	tracer          Tracer
	audit           AuditRecorder
	musicianVillage string
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:           store,
		logger:          noopLogger{},
		clock:           ClockFunc(func() time.Time { return time.Now().UTC() }),
		musicianVillage: DefaultMusicianVillage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine. A nil engine gets the default policy set.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// MusicianVillage returns the village code musicians are routed to.
func (s *Service) MusicianVillage() string {
	return s.musicianVillage
}

// ErrNotFound is returned when reference resolution fails within
// transactional helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// auditOperation ties a service operation name to its audit metadata.
type auditOperation struct {
	Entity EntityType
	Action Action
}

var auditOperations = map[string]auditOperation{
	"create_village":      {Entity: EntityVillage, Action: ActionCreate},
	"update_village":      {Entity: EntityVillage, Action: ActionUpdate},
	"delete_village":      {Entity: EntityVillage, Action: ActionDelete},
	"create_bungalow":     {Entity: EntityBungalow, Action: ActionCreate},
	"update_bungalow":     {Entity: EntityBungalow, Action: ActionUpdate},
	"delete_bungalow":     {Entity: EntityBungalow, Action: ActionDelete},
	"create_participant":  {Entity: EntityParticipant, Action: ActionCreate},
	"update_participant":  {Entity: EntityParticipant, Action: ActionUpdate},
	"delete_participant":  {Entity: EntityParticipant, Action: ActionDelete},
	"create_stage":        {Entity: EntityStage, Action: ActionCreate},
	"update_stage":        {Entity: EntityStage, Action: ActionUpdate},
	"delete_stage":        {Entity: EntityStage, Action: ActionDelete},
	"create_registration": {Entity: EntityRegistration, Action: ActionCreate},
	"update_registration": {Entity: EntityRegistration, Action: ActionUpdate},
	"delete_registration": {Entity: EntityRegistration, Action: ActionDelete},
	"assign":              {Entity: EntityRegistration, Action: ActionUpdate},
	"unassign":            {Entity: EntityRegistration, Action: ActionUpdate},
	"auto_assign_stage":   {Entity: EntityStage, Action: ActionUpdate},
	"reconcile":           {Entity: EntityBungalow, Action: ActionUpdate},
}

// begin opens tracing for an operation and returns a completion callback
// that records metrics, audit entries, and a log line.
func (s *Service) begin(ctx context.Context, operation string) (context.Context, func(entityID string, err error)) {
	start := s.clock.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	return ctx, func(entityID string, err error) {
		duration := s.clock.Now().Sub(start)
		if span != nil {
			span.End(err)
		}
		if s.metrics != nil {
			s.metrics.Observe(ctx, operation, err == nil, duration)
		}
		if err != nil {
			s.logger.Warn("operation failed", "operation", operation, "entity_id", entityID, "error", err)
			s.recordAuditError(ctx, operation, entityID, duration, err)
			return
		}
		s.logger.Debug("operation completed", "operation", operation, "entity_id", entityID, "duration", duration)
		s.recordAuditSuccess(ctx, operation, entityID, duration)
	}
}

func (s *Service) recordAuditSuccess(ctx context.Context, operation, entityID string, duration time.Duration) {
	s.recordAudit(ctx, operation, entityID, AuditStatusSuccess, "", duration)
}

func (s *Service) recordAuditError(ctx context.Context, operation, entityID string, duration time.Duration, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.recordAudit(ctx, operation, entityID, AuditStatusError, msg, duration)
}

func (s *Service) recordAudit(ctx context.Context, operation, entityID string, status AuditStatus, errMsg string, duration time.Duration) {
	if s.audit == nil {
		return
	}
	meta, ok := auditOperations[operation]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: operation,
		Entity:    meta.Entity,
		Action:    meta.Action,
		EntityID:  entityID,
		Status:    status,
		Error:     errMsg,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

// CreateVillage persists a new village.
func (s *Service) CreateVillage(ctx context.Context, village Village) (Village, Result, error) {
	ctx, done := s.begin(ctx, "create_village")
	var created Village
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateVillage(village)
		return err
	})
	done(created.Code, err)
	return created, res, err
}

// UpdateVillage mutates a village using the provided mutator.
func (s *Service) UpdateVillage(ctx context.Context, code string, mutator func(*Village) error) (Village, Result, error) {
	ctx, done := s.begin(ctx, "update_village")
	var updated Village
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateVillage(code, mutator)
		return err
	})
	done(code, err)
	return updated, res, err
}

// DeleteVillage removes a village; fails while bungalows reference it.
func (s *Service) DeleteVillage(ctx context.Context, code string) (Result, error) {
	ctx, done := s.begin(ctx, "delete_village")
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteVillage(code)
	})
	done(code, err)
	return res, err
}

// CreateBungalow persists a new bungalow.
func (s *Service) CreateBungalow(ctx context.Context, bungalow Bungalow) (Bungalow, Result, error) {
	ctx, done := s.begin(ctx, "create_bungalow")
	var created Bungalow
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateBungalow(bungalow)
		return err
	})
	done(created.ID, err)
	return created, res, err
}

// UpdateBungalow mutates a bungalow using the provided mutator.
func (s *Service) UpdateBungalow(ctx context.Context, id string, mutator func(*Bungalow) error) (Bungalow, Result, error) {
	ctx, done := s.begin(ctx, "update_bungalow")
	var updated Bungalow
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateBungalow(id, mutator)
		return err
	})
	done(id, err)
	return updated, res, err
}

// DeleteBungalow removes a bungalow; fails while registrations are assigned
// to it.
func (s *Service) DeleteBungalow(ctx context.Context, id string) (Result, error) {
	ctx, done := s.begin(ctx, "delete_bungalow")
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteBungalow(id)
	})
	done(id, err)
	return res, err
}

// CreateParticipant persists a new participant profile.
func (s *Service) CreateParticipant(ctx context.Context, participant Participant) (Participant, Result, error) {
	ctx, done := s.begin(ctx, "create_participant")
	var created Participant
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateParticipant(participant)
		return err
	})
	done(created.ID, err)
	return created, res, err
}

// UpdateParticipant mutates a participant using the provided mutator.
func (s *Service) UpdateParticipant(ctx context.Context, id string, mutator func(*Participant) error) (Participant, Result, error) {
	ctx, done := s.begin(ctx, "update_participant")
	var updated Participant
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateParticipant(id, mutator)
		return err
	})
	done(id, err)
	return updated, res, err
}

// DeleteParticipant removes a participant after withdrawing all of their
// registrations, releasing any held beds.
func (s *Service) DeleteParticipant(ctx context.Context, id string) (Result, error) {
	ctx, done := s.begin(ctx, "delete_participant")
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, ok := tx.FindParticipant(id); !ok {
			return ErrNotFound{Entity: EntityParticipant, ID: id}
		}
		for _, r := range tx.Snapshot().ListRegistrations() {
			if r.ParticipantID != id {
				continue
			}
			if err := s.withdrawRegistration(tx, r); err != nil {
				return err
			}
		}
		return tx.DeleteParticipant(id)
	})
	done(id, err)
	return res, err
}

// CreateStage persists a new stage.
func (s *Service) CreateStage(ctx context.Context, stage Stage) (Stage, Result, error) {
	ctx, done := s.begin(ctx, "create_stage")
	var created Stage
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateStage(stage)
		return err
	})
	done(created.ID, err)
	return created, res, err
}

// UpdateStage mutates a stage using the provided mutator.
func (s *Service) UpdateStage(ctx context.Context, id string, mutator func(*Stage) error) (Stage, Result, error) {
	ctx, done := s.begin(ctx, "update_stage")
	var updated Stage
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateStage(id, mutator)
		return err
	})
	done(id, err)
	return updated, res, err
}

// DeleteStage removes a stage after withdrawing all of its registrations,
// releasing any held beds.
func (s *Service) DeleteStage(ctx context.Context, id string) (Result, error) {
	ctx, done := s.begin(ctx, "delete_stage")
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, ok := tx.FindStage(id); !ok {
			return ErrNotFound{Entity: EntityStage, ID: id}
		}
		for _, r := range tx.Snapshot().ListRegistrations() {
			if r.StageID != id {
				continue
			}
			if err := s.withdrawRegistration(tx, r); err != nil {
				return err
			}
		}
		return tx.DeleteStage(id)
	})
	done(id, err)
	return res, err
}

// CreateRegistration enrolls a participant into a stage.
func (s *Service) CreateRegistration(ctx context.Context, registration Registration) (Registration, Result, error) {
	ctx, done := s.begin(ctx, "create_registration")
	var created Registration
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateRegistration(registration)
		return err
	})
	done(created.ID, err)
	return created, res, err
}

// UpdateRegistration mutates a registration using the provided mutator.
func (s *Service) UpdateRegistration(ctx context.Context, id string, mutator func(*Registration) error) (Registration, Result, error) {
	ctx, done := s.begin(ctx, "update_registration")
	var updated Registration
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateRegistration(id, mutator)
		return err
	})
	done(id, err)
	return updated, res, err
}

// DeleteRegistration withdraws an enrollment, releasing its bed and
// re-syncing the bungalow before removal.
func (s *Service) DeleteRegistration(ctx context.Context, id string) (Result, error) {
	ctx, done := s.begin(ctx, "delete_registration")
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		r, ok := tx.FindRegistration(id)
		if !ok {
			return ErrNotFound{Entity: EntityRegistration, ID: id}
		}
		return s.withdrawRegistration(tx, r)
	})
	done(id, err)
	return res, err
}

// withdrawRegistration releases the registration's bed cache entry (when it
// still points at this registration), re-syncs the bungalow, and deletes
// the record.
func (s *Service) withdrawRegistration(tx Transaction, r Registration) error {
	if r.Assignment != nil {
		bungalowID := r.Assignment.BungalowID
		if err := tx.DeleteRegistration(r.ID); err != nil {
			return err
		}
		return s.syncBungalow(tx, bungalowID)
	}
	return tx.DeleteRegistration(r.ID)
}
