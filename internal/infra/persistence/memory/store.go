// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"lodgecore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Village aliases domain.Village for in-memory persistence operations.
	Village = domain.Village
	// Bungalow aliases domain.Bungalow.
	Bungalow = domain.Bungalow
	// Participant aliases domain.Participant.
	Participant = domain.Participant
	// Stage aliases domain.Stage.
	Stage = domain.Stage
	// Registration aliases domain.Registration.
	Registration = domain.Registration
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	villages      map[string]Village
	bungalows     map[string]Bungalow
	participants  map[string]Participant
	stages        map[string]Stage
	registrations map[string]Registration
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Villages      map[string]Village      `json:"villages"`
	Bungalows     map[string]Bungalow     `json:"bungalows"`
	Participants  map[string]Participant  `json:"participants"`
	Stages        map[string]Stage        `json:"stages"`
	Registrations map[string]Registration `json:"registrations"`
}

func newMemoryState() memoryState {
	return memoryState{
		villages:      make(map[string]Village),
		bungalows:     make(map[string]Bungalow),
		participants:  make(map[string]Participant),
		stages:        make(map[string]Stage),
		registrations: make(map[string]Registration),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Villages:      make(map[string]Village, len(state.villages)),
		Bungalows:     make(map[string]Bungalow, len(state.bungalows)),
		Participants:  make(map[string]Participant, len(state.participants)),
		Stages:        make(map[string]Stage, len(state.stages)),
		Registrations: make(map[string]Registration, len(state.registrations)),
	}
	for k, v := range state.villages {
		s.Villages[k] = cloneVillage(v)
	}
	for k, v := range state.bungalows {
		s.Bungalows[k] = cloneBungalow(v)
	}
	for k, v := range state.participants {
		s.Participants[k] = cloneParticipant(v)
	}
	for k, v := range state.stages {
		s.Stages[k] = cloneStage(v)
	}
	for k, v := range state.registrations {
		s.Registrations[k] = cloneRegistration(v)
	}
	return s
}

// migrateSnapshot normalizes snapshots decoded from older persisted payloads
// so that absent buckets hydrate to empty maps instead of nil.
func migrateSnapshot(s Snapshot) Snapshot {
	if s.Villages == nil {
		s.Villages = map[string]Village{}
	}
	if s.Bungalows == nil {
		s.Bungalows = map[string]Bungalow{}
	}
	if s.Participants == nil {
		s.Participants = map[string]Participant{}
	}
	if s.Stages == nil {
		s.Stages = map[string]Stage{}
	}
	if s.Registrations == nil {
		s.Registrations = map[string]Registration{}
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Villages {
		state.villages[k] = cloneVillage(v)
	}
	for k, v := range s.Bungalows {
		state.bungalows[k] = cloneBungalow(v)
	}
	for k, v := range s.Participants {
		state.participants[k] = cloneParticipant(v)
	}
	for k, v := range s.Stages {
		state.stages[k] = cloneStage(v)
	}
	for k, v := range s.Registrations {
		state.registrations[k] = cloneRegistration(v)
	}
	return state
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.villages {
		cloned.villages[k] = cloneVillage(v)
	}
	for k, v := range s.bungalows {
		cloned.bungalows[k] = cloneBungalow(v)
	}
	for k, v := range s.participants {
		cloned.participants[k] = cloneParticipant(v)
	}
	for k, v := range s.stages {
		cloned.stages[k] = cloneStage(v)
	}
	for k, v := range s.registrations {
		cloned.registrations[k] = cloneRegistration(v)
	}
	return cloned
}

func cloneVillage(v Village) Village { return v }

func cloneBungalow(b Bungalow) Bungalow {
	cp := b
	cp.Beds = make([]domain.Bed, len(b.Beds))
	for i, bed := range b.Beds {
		bedCopy := bed
		if bed.Occupant != nil {
			occ := *bed.Occupant
			occ.Languages = append([]string(nil), bed.Occupant.Languages...)
			bedCopy.Occupant = &occ
		}
		cp.Beds[i] = bedCopy
	}
	return cp
}

func cloneParticipant(p Participant) Participant {
	cp := p
	cp.Languages = append([]string(nil), p.Languages...)
	return cp
}

func cloneStage(s Stage) Stage { return s }

func cloneRegistration(r Registration) Registration {
	cp := r
	if r.ArrivalDate != nil {
		d := *r.ArrivalDate
		cp.ArrivalDate = &d
	}
	if r.DepartureDate != nil {
		d := *r.DepartureDate
		cp.DepartureDate = &d
	}
	if r.Assignment != nil {
		a := *r.Assignment
		cp.Assignment = &a
	}
	return cp
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the time provider, primarily for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) transactionView {
	return transactionView{state: state}
}

// ListVillages returns all villages sorted by code.
func (v transactionView) ListVillages() []Village {
	out := make([]Village, 0, len(v.state.villages))
	for _, vv := range v.state.villages {
		out = append(out, cloneVillage(vv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ListBungalows returns all bungalows sorted by village then name.
func (v transactionView) ListBungalows() []Bungalow {
	out := make([]Bungalow, 0, len(v.state.bungalows))
	for _, b := range v.state.bungalows {
		out = append(out, cloneBungalow(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VillageCode != out[j].VillageCode {
			return out[i].VillageCode < out[j].VillageCode
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ListParticipants returns all participants sorted by ID.
func (v transactionView) ListParticipants() []Participant {
	out := make([]Participant, 0, len(v.state.participants))
	for _, p := range v.state.participants {
		out = append(out, cloneParticipant(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListStages returns all stages sorted by start date then ID.
func (v transactionView) ListStages() []Stage {
	out := make([]Stage, 0, len(v.state.stages))
	for _, st := range v.state.stages {
		out = append(out, cloneStage(st))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListRegistrations returns all registrations sorted by ID.
func (v transactionView) ListRegistrations() []Registration {
	out := make([]Registration, 0, len(v.state.registrations))
	for _, r := range v.state.registrations {
		out = append(out, cloneRegistration(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindVillage retrieves a village by code from the snapshot.
func (v transactionView) FindVillage(code string) (Village, bool) {
	vv, ok := v.state.villages[code]
	if !ok {
		return Village{}, false
	}
	return cloneVillage(vv), true
}

// FindBungalow retrieves a bungalow by ID from the snapshot.
func (v transactionView) FindBungalow(id string) (Bungalow, bool) {
	b, ok := v.state.bungalows[id]
	if !ok {
		return Bungalow{}, false
	}
	return cloneBungalow(b), true
}

// FindParticipant retrieves a participant by ID from the snapshot.
func (v transactionView) FindParticipant(id string) (Participant, bool) {
	p, ok := v.state.participants[id]
	if !ok {
		return Participant{}, false
	}
	return cloneParticipant(p), true
}

// FindStage retrieves a stage by ID from the snapshot.
func (v transactionView) FindStage(id string) (Stage, bool) {
	st, ok := v.state.stages[id]
	if !ok {
		return Stage{}, false
	}
	return cloneStage(st), true
}

// FindRegistration retrieves a registration by ID from the snapshot.
func (v transactionView) FindRegistration(id string) (Registration, bool) {
	r, ok := v.state.registrations[id]
	if !ok {
		return Registration{}, false
	}
	return cloneRegistration(r), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindVillage retrieves a village within the transaction.
func (tx *transaction) FindVillage(code string) (Village, bool) {
	v, ok := tx.state.villages[code]
	if !ok {
		return Village{}, false
	}
	return cloneVillage(v), true
}

// FindBungalow retrieves a bungalow within the transaction.
func (tx *transaction) FindBungalow(id string) (Bungalow, bool) {
	b, ok := tx.state.bungalows[id]
	if !ok {
		return Bungalow{}, false
	}
	return cloneBungalow(b), true
}

// FindParticipant retrieves a participant within the transaction.
func (tx *transaction) FindParticipant(id string) (Participant, bool) {
	p, ok := tx.state.participants[id]
	if !ok {
		return Participant{}, false
	}
	return cloneParticipant(p), true
}

// FindStage retrieves a stage within the transaction.
func (tx *transaction) FindStage(id string) (Stage, bool) {
	st, ok := tx.state.stages[id]
	if !ok {
		return Stage{}, false
	}
	return cloneStage(st), true
}

// FindRegistration retrieves a registration within the transaction.
func (tx *transaction) FindRegistration(id string) (Registration, bool) {
	r, ok := tx.state.registrations[id]
	if !ok {
		return Registration{}, false
	}
	return cloneRegistration(r), true
}

// CreateVillage stores a new village keyed by its code.
func (tx *transaction) CreateVillage(v Village) (Village, error) {
	if v.Code == "" {
		return Village{}, fmt.Errorf("village code required")
	}
	if _, exists := tx.state.villages[v.Code]; exists {
		return Village{}, fmt.Errorf("village %q already exists", v.Code)
	}
	if v.ID == "" {
		v.ID = tx.store.newID()
	}
	v.CreatedAt = tx.now
	v.UpdatedAt = tx.now
	tx.state.villages[v.Code] = cloneVillage(v)
	tx.recordChange(Change{Entity: domain.EntityVillage, Action: domain.ActionCreate, After: cloneVillage(v)})
	return cloneVillage(v), nil
}

// UpdateVillage mutates a village using the provided mutator.
func (tx *transaction) UpdateVillage(code string, mutator func(*Village) error) (Village, error) {
	current, ok := tx.state.villages[code]
	if !ok {
		return Village{}, fmt.Errorf("village %q not found", code)
	}
	before := cloneVillage(current)
	if err := mutator(&current); err != nil {
		return Village{}, err
	}
	current.Code = code
	current.UpdatedAt = tx.now
	tx.state.villages[code] = cloneVillage(current)
	tx.recordChange(Change{Entity: domain.EntityVillage, Action: domain.ActionUpdate, Before: before, After: cloneVillage(current)})
	return cloneVillage(current), nil
}

// DeleteVillage removes a village once no bungalow references it.
func (tx *transaction) DeleteVillage(code string) error {
	current, ok := tx.state.villages[code]
	if !ok {
		return fmt.Errorf("village %q not found", code)
	}
	for _, b := range tx.state.bungalows {
		if b.VillageCode == code {
			return fmt.Errorf("village %q still referenced by bungalow %q", code, b.ID)
		}
	}
	delete(tx.state.villages, code)
	tx.recordChange(Change{Entity: domain.EntityVillage, Action: domain.ActionDelete, Before: cloneVillage(current)})
	return nil
}

// CreateBungalow stores a new bungalow.
func (tx *transaction) CreateBungalow(b Bungalow) (Bungalow, error) {
	if b.ID == "" {
		b.ID = tx.store.newID()
	}
	if _, exists := tx.state.bungalows[b.ID]; exists {
		return Bungalow{}, fmt.Errorf("bungalow %q already exists", b.ID)
	}
	if _, ok := tx.state.villages[b.VillageCode]; !ok {
		return Bungalow{}, fmt.Errorf("bungalow %q references unknown village %q", b.ID, b.VillageCode)
	}
	if b.Capacity <= 0 {
		b.Capacity = len(b.Beds)
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	tx.state.bungalows[b.ID] = cloneBungalow(b)
	tx.recordChange(Change{Entity: domain.EntityBungalow, Action: domain.ActionCreate, After: cloneBungalow(b)})
	return cloneBungalow(b), nil
}

// UpdateBungalow mutates a bungalow using the provided mutator.
func (tx *transaction) UpdateBungalow(id string, mutator func(*Bungalow) error) (Bungalow, error) {
	current, ok := tx.state.bungalows[id]
	if !ok {
		return Bungalow{}, fmt.Errorf("bungalow %q not found", id)
	}
	before := cloneBungalow(current)
	if err := mutator(&current); err != nil {
		return Bungalow{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.bungalows[id] = cloneBungalow(current)
	tx.recordChange(Change{Entity: domain.EntityBungalow, Action: domain.ActionUpdate, Before: before, After: cloneBungalow(current)})
	return cloneBungalow(current), nil
}

// DeleteBungalow removes a bungalow once no registration is assigned to it.
func (tx *transaction) DeleteBungalow(id string) error {
	current, ok := tx.state.bungalows[id]
	if !ok {
		return fmt.Errorf("bungalow %q not found", id)
	}
	for _, r := range tx.state.registrations {
		if r.Assignment != nil && r.Assignment.BungalowID == id {
			return fmt.Errorf("bungalow %q still referenced by registration %q", id, r.ID)
		}
	}
	delete(tx.state.bungalows, id)
	tx.recordChange(Change{Entity: domain.EntityBungalow, Action: domain.ActionDelete, Before: cloneBungalow(current)})
	return nil
}

// CreateParticipant stores a new participant profile.
func (tx *transaction) CreateParticipant(p Participant) (Participant, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.participants[p.ID]; exists {
		return Participant{}, fmt.Errorf("participant %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.participants[p.ID] = cloneParticipant(p)
	tx.recordChange(Change{Entity: domain.EntityParticipant, Action: domain.ActionCreate, After: cloneParticipant(p)})
	return cloneParticipant(p), nil
}

// UpdateParticipant mutates a participant using the provided mutator.
func (tx *transaction) UpdateParticipant(id string, mutator func(*Participant) error) (Participant, error) {
	current, ok := tx.state.participants[id]
	if !ok {
		return Participant{}, fmt.Errorf("participant %q not found", id)
	}
	before := cloneParticipant(current)
	if err := mutator(&current); err != nil {
		return Participant{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.participants[id] = cloneParticipant(current)
	tx.recordChange(Change{Entity: domain.EntityParticipant, Action: domain.ActionUpdate, Before: before, After: cloneParticipant(current)})
	return cloneParticipant(current), nil
}

// DeleteParticipant removes a participant once no registration references it.
func (tx *transaction) DeleteParticipant(id string) error {
	current, ok := tx.state.participants[id]
	if !ok {
		return fmt.Errorf("participant %q not found", id)
	}
	for _, r := range tx.state.registrations {
		if r.ParticipantID == id {
			return fmt.Errorf("participant %q still referenced by registration %q", id, r.ID)
		}
	}
	delete(tx.state.participants, id)
	tx.recordChange(Change{Entity: domain.EntityParticipant, Action: domain.ActionDelete, Before: cloneParticipant(current)})
	return nil
}

// CreateStage stores a new stage.
func (tx *transaction) CreateStage(st Stage) (Stage, error) {
	if st.ID == "" {
		st.ID = tx.store.newID()
	}
	if _, exists := tx.state.stages[st.ID]; exists {
		return Stage{}, fmt.Errorf("stage %q already exists", st.ID)
	}
	if st.EndDate.Before(st.StartDate) {
		return Stage{}, fmt.Errorf("stage %q ends before it starts", st.ID)
	}
	st.CreatedAt = tx.now
	st.UpdatedAt = tx.now
	tx.state.stages[st.ID] = cloneStage(st)
	tx.recordChange(Change{Entity: domain.EntityStage, Action: domain.ActionCreate, After: cloneStage(st)})
	return cloneStage(st), nil
}

// UpdateStage mutates a stage using the provided mutator.
func (tx *transaction) UpdateStage(id string, mutator func(*Stage) error) (Stage, error) {
	current, ok := tx.state.stages[id]
	if !ok {
		return Stage{}, fmt.Errorf("stage %q not found", id)
	}
	before := cloneStage(current)
	if err := mutator(&current); err != nil {
		return Stage{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.stages[id] = cloneStage(current)
	tx.recordChange(Change{Entity: domain.EntityStage, Action: domain.ActionUpdate, Before: before, After: cloneStage(current)})
	return cloneStage(current), nil
}

// DeleteStage removes a stage once no registration references it.
func (tx *transaction) DeleteStage(id string) error {
	current, ok := tx.state.stages[id]
	if !ok {
		return fmt.Errorf("stage %q not found", id)
	}
	for _, r := range tx.state.registrations {
		if r.StageID == id {
			return fmt.Errorf("stage %q still referenced by registration %q", id, r.ID)
		}
	}
	delete(tx.state.stages, id)
	tx.recordChange(Change{Entity: domain.EntityStage, Action: domain.ActionDelete, Before: cloneStage(current)})
	return nil
}

// CreateRegistration stores a new registration, enforcing referential
// integrity and uniqueness per (participant, stage) pair.
func (tx *transaction) CreateRegistration(r Registration) (Registration, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.registrations[r.ID]; exists {
		return Registration{}, fmt.Errorf("registration %q already exists", r.ID)
	}
	if _, ok := tx.state.participants[r.ParticipantID]; !ok {
		return Registration{}, fmt.Errorf("registration %q references unknown participant %q", r.ID, r.ParticipantID)
	}
	if _, ok := tx.state.stages[r.StageID]; !ok {
		return Registration{}, fmt.Errorf("registration %q references unknown stage %q", r.ID, r.StageID)
	}
	for _, existing := range tx.state.registrations {
		if existing.ParticipantID == r.ParticipantID && existing.StageID == r.StageID {
			return Registration{}, fmt.Errorf("participant %q already registered for stage %q", r.ParticipantID, r.StageID)
		}
	}
	if r.Role == "" {
		r.Role = domain.RoleParticipant
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.registrations[r.ID] = cloneRegistration(r)
	tx.recordChange(Change{Entity: domain.EntityRegistration, Action: domain.ActionCreate, After: cloneRegistration(r)})
	return cloneRegistration(r), nil
}

// UpdateRegistration mutates a registration using the provided mutator.
func (tx *transaction) UpdateRegistration(id string, mutator func(*Registration) error) (Registration, error) {
	current, ok := tx.state.registrations[id]
	if !ok {
		return Registration{}, fmt.Errorf("registration %q not found", id)
	}
	before := cloneRegistration(current)
	if err := mutator(&current); err != nil {
		return Registration{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.registrations[id] = cloneRegistration(current)
	tx.recordChange(Change{Entity: domain.EntityRegistration, Action: domain.ActionUpdate, Before: before, After: cloneRegistration(current)})
	return cloneRegistration(current), nil
}

// DeleteRegistration removes a registration from the transaction state.
func (tx *transaction) DeleteRegistration(id string) error {
	current, ok := tx.state.registrations[id]
	if !ok {
		return fmt.Errorf("registration %q not found", id)
	}
	delete(tx.state.registrations, id)
	tx.recordChange(Change{Entity: domain.EntityRegistration, Action: domain.ActionDelete, Before: cloneRegistration(current)})
	return nil
}

// GetVillage returns a village by code from committed state.
func (s *Store) GetVillage(code string) (Village, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.villages[code]
	if !ok {
		return Village{}, false
	}
	return cloneVillage(v), true
}

// ListVillages returns all committed villages sorted by code.
func (s *Store) ListVillages() []Village {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListVillages()
}

// GetBungalow returns a bungalow by ID from committed state.
func (s *Store) GetBungalow(id string) (Bungalow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.bungalows[id]
	if !ok {
		return Bungalow{}, false
	}
	return cloneBungalow(b), true
}

// ListBungalows returns all committed bungalows sorted by village then name.
func (s *Store) ListBungalows() []Bungalow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListBungalows()
}

// GetParticipant returns a participant by ID from committed state.
func (s *Store) GetParticipant(id string) (Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.participants[id]
	if !ok {
		return Participant{}, false
	}
	return cloneParticipant(p), true
}

// ListParticipants returns all committed participants sorted by ID.
func (s *Store) ListParticipants() []Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListParticipants()
}

// GetStage returns a stage by ID from committed state.
func (s *Store) GetStage(id string) (Stage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state.stages[id]
	if !ok {
		return Stage{}, false
	}
	return cloneStage(st), true
}

// ListStages returns all committed stages sorted by start date.
func (s *Store) ListStages() []Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListStages()
}

// GetRegistration returns a registration by ID from committed state.
func (s *Store) GetRegistration(id string) (Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.registrations[id]
	if !ok {
		return Registration{}, false
	}
	return cloneRegistration(r), true
}

// ListRegistrations returns all committed registrations sorted by ID.
func (s *Store) ListRegistrations() []Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListRegistrations()
}
