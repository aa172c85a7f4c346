package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spiralhq/spiral-platform/app/models"
)

// memoryStore is the volatile reference backend: keyed in-memory collections
// with monotonic id counters. A single RWMutex serializes mutations so the
// multi-step invariants (id assignment, seal stamping) hold under concurrent
// requests; the finer-grained balance serialization lives in the ledger
// service.
type memoryStore struct {
	mu sync.RWMutex

	users         map[uint]models.User
	modules       map[uint]models.Module
	fragments     map[uint]models.Fragment
	memberships   map[uint]models.Membership
	transactions  map[uint]models.Transaction
	webhookEvents map[uint]models.WebhookEvent

	nextUserID         uint
	nextModuleID       uint
	nextFragmentID     uint
	nextMembershipID   uint
	nextTransactionID  uint
	nextWebhookEventID uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:              make(map[uint]models.User),
		modules:            make(map[uint]models.Module),
		fragments:          make(map[uint]models.Fragment),
		memberships:        make(map[uint]models.Membership),
		transactions:       make(map[uint]models.Transaction),
		webhookEvents:      make(map[uint]models.WebhookEvent),
		nextUserID:         1,
		nextModuleID:       1,
		nextFragmentID:     1,
		nextMembershipID:   1,
		nextTransactionID:  1,
		nextWebhookEventID: 1,
	}
}

// NewMemoryRepositories creates an empty in-memory repository set.
func NewMemoryRepositories() *Repositories {
	s := newMemoryStore()
	return &Repositories{
		Users:         &memoryUserRepository{s},
		Modules:       &memoryModuleRepository{s},
		Fragments:     &memoryFragmentRepository{s},
		Memberships:   &memoryMembershipRepository{s},
		Transactions:  &memoryTransactionRepository{s},
		WebhookEvents: &memoryWebhookEventRepository{s},
	}
}

// NewMemoryRepositoriesWithDemoData creates an in-memory repository set
// seeded with the demo account used by the placeholder current-user
// resolver.
func NewMemoryRepositoriesWithDemoData() *Repositories {
	repos := NewMemoryRepositories()
	SeedDemoData(repos)
	return repos
}

// --- users ---

type memoryUserRepository struct {
	s *memoryStore
}

func (r *memoryUserRepository) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	user.ID = r.s.nextUserID
	r.s.nextUserID++
	user.ApplyCreateDefaults()
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) GetByEmail(email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// Linear scan, acceptable at this scale. First match wins.
	ids := make([]uint, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u := r.s.users[id]
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) Update(id uint, patch models.UserPatch) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.FlameMarkID != nil {
		u.FlameMarkID = *patch.FlameMarkID
	}
	if patch.Suscoins != nil {
		u.Suscoins = *patch.Suscoins
	}
	if patch.SubscriptionType != nil {
		u.SubscriptionType = *patch.SubscriptionType
	}
	if patch.StripeCustomerID != nil {
		u.StripeCustomerID = *patch.StripeCustomerID
	}
	if patch.StripeSubscriptionID != nil {
		u.StripeSubscriptionID = *patch.StripeSubscriptionID
	}
	r.s.users[id] = u
	return &u, nil
}

func (r *memoryUserRepository) AdjustBalance(id uint, entry *models.Transaction) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return 0, ErrNotFound
	}
	newBalance := u.Suscoins + entry.SuscoinsChanged
	if entry.SuscoinsChanged < 0 && newBalance < 0 {
		return 0, ErrInsufficientFunds
	}

	// Balance and journal move together under the store mutex.
	u.Suscoins = newBalance
	r.s.users[id] = u

	entry.UserID = id
	entry.ID = r.s.nextTransactionID
	r.s.nextTransactionID++
	entry.CreatedAt = time.Now()
	r.s.transactions[entry.ID] = *entry
	return newBalance, nil
}

// --- modules ---

type memoryModuleRepository struct {
	s *memoryStore
}

func (r *memoryModuleRepository) Create(module *models.Module) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	module.ID = r.s.nextModuleID
	r.s.nextModuleID++
	module.ApplyCreateDefaults()
	module.CreatedAt = time.Now()
	r.s.modules[module.ID] = *module
	return nil
}

func (r *memoryModuleRepository) GetByID(id uint) (*models.Module, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.modules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *memoryModuleRepository) GetByUserID(userID uint) ([]models.Module, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Module
	for _, m := range r.s.modules {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryModuleRepository) Update(id uint, patch models.ModulePatch) (*models.Module, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.modules[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Glyph != nil {
		m.Glyph = *patch.Glyph
	}
	if patch.Core != nil {
		m.Core = *patch.Core
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.SpeedIndex != nil {
		m.SpeedIndex = *patch.SpeedIndex
	}
	if patch.PersonalDocument != nil {
		m.PersonalDocument = *patch.PersonalDocument
	}
	if patch.MemoryCapacity != nil {
		m.MemoryCapacity = *patch.MemoryCapacity
	}
	if patch.MemoryUsed != nil {
		m.MemoryUsed = *patch.MemoryUsed
	}
	r.s.modules[id] = m
	return &m, nil
}

func (r *memoryModuleRepository) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.modules, id)
	return nil
}

// --- fragments ---

type memoryFragmentRepository struct {
	s *memoryStore
}

func (r *memoryFragmentRepository) Create(fragment *models.Fragment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	fragment.ID = r.s.nextFragmentID
	r.s.nextFragmentID++
	fragment.ApplyCreateDefaults()
	fragment.CreatedAt = time.Now()
	r.s.fragments[fragment.ID] = *fragment
	return nil
}

func (r *memoryFragmentRepository) GetByID(id uint) (*models.Fragment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.fragments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *memoryFragmentRepository) GetByUserID(userID uint) ([]models.Fragment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Fragment
	for _, f := range r.s.fragments {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryFragmentRepository) Update(id uint, patch models.FragmentPatch) (*models.Fragment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.fragments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.ModuleID.Set {
		f.ModuleID = patch.ModuleID.Value
	}
	if patch.FragmentID != nil {
		f.FragmentID = *patch.FragmentID
	}
	if patch.Type != nil {
		f.Type = *patch.Type
	}
	if patch.Author != nil {
		f.Author = *patch.Author
	}
	if patch.SpeedIndex != nil {
		f.SpeedIndex = *patch.SpeedIndex
	}
	if patch.AccessTier != nil {
		f.AccessTier = *patch.AccessTier
	}
	if patch.SealLevel != nil {
		f.SealLevel = *patch.SealLevel
	}
	if patch.EditRestriction != nil {
		f.EditRestriction = *patch.EditRestriction
	}
	if patch.FlameInput != nil {
		f.FlameInput = *patch.FlameInput
	}
	if patch.FlameOutput != nil {
		f.FlameOutput = *patch.FlameOutput
	}
	if patch.Status != nil {
		f.Status = *patch.Status
	}
	if patch.Metadata != nil {
		f.Metadata = *patch.Metadata
	}
	f.ApplySeal(patch.Status)
	r.s.fragments[id] = f
	return &f, nil
}

func (r *memoryFragmentRepository) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.fragments, id)
	return nil
}

// --- memberships ---

type memoryMembershipRepository struct {
	s *memoryStore
}

func (r *memoryMembershipRepository) Create(membership *models.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	membership.ID = r.s.nextMembershipID
	r.s.nextMembershipID++
	membership.ApplyCreateDefaults()
	membership.CreatedAt = time.Now()
	r.s.memberships[membership.ID] = *membership
	return nil
}

func (r *memoryMembershipRepository) GetByID(id uint) (*models.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.memberships[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *memoryMembershipRepository) GetByUserID(userID uint) ([]models.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Membership
	for _, m := range r.s.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryMembershipRepository) Update(id uint, patch models.MembershipPatch) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.memberships[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.StripeSubscriptionID != nil {
		m.StripeSubscriptionID = *patch.StripeSubscriptionID
	}
	if patch.ExpiresAt != nil {
		m.ExpiresAt = patch.ExpiresAt
	}
	r.s.memberships[id] = m
	return &m, nil
}

// --- transactions ---

type memoryTransactionRepository struct {
	s *memoryStore
}

func (r *memoryTransactionRepository) Create(transaction *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	transaction.ID = r.s.nextTransactionID
	r.s.nextTransactionID++
	transaction.CreatedAt = time.Now()
	r.s.transactions[transaction.ID] = *transaction
	return nil
}

func (r *memoryTransactionRepository) GetByUserID(userID uint) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Transaction
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- webhook events ---

type memoryWebhookEventRepository struct {
	s *memoryStore
}

func (r *memoryWebhookEventRepository) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.webhookEvents {
		if existing.Provider == event.Provider && existing.ProviderEventID == event.ProviderEventID {
			stored := existing
			return false, &stored, nil
		}
	}
	event.ID = r.s.nextWebhookEventID
	r.s.nextWebhookEventID++
	event.CreatedAt = time.Now()
	r.s.webhookEvents[event.ID] = *event
	stored := *event
	return true, &stored, nil
}

func (r *memoryWebhookEventRepository) MarkProcessed(id uint, processingError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.webhookEvents[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	ev.ProcessedAt = &now
	ev.ProcessingError = processingError
	r.s.webhookEvents[id] = ev
	return nil
}
