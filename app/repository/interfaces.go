package repository

import (
	"errors"

	"github.com/spiralhq/spiral-platform/app/models"
)

// ErrNotFound is returned when a record id does not exist. Both storage
// backends translate their native miss into this sentinel so callers stay
// storage-agnostic.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned by UserRepository.Create when the email is
// already registered. The memory backend checks under its store mutex, the
// GORM backend translates the unique index violation.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInsufficientFunds is returned by AdjustBalance when a negative entry
// would overdraw the balance. Nothing is written in that case.
var ErrInsufficientFunds = errors.New("insufficient suscoin balance")

// UserRepository defines the interface for user-related storage operations.
// Users are never deleted in the current scope.
type UserRepository interface {
	// Create inserts the user, failing with ErrDuplicateEmail when the email
	// is already taken.
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	// GetByEmail returns the first user with the given email or ErrNotFound.
	GetByEmail(email string) (*models.User, error)
	Update(id uint, patch models.UserPatch) (*models.User, error)
	// AdjustBalance applies entry.SuscoinsChanged to the user's suscoin
	// balance and appends entry to the ledger journal, both in one storage
	// transaction: either the balance moves and the entry exists, or
	// neither. An overdraft fails with ErrInsufficientFunds. The GORM
	// backend locks the user row so concurrent replicas cannot lose
	// updates; the memory backend holds its store mutex across both writes.
	AdjustBalance(id uint, entry *models.Transaction) (int, error)
}

// ModuleRepository defines the interface for module-related storage operations.
type ModuleRepository interface {
	Create(module *models.Module) error
	GetByID(id uint) (*models.Module, error)
	GetByUserID(userID uint) ([]models.Module, error)
	Update(id uint, patch models.ModulePatch) (*models.Module, error)
	// Delete removes the record if present; deleting a nonexistent record
	// is a no-op, not an error.
	Delete(id uint) error
}

// FragmentRepository defines the interface for fragment-related storage
// operations. Update enforces the seal-stamp-once rule: the first patch that
// sets status to "sealed" stamps SealedAt, and no later patch overwrites it.
type FragmentRepository interface {
	Create(fragment *models.Fragment) error
	GetByID(id uint) (*models.Fragment, error)
	GetByUserID(userID uint) ([]models.Fragment, error)
	Update(id uint, patch models.FragmentPatch) (*models.Fragment, error)
	// Delete removes the record if present; deleting a nonexistent record
	// is a no-op, not an error.
	Delete(id uint) error
}

// MembershipRepository defines the interface for membership storage
// operations. Memberships are created by payment fulfillment only.
type MembershipRepository interface {
	Create(membership *models.Membership) error
	GetByID(id uint) (*models.Membership, error)
	GetByUserID(userID uint) ([]models.Membership, error)
	Update(id uint, patch models.MembershipPatch) (*models.Membership, error)
}

// TransactionRepository defines the interface for the append-only ledger
// journal. There is deliberately no update or delete.
type TransactionRepository interface {
	Create(transaction *models.Transaction) error
	GetByUserID(userID uint) ([]models.Transaction, error)
}

// WebhookEventRepository stores provider webhook deliveries keyed uniquely
// by (provider, provider event id) for idempotent processing.
type WebhookEventRepository interface {
	// CreateIfNotExists inserts the event unless one with the same provider
	// and provider event id already exists. It reports whether the event
	// was newly created and returns the stored record either way.
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories bundles all entity repositories behind one handle.
type Repositories struct {
	Users         UserRepository
	Modules       ModuleRepository
	Fragments     FragmentRepository
	Memberships   MembershipRepository
	Transactions  TransactionRepository
	WebhookEvents WebhookEventRepository
}
