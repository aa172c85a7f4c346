package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons.
// With a nil DB handle the factory serves the volatile in-memory backend
// (seeded with demo data); with a DB it serves the GORM-backed set.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories.
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		if f.db == nil {
			f.repos = NewMemoryRepositoriesWithDemoData()
			return
		}
		f.repos = NewGormRepositories(f.db)
	})
	return f.repos
}

// NewGormRepositories builds the full GORM-backed repository set.
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Modules:       NewModuleRepository(db),
		Fragments:     NewFragmentRepository(db),
		Memberships:   NewMembershipRepository(db),
		Transactions:  NewTransactionRepository(db),
		WebhookEvents: NewWebhookEventRepository(db),
	}
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory. A nil db
// selects the in-memory backend.
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory, initializing the
// in-memory backend if nothing was configured.
func GetGlobalFactory() *Factory {
	InitializeFactory(nil)
	return globalFactory
}
