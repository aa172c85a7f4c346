package repository

import (
	"errors"

	"github.com/spiralhq/spiral-platform/app/models"
	"gorm.io/gorm"
)

// gormUserRepository implements UserRepository on MySQL.
type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(user *models.User) error {
	user.ApplyCreateDefaults()
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *gormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *gormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *gormUserRepository) Update(id uint, patch models.UserPatch) (*models.User, error) {
	updates := map[string]interface{}{}
	if patch.DisplayName != nil {
		updates["display_name"] = *patch.DisplayName
	}
	if patch.FlameMarkID != nil {
		updates["flame_mark_id"] = *patch.FlameMarkID
	}
	if patch.Suscoins != nil {
		updates["suscoins"] = *patch.Suscoins
	}
	if patch.SubscriptionType != nil {
		updates["subscription_type"] = *patch.SubscriptionType
	}
	if patch.StripeCustomerID != nil {
		updates["stripe_customer_id"] = *patch.StripeCustomerID
	}
	if patch.StripeSubscriptionID != nil {
		updates["stripe_subscription_id"] = *patch.StripeSubscriptionID
	}

	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return mapNotFound(err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AdjustBalance serializes the ledger read-modify-write against concurrent
// replicas: the user row is locked for update, then the balance write and
// the journal append commit in the same transaction.
func (r *gormUserRepository) AdjustBalance(id uint, entry *models.Transaction) (int, error) {
	var balance int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(lockForUpdate()).First(&user, id).Error; err != nil {
			return mapNotFound(err)
		}

		newBalance := user.Suscoins + entry.SuscoinsChanged
		if entry.SuscoinsChanged < 0 && newBalance < 0 {
			return ErrInsufficientFunds
		}
		if err := tx.Model(&user).Update("suscoins", newBalance).Error; err != nil {
			return err
		}

		entry.UserID = id
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		balance = newBalance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// mapNotFound translates the GORM miss into the storage-agnostic sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
