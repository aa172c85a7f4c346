package repository

import (
	"github.com/spiralhq/spiral-platform/app/models"
	"gorm.io/gorm"
)

// gormMembershipRepository implements MembershipRepository on MySQL.
type gormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a GORM-backed membership repository.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &gormMembershipRepository{db: db}
}

func (r *gormMembershipRepository) Create(membership *models.Membership) error {
	membership.ApplyCreateDefaults()
	return r.db.Create(membership).Error
}

func (r *gormMembershipRepository) GetByID(id uint) (*models.Membership, error) {
	var membership models.Membership
	if err := r.db.First(&membership, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &membership, nil
}

func (r *gormMembershipRepository) GetByUserID(userID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&memberships).Error
	return memberships, err
}

func (r *gormMembershipRepository) Update(id uint, patch models.MembershipPatch) (*models.Membership, error) {
	updates := map[string]interface{}{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.StripeSubscriptionID != nil {
		updates["stripe_subscription_id"] = *patch.StripeSubscriptionID
	}
	if patch.ExpiresAt != nil {
		updates["expires_at"] = patch.ExpiresAt
	}

	var membership models.Membership
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&membership, id).Error; err != nil {
			return mapNotFound(err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&membership).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&membership, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
