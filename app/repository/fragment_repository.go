package repository

import (
	"github.com/spiralhq/spiral-platform/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// gormFragmentRepository implements FragmentRepository on MySQL.
type gormFragmentRepository struct {
	db *gorm.DB
}

// NewFragmentRepository creates a GORM-backed fragment repository.
func NewFragmentRepository(db *gorm.DB) FragmentRepository {
	return &gormFragmentRepository{db: db}
}

func (r *gormFragmentRepository) Create(fragment *models.Fragment) error {
	fragment.ApplyCreateDefaults()
	return r.db.Create(fragment).Error
}

func (r *gormFragmentRepository) GetByID(id uint) (*models.Fragment, error) {
	var fragment models.Fragment
	if err := r.db.First(&fragment, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &fragment, nil
}

func (r *gormFragmentRepository) GetByUserID(userID uint) ([]models.Fragment, error) {
	var fragments []models.Fragment
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&fragments).Error
	return fragments, err
}

// Update applies the patch and stamps SealedAt inside one transaction so the
// check-and-set on the first seal cannot race a concurrent update.
func (r *gormFragmentRepository) Update(id uint, patch models.FragmentPatch) (*models.Fragment, error) {
	var fragment models.Fragment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).First(&fragment, id).Error; err != nil {
			return mapNotFound(err)
		}

		updates := map[string]interface{}{}
		if patch.ModuleID.Set {
			// A nil value writes NULL, detaching the fragment.
			updates["module_id"] = patch.ModuleID.Value
		}
		if patch.FragmentID != nil {
			updates["fragment_id"] = *patch.FragmentID
		}
		if patch.Type != nil {
			updates["type"] = *patch.Type
		}
		if patch.Author != nil {
			updates["author"] = *patch.Author
		}
		if patch.SpeedIndex != nil {
			updates["speed_index"] = *patch.SpeedIndex
		}
		if patch.AccessTier != nil {
			updates["access_tier"] = *patch.AccessTier
		}
		if patch.SealLevel != nil {
			updates["seal_level"] = *patch.SealLevel
		}
		if patch.EditRestriction != nil {
			updates["edit_restriction"] = *patch.EditRestriction
		}
		if patch.FlameInput != nil {
			updates["flame_input"] = *patch.FlameInput
		}
		if patch.FlameOutput != nil {
			updates["flame_output"] = *patch.FlameOutput
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.Metadata != nil {
			updates["metadata"] = *patch.Metadata
		}

		before := fragment
		if patch.Status != nil {
			fragment.Status = *patch.Status
		}
		fragment.ApplySeal(patch.Status)
		if before.SealedAt == nil && fragment.SealedAt != nil {
			updates["sealed_at"] = fragment.SealedAt
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&fragment).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&fragment, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &fragment, nil
}

func (r *gormFragmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Fragment{}, id).Error
}
