package repository

import (
	"github.com/spiralhq/spiral-platform/app/models"
	"gorm.io/gorm"
)

// gormModuleRepository implements ModuleRepository on MySQL.
type gormModuleRepository struct {
	db *gorm.DB
}

// NewModuleRepository creates a GORM-backed module repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &gormModuleRepository{db: db}
}

func (r *gormModuleRepository) Create(module *models.Module) error {
	module.ApplyCreateDefaults()
	return r.db.Create(module).Error
}

func (r *gormModuleRepository) GetByID(id uint) (*models.Module, error) {
	var module models.Module
	if err := r.db.First(&module, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &module, nil
}

func (r *gormModuleRepository) GetByUserID(userID uint) ([]models.Module, error) {
	var modules []models.Module
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&modules).Error
	return modules, err
}

func (r *gormModuleRepository) Update(id uint, patch models.ModulePatch) (*models.Module, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Glyph != nil {
		updates["glyph"] = *patch.Glyph
	}
	if patch.Core != nil {
		updates["core"] = *patch.Core
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.SpeedIndex != nil {
		updates["speed_index"] = *patch.SpeedIndex
	}
	if patch.PersonalDocument != nil {
		updates["personal_document"] = *patch.PersonalDocument
	}
	if patch.MemoryCapacity != nil {
		updates["memory_capacity"] = *patch.MemoryCapacity
	}
	if patch.MemoryUsed != nil {
		updates["memory_used"] = *patch.MemoryUsed
	}

	var module models.Module
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&module, id).Error; err != nil {
			return mapNotFound(err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&module).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&module, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *gormModuleRepository) Delete(id uint) error {
	// Deleting a missing row affects zero rows, which matches the
	// documented no-op semantics.
	return r.db.Delete(&models.Module{}, id).Error
}
