package repository

import (
	"github.com/spiralhq/spiral-platform/app/models"
	"gorm.io/gorm"
)

// gormTransactionRepository implements TransactionRepository on MySQL.
// The ledger journal is append-only, so only Create and scoped reads exist.
type gormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a GORM-backed transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &gormTransactionRepository{db: db}
}

func (r *gormTransactionRepository) Create(transaction *models.Transaction) error {
	return r.db.Create(transaction).Error
}

func (r *gormTransactionRepository) GetByUserID(userID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&transactions).Error
	return transactions, err
}
