package repository

import (
	"errors"
	"fmt"

	"github.com/camden-git/castingvitrine/models"
	"gorm.io/gorm"
)

// TalentRepository handles database operations for the cached talent record set
type TalentRepository struct {
	DB *gorm.DB
}

// NewTalentRepository creates a new instance of TalentRepository
func NewTalentRepository(db *gorm.DB) *TalentRepository {
	return &TalentRepository{DB: db}
}

// ReplaceAll swaps the cached record set for talents inside one transaction. Position is
// rewritten from slice order so ListAll returns the records in source order.
func (r *TalentRepository) ReplaceAll(talents []models.Talent) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Talent{}).Error; err != nil {
			return fmt.Errorf("failed to clear talents: %w", err)
		}
		if len(talents) == 0 {
			return nil
		}
		rows := make([]models.Talent, len(talents))
		copy(rows, talents)
		for i := range rows {
			rows[i].Position = i
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to insert %d talents: %w", len(rows), err)
		}
		return nil
	})
}

// ListAll retrieves every cached talent in source order
func (r *TalentRepository) ListAll() ([]models.Talent, error) {
	var talents []models.Talent
	err := r.DB.Order("position ASC").Find(&talents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list talents: %w", err)
	}
	return talents, nil
}

// GetByID retrieves a talent by its identifier
func (r *TalentRepository) GetByID(id string) (*models.Talent, error) {
	var talent models.Talent
	err := r.DB.First(&talent, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get talent by ID %s: %w", id, err)
	}
	return &talent, nil
}

// Count returns the number of cached talents
func (r *TalentRepository) Count() (int64, error) {
	var n int64
	if err := r.DB.Model(&models.Talent{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count talents: %w", err)
	}
	return n, nil
}
