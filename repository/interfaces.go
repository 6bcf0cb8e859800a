package repository

import (
	"github.com/camden-git/castingvitrine/models"
)

// TalentRepositoryInterface defines the methods for talent cache operations
type TalentRepositoryInterface interface {
	ReplaceAll(talents []models.Talent) error
	ListAll() ([]models.Talent, error)
	GetByID(id string) (*models.Talent, error)
	Count() (int64, error)
}

var _ TalentRepositoryInterface = (*TalentRepository)(nil)
