package services

import (
	"errors"

	"settlement-service/internal/models"

	"gorm.io/gorm"
)

// PlanService is a read-only catalog; plans are managed out of band.
type PlanService struct {
	DB *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{DB: db}
}

func (s *PlanService) ActivePlans() ([]models.Plan, error) {
	var plans []models.Plan
	err := s.DB.Where("active = ?", true).Order("principal_amount ASC").Find(&plans).Error
	return plans, err
}

func (s *PlanService) GetPlan(planID string) (*models.Plan, error) {
	var plan models.Plan
	if err := s.DB.Where("id = ?", planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}
