package services

import (
	"errors"

	"settlement-service/internal/models"

	"gorm.io/gorm"
)

// NetworkService reads the sponsor chain. It never mutates the graph.
type NetworkService struct {
	DB *gorm.DB
}

func NewNetworkService(db *gorm.DB) *NetworkService {
	return &NetworkService{DB: db}
}

type UplineMember struct {
	UserId string
	Level  int
}

func (s *NetworkService) UplineMembers(userID string, maxLevels int) ([]UplineMember, error) {
	return s.UplineMembersTx(s.DB, userID, maxLevels)
}

// UplineMembersTx walks sponsor_id upward from the given user, level 1
// being the direct sponsor. The walk stops at the chain end or maxLevels.
// A repeated id means corrupted data and returns ErrChainCycle rather
// than a truncated chain.
func (s *NetworkService) UplineMembersTx(tx *gorm.DB, userID string, maxLevels int) ([]UplineMember, error) {
	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	visited := map[string]bool{user.ID: true}
	upline := make([]UplineMember, 0, maxLevels)

	current := user.SponsorId
	for level := 1; level <= maxLevels && current != nil && *current != ""; level++ {
		if visited[*current] {
			return nil, ErrChainCycle
		}
		visited[*current] = true

		var sponsor models.User
		if err := tx.Where("id = ?", *current).First(&sponsor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling sponsor reference ends the chain.
				break
			}
			return nil, err
		}

		upline = append(upline, UplineMember{UserId: sponsor.ID, Level: level})
		current = sponsor.SponsorId
	}

	return upline, nil
}
