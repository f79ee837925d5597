package models

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ridewise/ridewise-backend/internal/utils"
)

// Passenger is a rider profile, referenced from bookings by PassengerID.
type Passenger struct {
	gorm.Model

	PassengerID string     `json:"passenger_id" gorm:"uniqueIndex;size:32"`
	Name        string     `json:"name"`
	Email       string     `json:"email" gorm:"uniqueIndex;size:255"`
	Phone       string     `json:"phone" gorm:"size:20"`
	Status      UserStatus `json:"status" gorm:"type:varchar(16);default:'active'"`
}

func (p *Passenger) BeforeCreate(tx *gorm.DB) error {
	if p.PassengerID == "" {
		p.PassengerID = utils.GenerateEntityID("PS")
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Status == "" {
		p.Status = UserActive
	}
	return nil
}
