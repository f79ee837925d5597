package models

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ridewise/ridewise-backend/internal/utils"
)

// UserStatus covers driver and passenger account states. A driver becomes
// active once verification clears; inactive drivers cannot publish schedules.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// Driver is a verified (or pending) driver profile.
type Driver struct {
	gorm.Model

	DriverID    string     `json:"driver_id" gorm:"uniqueIndex;size:32"`
	Name        string     `json:"name"`
	Email       string     `json:"email" gorm:"uniqueIndex;size:255"`
	Phone       string     `json:"phone" gorm:"uniqueIndex;size:20"`
	VehicleNo   string     `json:"vehicle_no" gorm:"uniqueIndex;size:20"`
	VehicleType string     `json:"vehicle_type" gorm:"size:50"`
	Status      UserStatus `json:"status" gorm:"type:varchar(16);default:'inactive'"`
	IsAvailable bool       `json:"is_available" gorm:"default:true"`
	Rating      float64    `json:"rating" gorm:"default:0"`
	RatingCount int        `json:"rating_count" gorm:"default:0"`
	TotalTrips  int        `json:"total_trips" gorm:"default:0"`
}

// BeforeCreate hook generates the DriverID and normalizes identifying fields.
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.DriverID == "" {
		d.DriverID = utils.GenerateEntityID("DR")
	}
	d.VehicleNo = strings.ToUpper(strings.ReplaceAll(d.VehicleNo, " ", ""))
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Status == "" {
		d.Status = UserInactive
	}
	return nil
}

// CanPublish reports whether the driver may create a new schedule.
func (d *Driver) CanPublish() bool {
	return d.Status == UserActive && d.IsAvailable
}

// FoldRating folds one trip score into the aggregate as a running average
// weighted by the number of ratings received so far.
func (d *Driver) FoldRating(trip float64) {
	d.Rating = (d.Rating*float64(d.RatingCount) + trip) / float64(d.RatingCount+1)
	d.RatingCount++
}
