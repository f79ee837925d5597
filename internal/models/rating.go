package models

import "gorm.io/gorm"

// Rating is the five-dimension trip rating a passenger submits after a
// completed booking. Average is the precomputed mean of the five dimensions;
// it is what gets folded into the driver's aggregate.
type Rating struct {
	gorm.Model

	PNR                 string  `json:"pnr" gorm:"uniqueIndex;size:16;not null"`
	DriverID            string  `json:"driver_id" gorm:"index;size:32;not null"`
	VehicleNo           string  `json:"vehicle_no" gorm:"size:20"`
	DriverBehavior      int     `json:"driver_behavior"`
	DrivingSkill        int     `json:"driving_skill"`
	VehicleCleanliness  int     `json:"vehicle_cleanliness"`
	Punctuality         int     `json:"punctuality"`
	OverallSatisfaction int     `json:"overall_satisfaction"`
	Average             float64 `json:"average"`
}

// ComputeAverage fills Average from the five dimensions.
func (r *Rating) ComputeAverage() {
	sum := r.DriverBehavior + r.DrivingSkill + r.VehicleCleanliness + r.Punctuality + r.OverallSatisfaction
	r.Average = float64(sum) / 5
}
