package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekday is a day-of-week token as stored on a doctor's availability.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

func (w Weekday) Valid() bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

type Doctor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Specialization string             `bson:"specialization" json:"specialization"`
	Contact        string             `bson:"contact" json:"contact"`
	AvailableDays  []Weekday          `bson:"availableDays" json:"availableDays"`
	CreatedBy      primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

type CreateDoctorRequest struct {
	Name           string    `json:"name" binding:"required,max=100"`
	Specialization string    `json:"specialization" binding:"required"`
	Contact        string    `json:"contact" binding:"required"`
	AvailableDays  []Weekday `json:"availableDays" binding:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
}

type UpdateDoctorRequest struct {
	Name           *string   `json:"name" binding:"omitempty,max=100"`
	Specialization *string   `json:"specialization"`
	Contact        *string   `json:"contact"`
	AvailableDays  []Weekday `json:"availableDays" binding:"omitempty,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
}
