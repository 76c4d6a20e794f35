package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type Patient struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Age            int                `bson:"age" json:"age"`
	Gender         Gender             `bson:"gender" json:"gender"`
	Contact        string             `bson:"contact" json:"contact"`
	MedicalHistory string             `bson:"medicalHistory" json:"medicalHistory"`
	CreatedBy      primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

type CreatePatientRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Age            *int   `json:"age" binding:"required,min=0,max=120"`
	Gender         Gender `json:"gender" binding:"required,oneof=male female other"`
	Contact        string `json:"contact" binding:"required"`
	MedicalHistory string `json:"medicalHistory"`
}

// UpdatePatientRequest merges only the provided fields into the record.
type UpdatePatientRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=100"`
	Age            *int    `json:"age" binding:"omitempty,min=0,max=120"`
	Gender         *Gender `json:"gender" binding:"omitempty,oneof=male female other"`
	Contact        *string `json:"contact"`
	MedicalHistory *string `json:"medicalHistory"`
}
