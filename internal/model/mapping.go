package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mapping links exactly one patient to one doctor. The (patient, doctor)
// pair is unique across the collection; mappings are immutable once created.
type Mapping struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patient" json:"patient"`
	DoctorID  primitive.ObjectID `bson:"doctor" json:"doctor"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type CreateMappingRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	DoctorID  string `json:"doctorId" binding:"required"`
}

// PatientRef is the denormalized patient projection embedded in expanded
// mapping responses.
type PatientRef struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Age    int                `json:"age"`
	Gender Gender             `json:"gender"`
}

// DoctorRef is the denormalized doctor projection. Contact and
// availableDays are only populated on per-patient listings.
type DoctorRef struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Specialization string             `json:"specialization"`
	Contact        string             `json:"contact,omitempty"`
	AvailableDays  []Weekday          `json:"availableDays,omitempty"`
}

// ExpandedMapping is a mapping joined with projections of its referenced
// records. A projection is nil when the referenced record no longer exists.
type ExpandedMapping struct {
	ID        primitive.ObjectID `json:"id"`
	Patient   *PatientRef        `json:"patient"`
	Doctor    *DoctorRef         `json:"doctor"`
	CreatedBy primitive.ObjectID `json:"createdBy"`
	CreatedAt time.Time          `json:"createdAt"`
}
