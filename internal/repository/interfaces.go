package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
)

// Sentinel errors returned by all store implementations so services stay
// store-agnostic.
var (
	// ErrNotFound is returned when no record matches the given filter.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	// PatientRepository scopes reads and mutations by owner where an owner
	// id is given: Get/Update/Delete with a non-nil owner must not touch
	// records created by anyone else.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.Patient, error)
		GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*model.Patient, error)
		ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id, owner primitive.ObjectID) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id primitive.ObjectID) error
	}

	MappingRepository interface {
		Create(ctx context.Context, mapping *model.Mapping) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.Mapping, error)
		GetByPair(ctx context.Context, patientID, doctorID primitive.ObjectID) (*model.Mapping, error)
		List(ctx context.Context) ([]*model.Mapping, error)
		ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Mapping, error)
		Delete(ctx context.Context, id primitive.ObjectID) error
	}
)
