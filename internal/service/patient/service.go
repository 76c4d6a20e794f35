package patient

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	"github.com/carelink/carelink-api/pkg/errors"
)

const msgPatientNotFound = "patient not found"

type PatientService interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest, actor model.Actor) (*model.Patient, error)
	GetPatient(ctx context.Context, id string, actor model.Actor) (*model.Patient, error)
	ListPatients(ctx context.Context, actor model.Actor) ([]*model.Patient, error)
	UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest, actor model.Actor) (*model.Patient, error)
	DeletePatient(ctx context.Context, id string, actor model.Actor) error
}

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest, actor model.Actor) (*model.Patient, error) {
	patient := &model.Patient{
		Name:           req.Name,
		Age:            *req.Age,
		Gender:         req.Gender,
		Contact:        req.Contact,
		MedicalHistory: req.MedicalHistory,
		CreatedBy:      actor.ID,
	}
	if err := validatePatient(patient); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

// GetPatient resolves only records owned by the actor. A record owned by
// someone else answers NotFound, identical to a missing record.
func (s *Service) GetPatient(ctx context.Context, id string, actor model.Actor) (*model.Patient, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Validation("invalid patient ID", err)
	}

	patient, err := s.repo.GetOwned(ctx, oid, actor.ID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgPatientNotFound, err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context, actor model.Actor) ([]*model.Patient, error) {
	patients, err := s.repo.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest, actor model.Actor) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Contact != nil {
		patient.Contact = *req.Contact
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}

	if err := validatePatient(patient); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgPatientNotFound, err)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id string, actor model.Actor) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.Validation("invalid patient ID", err)
	}

	if err := s.repo.Delete(ctx, oid, actor.ID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound(msgPatientNotFound, err)
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func validatePatient(patient *model.Patient) error {
	switch {
	case patient.Name == "":
		return errors.Validation("name is required", nil)
	case len(patient.Name) > 100:
		return errors.Validation("name cannot exceed 100 characters", nil)
	case patient.Age < 0 || patient.Age > 120:
		return errors.Validation("age must be between 0 and 120", nil)
	case !patient.Gender.Valid():
		return errors.Validation("gender must be one of male, female, other", nil)
	case patient.Contact == "":
		return errors.Validation("contact is required", nil)
	}
	return nil
}
