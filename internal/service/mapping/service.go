package mapping

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	"github.com/carelink/carelink-api/pkg/errors"
)

// Error messages shared with the HTTP layer. The patient message
// deliberately conflates "does not exist" with "not yours" so callers
// cannot probe for other users' patients.
const (
	msgPatientNotFound = "patient not found or not authorized"
	msgDoctorNotFound  = "doctor not found"
	msgMappingNotFound = "mapping not found"
	msgAlreadyAssigned = "this doctor is already assigned to the patient"
	msgNotAuthorized   = "not authorized to remove this mapping"
)

type MappingService interface {
	Assign(ctx context.Context, req *model.CreateMappingRequest, actor model.Actor) (*model.Mapping, error)
	ListAll(ctx context.Context) ([]*model.ExpandedMapping, error)
	ListForPatient(ctx context.Context, patientID string, actor model.Actor) ([]*model.ExpandedMapping, error)
	Remove(ctx context.Context, mappingID string, actor model.Actor) error
}

type Service struct {
	repo        repository.MappingRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
}

func NewService(repo repository.MappingRepository, patientRepo repository.PatientRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
	}
}

// Assign links a doctor to a patient owned by the actor. The duplicate
// check runs twice: once here, and again at the store's unique index so
// that concurrent assigns of the same pair cannot both commit.
func (s *Service) Assign(ctx context.Context, req *model.CreateMappingRequest, actor model.Actor) (*model.Mapping, error) {
	if req.PatientID == "" || req.DoctorID == "" {
		return nil, errors.Validation("please provide both patient and doctor IDs", nil)
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		return nil, errors.Validation("invalid patient ID", err)
	}
	doctorID, err := primitive.ObjectIDFromHex(req.DoctorID)
	if err != nil {
		return nil, errors.Validation("invalid doctor ID", err)
	}

	if _, err := s.patientRepo.GetOwned(ctx, patientID, actor.ID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgPatientNotFound, err)
		}
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgDoctorNotFound, err)
		}
		return nil, fmt.Errorf("failed to look up doctor: %w", err)
	}

	if _, err := s.repo.GetByPair(ctx, patientID, doctorID); err == nil {
		return nil, errors.Conflict(msgAlreadyAssigned, nil)
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing mapping: %w", err)
	}

	mapping := &model.Mapping{
		PatientID: patientID,
		DoctorID:  doctorID,
		CreatedBy: actor.ID,
	}
	if err := s.repo.Create(ctx, mapping); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict(msgAlreadyAssigned, err)
		}
		return nil, fmt.Errorf("failed to create mapping: %w", err)
	}

	return mapping, nil
}

// ListAll returns every mapping expanded with patient (name, age, gender)
// and doctor (name, specialization) projections. This is a trusted
// internal view with no ownership filter.
func (s *Service) ListAll(ctx context.Context) ([]*model.ExpandedMapping, error) {
	mappings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	expanded := make([]*model.ExpandedMapping, 0, len(mappings))
	for _, m := range mappings {
		e := &model.ExpandedMapping{
			ID:        m.ID,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		}

		if patient, err := s.patientRepo.Get(ctx, m.PatientID); err == nil {
			e.Patient = &model.PatientRef{
				ID:     patient.ID,
				Name:   patient.Name,
				Age:    patient.Age,
				Gender: patient.Gender,
			}
		} else if !stderrors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to expand patient %s: %w", m.PatientID.Hex(), err)
		}

		if doctor, err := s.doctorRepo.Get(ctx, m.DoctorID); err == nil {
			e.Doctor = &model.DoctorRef{
				ID:             doctor.ID,
				Name:           doctor.Name,
				Specialization: doctor.Specialization,
			}
		} else if !stderrors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to expand doctor %s: %w", m.DoctorID.Hex(), err)
		}

		expanded = append(expanded, e)
	}

	return expanded, nil
}

// ListForPatient returns the mappings of one of the actor's patients, each
// expanded with the full doctor projection.
func (s *Service) ListForPatient(ctx context.Context, patientID string, actor model.Actor) ([]*model.ExpandedMapping, error) {
	pid, err := primitive.ObjectIDFromHex(patientID)
	if err != nil {
		return nil, errors.Validation("invalid patient ID", err)
	}

	patient, err := s.patientRepo.GetOwned(ctx, pid, actor.ID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgPatientNotFound, err)
		}
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	mappings, err := s.repo.ListByPatient(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	patientRef := &model.PatientRef{
		ID:     patient.ID,
		Name:   patient.Name,
		Age:    patient.Age,
		Gender: patient.Gender,
	}

	expanded := make([]*model.ExpandedMapping, 0, len(mappings))
	for _, m := range mappings {
		e := &model.ExpandedMapping{
			ID:        m.ID,
			Patient:   patientRef,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		}

		if doctor, err := s.doctorRepo.Get(ctx, m.DoctorID); err == nil {
			e.Doctor = &model.DoctorRef{
				ID:             doctor.ID,
				Name:           doctor.Name,
				Specialization: doctor.Specialization,
				Contact:        doctor.Contact,
				AvailableDays:  doctor.AvailableDays,
			}
		} else if !stderrors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to expand doctor %s: %w", m.DoctorID.Hex(), err)
		}

		expanded = append(expanded, e)
	}

	return expanded, nil
}

// Remove deletes a mapping. Authorization follows the patient side: the
// actor must own the referenced patient or be an admin. When the patient
// record no longer exists the ownership check cannot be evaluated, so the
// mapping is admin-only-deletable.
func (s *Service) Remove(ctx context.Context, mappingID string, actor model.Actor) error {
	id, err := primitive.ObjectIDFromHex(mappingID)
	if err != nil {
		return errors.Validation("invalid mapping ID", err)
	}

	mapping, err := s.repo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound(msgMappingNotFound, err)
		}
		return fmt.Errorf("failed to look up mapping: %w", err)
	}

	patient, err := s.patientRepo.Get(ctx, mapping.PatientID)
	switch {
	case err == nil:
		if !actor.CanModify(patient.CreatedBy) {
			return errors.Unauthorized(msgNotAuthorized, nil)
		}
	case stderrors.Is(err, repository.ErrNotFound):
		if actor.Role != model.RoleAdmin {
			return errors.Unauthorized(msgNotAuthorized, err)
		}
	default:
		return fmt.Errorf("failed to look up patient: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound(msgMappingNotFound, err)
		}
		return fmt.Errorf("failed to delete mapping: %w", err)
	}

	return nil
}
