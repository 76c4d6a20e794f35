package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	"github.com/carelink/carelink-api/pkg/errors"
)

const (
	msgDoctorNotFound  = "doctor not found"
	msgNotAuthorized   = "not authorized to modify this doctor"
	listCacheKey       = "doctors:all"
	cacheTTL           = 5 * time.Minute
	cacheSweepInterval = 10 * time.Minute
)

type DoctorService interface {
	CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest, actor model.Actor) (*model.Doctor, error)
	GetDoctor(ctx context.Context, id string) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]*model.Doctor, error)
	UpdateDoctor(ctx context.Context, id string, req *model.UpdateDoctorRequest, actor model.Actor) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, id string, actor model.Actor) error
}

// Service serves doctor records. Reads go through a process-local TTL
// cache; doctors are shared across all users, so cached entries carry no
// per-caller state.
type Service struct {
	repo  repository.DoctorRepository
	cache *cache.Cache
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cacheSweepInterval),
	}
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest, actor model.Actor) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Name:           req.Name,
		Specialization: req.Specialization,
		Contact:        req.Contact,
		AvailableDays:  req.AvailableDays,
		CreatedBy:      actor.ID,
	}
	if err := validateDoctor(doctor); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	s.cache.Delete(listCacheKey)
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id string) (*model.Doctor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Validation("invalid doctor ID", err)
	}

	if cached, ok := s.cache.Get(id); ok {
		return cached.(*model.Doctor), nil
	}

	doctor, err := s.repo.Get(ctx, oid)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgDoctorNotFound, err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	s.cache.SetDefault(id, doctor)
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	s.cache.SetDefault(listCacheKey, doctors)
	return doctors, nil
}

// UpdateDoctor reveals existence before authorization: a missing doctor is
// NotFound, an existing doctor the actor may not modify is Unauthorized.
func (s *Service) UpdateDoctor(ctx context.Context, id string, req *model.UpdateDoctorRequest, actor model.Actor) (*model.Doctor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Validation("invalid doctor ID", err)
	}

	doctor, err := s.repo.Get(ctx, oid)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgDoctorNotFound, err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if !actor.CanModify(doctor.CreatedBy) {
		return nil, errors.Unauthorized(msgNotAuthorized, nil)
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Contact != nil {
		doctor.Contact = *req.Contact
	}
	if req.AvailableDays != nil {
		doctor.AvailableDays = req.AvailableDays
	}

	if err := validateDoctor(doctor); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(msgDoctorNotFound, err)
		}
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}

	s.invalidate(id)
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id string, actor model.Actor) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.Validation("invalid doctor ID", err)
	}

	doctor, err := s.repo.Get(ctx, oid)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound(msgDoctorNotFound, err)
		}
		return fmt.Errorf("failed to get doctor: %w", err)
	}

	if !actor.CanModify(doctor.CreatedBy) {
		return errors.Unauthorized(msgNotAuthorized, nil)
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound(msgDoctorNotFound, err)
		}
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	s.invalidate(id)
	return nil
}

func (s *Service) invalidate(id string) {
	s.cache.Delete(id)
	s.cache.Delete(listCacheKey)
}

func validateDoctor(doctor *model.Doctor) error {
	switch {
	case doctor.Name == "":
		return errors.Validation("name is required", nil)
	case len(doctor.Name) > 100:
		return errors.Validation("name cannot exceed 100 characters", nil)
	case doctor.Specialization == "":
		return errors.Validation("specialization is required", nil)
	case doctor.Contact == "":
		return errors.Validation("contact is required", nil)
	case len(doctor.AvailableDays) == 0:
		return errors.Validation("available days are required", nil)
	}
	for _, day := range doctor.AvailableDays {
		if !day.Valid() {
			return errors.Validation(fmt.Sprintf("invalid weekday %q", day), nil)
		}
	}
	return nil
}
