// Package repositorytest provides in-memory repository implementations for
// service tests. They mirror the mongodb implementations' contract,
// including the unique (patient, doctor) index and owner-scoped filters.
package repositorytest

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
)

type UserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[primitive.ObjectID]*model.User)}
}

func (r *UserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = user
	return nil
}

func (r *UserRepo) Get(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type PatientRepo struct {
	mu       sync.Mutex
	patients map[primitive.ObjectID]*model.Patient
}

func NewPatientRepo() *PatientRepo {
	return &PatientRepo{patients: make(map[primitive.ObjectID]*model.Patient)}
}

func (r *PatientRepo) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	patient.ID = primitive.NewObjectID()
	patient.CreatedAt = time.Now().UTC()
	r.patients[patient.ID] = patient
	return nil
}

func (r *PatientRepo) Get(_ context.Context, id primitive.ObjectID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	patient, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return patient, nil
}

func (r *PatientRepo) GetOwned(_ context.Context, id, owner primitive.ObjectID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	patient, ok := r.patients[id]
	if !ok || patient.CreatedBy != owner {
		return nil, repository.ErrNotFound
	}
	return patient, nil
}

func (r *PatientRepo) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	patients := make([]*model.Patient, 0)
	for _, p := range r.patients {
		if p.CreatedBy == owner {
			patients = append(patients, p)
		}
	}
	return patients, nil
}

func (r *PatientRepo) Update(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.patients[patient.ID]
	if !ok || existing.CreatedBy != patient.CreatedBy {
		return repository.ErrNotFound
	}
	r.patients[patient.ID] = patient
	return nil
}

func (r *PatientRepo) Delete(_ context.Context, id, owner primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	patient, ok := r.patients[id]
	if !ok || patient.CreatedBy != owner {
		return repository.ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

// Remove deletes a patient regardless of owner, for orphaned-reference
// test setups.
func (r *PatientRepo) Remove(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.patients, id)
}

type DoctorRepo struct {
	mu      sync.Mutex
	doctors map[primitive.ObjectID]*model.Doctor
}

func NewDoctorRepo() *DoctorRepo {
	return &DoctorRepo{doctors: make(map[primitive.ObjectID]*model.Doctor)}
}

func (r *DoctorRepo) Create(_ context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doctor.ID = primitive.NewObjectID()
	doctor.CreatedAt = time.Now().UTC()
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *DoctorRepo) Get(_ context.Context, id primitive.ObjectID) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doctor, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doctor, nil
}

func (r *DoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doctors := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		doctors = append(doctors, d)
	}
	return doctors, nil
}

func (r *DoctorRepo) Update(_ context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doctors[doctor.ID]; !ok {
		return repository.ErrNotFound
	}
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *DoctorRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.doctors, id)
	return nil
}

type MappingRepo struct {
	mu       sync.Mutex
	mappings map[primitive.ObjectID]*model.Mapping
}

func NewMappingRepo() *MappingRepo {
	return &MappingRepo{mappings: make(map[primitive.ObjectID]*model.Mapping)}
}

func (r *MappingRepo) Create(_ context.Context, mapping *model.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.mappings {
		if m.PatientID == mapping.PatientID && m.DoctorID == mapping.DoctorID {
			return repository.ErrDuplicate
		}
	}
	mapping.ID = primitive.NewObjectID()
	mapping.CreatedAt = time.Now().UTC()
	r.mappings[mapping.ID] = mapping
	return nil
}

func (r *MappingRepo) Get(_ context.Context, id primitive.ObjectID) (*model.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mapping, ok := r.mappings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return mapping, nil
}

func (r *MappingRepo) GetByPair(_ context.Context, patientID, doctorID primitive.ObjectID) (*model.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.mappings {
		if m.PatientID == patientID && m.DoctorID == doctorID {
			return m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MappingRepo) List(_ context.Context) ([]*model.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mappings := make([]*model.Mapping, 0, len(r.mappings))
	for _, m := range r.mappings {
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func (r *MappingRepo) ListByPatient(_ context.Context, patientID primitive.ObjectID) ([]*model.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mappings := make([]*model.Mapping, 0)
	for _, m := range r.mappings {
		if m.PatientID == patientID {
			mappings = append(mappings, m)
		}
	}
	return mappings, nil
}

func (r *MappingRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.mappings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.mappings, id)
	return nil
}
