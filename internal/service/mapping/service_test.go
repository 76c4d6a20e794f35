package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	"github.com/carelink/carelink-api/internal/repository/repositorytest"
	"github.com/carelink/carelink-api/pkg/errors"
)

type fixture struct {
	svc      *Service
	patients *repositorytest.PatientRepo
	doctors  *repositorytest.DoctorRepo
	mappings *repositorytest.MappingRepo
}

func newFixture() *fixture {
	patients := repositorytest.NewPatientRepo()
	doctors := repositorytest.NewDoctorRepo()
	mappings := repositorytest.NewMappingRepo()
	return &fixture{
		svc:      NewService(mappings, patients, doctors),
		patients: patients,
		doctors:  doctors,
		mappings: mappings,
	}
}

func (f *fixture) createPatient(t *testing.T, owner model.Actor) *model.Patient {
	t.Helper()
	p := &model.Patient{
		Name:      "Jo",
		Age:       30,
		Gender:    model.GenderFemale,
		Contact:   "555",
		CreatedBy: owner.ID,
	}
	require.NoError(t, f.patients.Create(context.Background(), p))
	return p
}

func (f *fixture) createDoctor(t *testing.T, owner model.Actor) *model.Doctor {
	t.Helper()
	d := &model.Doctor{
		Name:           "Dr. X",
		Specialization: "Cardio",
		Contact:        "555",
		AvailableDays:  []model.Weekday{model.Monday},
		CreatedBy:      owner.ID,
	}
	require.NoError(t, f.doctors.Create(context.Background(), d))
	return d
}

func newActor(role model.Role) model.Actor {
	return model.Actor{ID: primitive.NewObjectID(), Role: role}
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	userA := newActor(model.RoleUser)
	userB := newActor(model.RoleUser)

	t.Run("creates mapping for owned patient", func(t *testing.T) {
		f := newFixture()
		p := f.createPatient(t, userA)
		d := f.createDoctor(t, userB)

		created, err := f.svc.Assign(ctx, &model.CreateMappingRequest{
			PatientID: p.ID.Hex(),
			DoctorID:  d.ID.Hex(),
		}, userA)
		require.NoError(t, err)
		assert.Equal(t, p.ID, created.PatientID)
		assert.Equal(t, d.ID, created.DoctorID)
		assert.Equal(t, userA.ID, created.CreatedBy)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("missing ids", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Assign(ctx, &model.CreateMappingRequest{DoctorID: primitive.NewObjectID().Hex()}, userA)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))

		_, err = f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: primitive.NewObjectID().Hex()}, userA)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})

	t.Run("someone else's patient reads as not found", func(t *testing.T) {
		f := newFixture()
		p := f.createPatient(t, userA)
		d := f.createDoctor(t, userB)

		_, err := f.svc.Assign(ctx, &model.CreateMappingRequest{
			PatientID: p.ID.Hex(),
			DoctorID:  d.ID.Hex(),
		}, userB)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrNotFound), "must be 404, not 401")
		appErr, _ := errors.As(err)
		assert.Equal(t, "patient not found or not authorized", appErr.Message)
	})

	t.Run("absent doctor", func(t *testing.T) {
		f := newFixture()
		p := f.createPatient(t, userA)

		_, err := f.svc.Assign(ctx, &model.CreateMappingRequest{
			PatientID: p.ID.Hex(),
			DoctorID:  primitive.NewObjectID().Hex(),
		}, userA)
		assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	})

	t.Run("duplicate pair conflicts", func(t *testing.T) {
		f := newFixture()
		p := f.createPatient(t, userA)
		d := f.createDoctor(t, userB)
		req := &model.CreateMappingRequest{PatientID: p.ID.Hex(), DoctorID: d.ID.Hex()}

		_, err := f.svc.Assign(ctx, req, userA)
		require.NoError(t, err)

		_, err = f.svc.Assign(ctx, req, userA)
		assert.True(t, errors.IsCode(err, errors.ErrConflict))
	})

	t.Run("store-level duplicate surfaces as conflict", func(t *testing.T) {
		// Simulates the losing side of a concurrent assign: the pair is
		// absent at pre-check time but present when the insert hits the
		// unique index.
		f := newFixture()
		p := f.createPatient(t, userA)
		d := f.createDoctor(t, userB)

		svc := NewService(&racingMappingRepo{MappingRepo: f.mappings}, f.patients, f.doctors)
		_, err := svc.Assign(ctx, &model.CreateMappingRequest{
			PatientID: p.ID.Hex(),
			DoctorID:  d.ID.Hex(),
		}, userA)
		assert.True(t, errors.IsCode(err, errors.ErrConflict))
	})
}

// racingMappingRepo hides existing pairs from GetByPair, so the duplicate
// pre-check always passes and the insert collides with the index instead.
type racingMappingRepo struct {
	*repositorytest.MappingRepo
}

func (r *racingMappingRepo) GetByPair(ctx context.Context, patientID, doctorID primitive.ObjectID) (*model.Mapping, error) {
	if _, err := r.MappingRepo.GetByPair(ctx, patientID, doctorID); err != nil {
		return nil, err
	}
	// Pair exists, but pretend we raced past the check before it landed.
	return nil, repository.ErrNotFound
}

func TestListAll(t *testing.T) {
	ctx := context.Background()
	userA := newActor(model.RoleUser)

	f := newFixture()
	p1 := f.createPatient(t, userA)
	p2 := f.createPatient(t, userA)
	d := f.createDoctor(t, userA)

	_, err := f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: p1.ID.Hex(), DoctorID: d.ID.Hex()}, userA)
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: p2.ID.Hex(), DoctorID: d.ID.Hex()}, userA)
	require.NoError(t, err)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	for _, e := range all {
		require.NotNil(t, e.Patient)
		require.NotNil(t, e.Doctor)
		assert.Equal(t, "Dr. X", e.Doctor.Name)
		assert.Equal(t, "Cardio", e.Doctor.Specialization)
		// The flat view carries only the narrow doctor projection.
		assert.Empty(t, e.Doctor.Contact)
		assert.Empty(t, e.Doctor.AvailableDays)
		assert.Equal(t, 30, e.Patient.Age)
	}
}

func TestListAllOrphanedReferences(t *testing.T) {
	ctx := context.Background()
	userA := newActor(model.RoleUser)

	f := newFixture()
	p := f.createPatient(t, userA)
	d := f.createDoctor(t, userA)
	_, err := f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: p.ID.Hex(), DoctorID: d.ID.Hex()}, userA)
	require.NoError(t, err)

	f.patients.Remove(p.ID)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].Patient)
	assert.NotNil(t, all[0].Doctor)
}

func TestListForPatient(t *testing.T) {
	ctx := context.Background()
	userA := newActor(model.RoleUser)
	userB := newActor(model.RoleUser)

	f := newFixture()
	p := f.createPatient(t, userA)
	d1 := f.createDoctor(t, userA)
	d2 := f.createDoctor(t, userA)
	other := f.createPatient(t, userA)

	_, err := f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: p.ID.Hex(), DoctorID: d1.ID.Hex()}, userA)
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: p.ID.Hex(), DoctorID: d2.ID.Hex()}, userA)
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: other.ID.Hex(), DoctorID: d1.ID.Hex()}, userA)
	require.NoError(t, err)

	t.Run("returns only that patient's mappings with full doctor projection", func(t *testing.T) {
		listed, err := f.svc.ListForPatient(ctx, p.ID.Hex(), userA)
		require.NoError(t, err)
		require.Len(t, listed, 2)

		all, err := f.svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		for _, e := range listed {
			assert.Equal(t, p.ID, e.Patient.ID)
			require.NotNil(t, e.Doctor)
			assert.Equal(t, "555", e.Doctor.Contact)
			assert.Equal(t, []model.Weekday{model.Monday}, e.Doctor.AvailableDays)
		}
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := f.svc.ListForPatient(ctx, p.ID.Hex(), userB)
		assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	})

	t.Run("unknown patient gets not found", func(t *testing.T) {
		_, err := f.svc.ListForPatient(ctx, primitive.NewObjectID().Hex(), userA)
		assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	userA := newActor(model.RoleUser)
	userB := newActor(model.RoleUser)
	admin := newActor(model.RoleAdmin)

	assign := func(t *testing.T, f *fixture) *model.Mapping {
		t.Helper()
		p := f.createPatient(t, userA)
		d := f.createDoctor(t, userB)
		m, err := f.svc.Assign(ctx, &model.CreateMappingRequest{PatientID: p.ID.Hex(), DoctorID: d.ID.Hex()}, userA)
		require.NoError(t, err)
		return m
	}

	t.Run("patient owner can remove", func(t *testing.T) {
		f := newFixture()
		m := assign(t, f)

		require.NoError(t, f.svc.Remove(ctx, m.ID.Hex(), userA))

		all, err := f.svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("non-owner non-admin is unauthorized", func(t *testing.T) {
		f := newFixture()
		m := assign(t, f)

		err := f.svc.Remove(ctx, m.ID.Hex(), userB)
		assert.True(t, errors.IsCode(err, errors.ErrUnauthorized), "must be 401, not 404")
	})

	t.Run("admin can remove anyone's mapping", func(t *testing.T) {
		f := newFixture()
		m := assign(t, f)

		require.NoError(t, f.svc.Remove(ctx, m.ID.Hex(), admin))
	})

	t.Run("unknown mapping is not found", func(t *testing.T) {
		f := newFixture()

		err := f.svc.Remove(ctx, primitive.NewObjectID().Hex(), userA)
		assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	})

	t.Run("orphaned patient makes mapping admin-only-deletable", func(t *testing.T) {
		f := newFixture()
		m := assign(t, f)

		var pid primitive.ObjectID = m.PatientID
		f.patients.Remove(pid)

		err := f.svc.Remove(ctx, m.ID.Hex(), userA)
		assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

		require.NoError(t, f.svc.Remove(ctx, m.ID.Hex(), admin))
	})

	t.Run("removed mapping can be reassigned", func(t *testing.T) {
		f := newFixture()
		m := assign(t, f)

		require.NoError(t, f.svc.Remove(ctx, m.ID.Hex(), userA))

		_, err := f.svc.Assign(ctx, &model.CreateMappingRequest{
			PatientID: m.PatientID.Hex(),
			DoctorID:  m.DoctorID.Hex(),
		}, userA)
		assert.NoError(t, err, "no tombstones after delete")
	})
}
