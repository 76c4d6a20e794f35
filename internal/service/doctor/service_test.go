package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository/repositorytest"
	"github.com/carelink/carelink-api/pkg/errors"
)

func strPtr(v string) *string { return &v }

func validRequest() *model.CreateDoctorRequest {
	return &model.CreateDoctorRequest{
		Name:           "Dr. X",
		Specialization: "Cardio",
		Contact:        "555",
		AvailableDays:  []model.Weekday{model.Monday, model.Wednesday},
	}
}

func TestCreateDoctor(t *testing.T) {
	ctx := context.Background()
	actor := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	t.Run("valid", func(t *testing.T) {
		svc := NewService(repositorytest.NewDoctorRepo())

		created, err := svc.CreateDoctor(ctx, validRequest(), actor)
		require.NoError(t, err)
		assert.False(t, created.ID.IsZero())
		assert.Equal(t, actor.ID, created.CreatedBy)
	})

	tests := []struct {
		name   string
		mutate func(*model.CreateDoctorRequest)
	}{
		{"missing name", func(r *model.CreateDoctorRequest) { r.Name = "" }},
		{"missing specialization", func(r *model.CreateDoctorRequest) { r.Specialization = "" }},
		{"missing contact", func(r *model.CreateDoctorRequest) { r.Contact = "" }},
		{"empty days", func(r *model.CreateDoctorRequest) { r.AvailableDays = nil }},
		{"bad weekday", func(r *model.CreateDoctorRequest) { r.AvailableDays = []model.Weekday{"Funday"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(repositorytest.NewDoctorRepo())
			req := validRequest()
			tt.mutate(req)

			_, err := svc.CreateDoctor(ctx, req, actor)
			assert.True(t, errors.IsCode(err, errors.ErrValidation))
		})
	}
}

func TestDoctorsAreShared(t *testing.T) {
	ctx := context.Background()
	creator := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	svc := NewService(repositorytest.NewDoctorRepo())
	created, err := svc.CreateDoctor(ctx, validRequest(), creator)
	require.NoError(t, err)

	// Reads carry no caller identity at all.
	got, err := svc.GetDoctor(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	all, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDoctorMutationAuthorization(t *testing.T) {
	ctx := context.Background()
	creator := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}
	stranger := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}
	admin := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleAdmin}

	setup := func(t *testing.T) (*Service, *model.Doctor) {
		t.Helper()
		svc := NewService(repositorytest.NewDoctorRepo())
		created, err := svc.CreateDoctor(ctx, validRequest(), creator)
		require.NoError(t, err)
		return svc, created
	}

	t.Run("stranger gets unauthorized, never not found", func(t *testing.T) {
		svc, created := setup(t)

		_, err := svc.UpdateDoctor(ctx, created.ID.Hex(), &model.UpdateDoctorRequest{Name: strPtr("Dr. Y")}, stranger)
		assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

		err = svc.DeleteDoctor(ctx, created.ID.Hex(), stranger)
		assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
	})

	t.Run("unknown doctor is not found before authorization", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.UpdateDoctor(ctx, primitive.NewObjectID().Hex(), &model.UpdateDoctorRequest{Name: strPtr("Dr. Y")}, stranger)
		assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	})

	t.Run("creator can update", func(t *testing.T) {
		svc, created := setup(t)

		updated, err := svc.UpdateDoctor(ctx, created.ID.Hex(), &model.UpdateDoctorRequest{Name: strPtr("Dr. Y")}, creator)
		require.NoError(t, err)
		assert.Equal(t, "Dr. Y", updated.Name)
		assert.Equal(t, "Cardio", updated.Specialization)
	})

	t.Run("admin can delete", func(t *testing.T) {
		svc, created := setup(t)

		require.NoError(t, svc.DeleteDoctor(ctx, created.ID.Hex(), admin))

		_, err := svc.GetDoctor(ctx, created.ID.Hex())
		assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	})
}

func TestListCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	creator := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	svc := NewService(repositorytest.NewDoctorRepo())
	_, err := svc.CreateDoctor(ctx, validRequest(), creator)
	require.NoError(t, err)

	all, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	// A create after a cached list must show up on the next list.
	second, err := svc.CreateDoctor(ctx, validRequest(), creator)
	require.NoError(t, err)

	all, err = svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Delete must evict both the id entry and the list.
	got, err := svc.GetDoctor(ctx, second.ID.Hex())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDoctor(ctx, got.ID.Hex(), creator))

	_, err = svc.GetDoctor(ctx, second.ID.Hex())
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	all, err = svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
