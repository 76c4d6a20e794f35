package mapping

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository/repositorytest"
	mappingService "github.com/carelink/carelink-api/internal/service/mapping"
)

type testEnv struct {
	router   *gin.Engine
	patients *repositorytest.PatientRepo
	doctors  *repositorytest.DoctorRepo
	actor    model.Actor
}

// setActor stands in for the JWT middleware: it writes the actor under the
// same context key the handlers read.
func setActor(actor model.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	}
}

func newTestEnv(t *testing.T, actor model.Actor) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	patients := repositorytest.NewPatientRepo()
	doctors := repositorytest.NewDoctorRepo()
	svc := mappingService.NewService(repositorytest.NewMappingRepo(), patients, doctors)

	router := gin.New()
	api := router.Group("/api")
	api.Use(setActor(actor))
	NewHandler(svc, nil).RegisterRoutes(api)

	return &testEnv{router: router, patients: patients, doctors: doctors, actor: actor}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T) (patientID, doctorID string) {
	t.Helper()
	p := &model.Patient{Name: "Jo", Age: 30, Gender: model.GenderFemale, Contact: "555", CreatedBy: e.actor.ID}
	require.NoError(t, e.patients.Create(context.Background(), p))

	d := &model.Doctor{Name: "Dr. X", Specialization: "Cardio", Contact: "555", AvailableDays: []model.Weekday{model.Monday}, CreatedBy: e.actor.ID}
	require.NoError(t, e.doctors.Create(context.Background(), d))

	return p.ID.Hex(), d.ID.Hex()
}

func TestAssignEndpoint(t *testing.T) {
	actor := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	t.Run("assign then duplicate", func(t *testing.T) {
		env := newTestEnv(t, actor)
		patientID, doctorID := env.seed(t)
		body := gin.H{"patientId": patientID, "doctorId": doctorID}

		w := env.request(t, http.MethodPost, "/api/mappings", body)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = env.request(t, http.MethodPost, "/api/mappings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already assigned")
	})

	t.Run("missing body fields", func(t *testing.T) {
		env := newTestEnv(t, actor)

		w := env.request(t, http.MethodPost, "/api/mappings", gin.H{"patientId": primitive.NewObjectID().Hex()})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("foreign patient answers 404", func(t *testing.T) {
		env := newTestEnv(t, actor)
		_, doctorID := env.seed(t)

		// A patient created by someone else entirely.
		other := &model.Patient{Name: "Sam", Age: 40, Gender: model.GenderMale, Contact: "555", CreatedBy: primitive.NewObjectID()}
		require.NoError(t, env.patients.Create(context.Background(), other))

		w := env.request(t, http.MethodPost, "/api/mappings", gin.H{"patientId": other.ID.Hex(), "doctorId": doctorID})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not found or not authorized")
	})
}

func TestListAndRemoveEndpoints(t *testing.T) {
	actor := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	env := newTestEnv(t, actor)
	patientID, doctorID := env.seed(t)

	w := env.request(t, http.MethodPost, "/api/mappings", gin.H{"patientId": patientID, "doctorId": doctorID})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data model.Mapping `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("list all is expanded", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/mappings", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []model.ExpandedMapping `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.NotNil(t, resp.Data[0].Patient)
		assert.Equal(t, "Jo", resp.Data[0].Patient.Name)
		require.NotNil(t, resp.Data[0].Doctor)
		assert.Equal(t, "Cardio", resp.Data[0].Doctor.Specialization)
	})

	t.Run("list for patient", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/mappings/"+patientID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []model.ExpandedMapping `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, []model.Weekday{model.Monday}, resp.Data[0].Doctor.AvailableDays)
	})

	t.Run("remove", func(t *testing.T) {
		w := env.request(t, http.MethodDelete, "/api/mappings/"+created.Data.ID.Hex(), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.request(t, http.MethodGet, "/api/mappings", nil)
		var resp struct {
			Data []model.ExpandedMapping `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data)
	})

	t.Run("remove again is 404", func(t *testing.T) {
		w := env.request(t, http.MethodDelete, "/api/mappings/"+created.Data.ID.Hex(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRemoveUnauthorizedEndpoint(t *testing.T) {
	owner := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}
	stranger := model.Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	// Shared store, two routers with different identities.
	patients := repositorytest.NewPatientRepo()
	doctors := repositorytest.NewDoctorRepo()
	svc := mappingService.NewService(repositorytest.NewMappingRepo(), patients, doctors)

	newRouter := func(actor model.Actor) *gin.Engine {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		api := router.Group("/api")
		api.Use(setActor(actor))
		NewHandler(svc, nil).RegisterRoutes(api)
		return router
	}

	p := &model.Patient{Name: "Jo", Age: 30, Gender: model.GenderFemale, Contact: "555", CreatedBy: owner.ID}
	require.NoError(t, patients.Create(context.Background(), p))
	d := &model.Doctor{Name: "Dr. X", Specialization: "Cardio", Contact: "555", AvailableDays: []model.Weekday{model.Monday}, CreatedBy: owner.ID}
	require.NoError(t, doctors.Create(context.Background(), d))

	m, err := svc.Assign(context.Background(), &model.CreateMappingRequest{PatientID: p.ID.Hex(), DoctorID: d.ID.Hex()}, owner)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/mappings/"+m.ID.Hex(), nil)
	w := httptest.NewRecorder()
	newRouter(stranger).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
