package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
)

type patientRepository struct {
	coll *mongo.Collection
}

func NewPatientRepository(db *DB) repository.PatientRepository {
	return &patientRepository{coll: db.db.Collection(patientsCollection)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	patient.ID = primitive.NewObjectID()
	patient.CreatedAt = time.Now().UTC()

	_, err := r.coll.InsertOne(ctx, patient)
	return translateError(err)
}

func (r *patientRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Patient, error) {
	var patient model.Patient
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&patient)
	if err != nil {
		return nil, translateError(err)
	}
	return &patient, nil
}

func (r *patientRepository) GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*model.Patient, error) {
	var patient model.Patient
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "createdBy": owner}).Decode(&patient)
	if err != nil {
		return nil, translateError(err)
	}
	return &patient, nil
}

func (r *patientRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*model.Patient, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"createdBy": owner})
	if err != nil {
		return nil, translateError(err)
	}

	patients := make([]*model.Patient, 0)
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	filter := bson.M{"_id": patient.ID, "createdBy": patient.CreatedBy}
	res, err := r.coll.ReplaceOne(ctx, filter, patient)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "createdBy": owner})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
