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

type mappingRepository struct {
	coll *mongo.Collection
}

func NewMappingRepository(db *DB) repository.MappingRepository {
	return &mappingRepository{coll: db.db.Collection(mappingsCollection)}
}

// Create relies on the unique (patient, doctor) index: a concurrent insert
// of the same pair loses with repository.ErrDuplicate.
func (r *mappingRepository) Create(ctx context.Context, mapping *model.Mapping) error {
	mapping.ID = primitive.NewObjectID()
	mapping.CreatedAt = time.Now().UTC()

	_, err := r.coll.InsertOne(ctx, mapping)
	return translateError(err)
}

func (r *mappingRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Mapping, error) {
	var mapping model.Mapping
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mapping)
	if err != nil {
		return nil, translateError(err)
	}
	return &mapping, nil
}

func (r *mappingRepository) GetByPair(ctx context.Context, patientID, doctorID primitive.ObjectID) (*model.Mapping, error) {
	var mapping model.Mapping
	err := r.coll.FindOne(ctx, bson.M{"patient": patientID, "doctor": doctorID}).Decode(&mapping)
	if err != nil {
		return nil, translateError(err)
	}
	return &mapping, nil
}

func (r *mappingRepository) List(ctx context.Context) ([]*model.Mapping, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, translateError(err)
	}

	mappings := make([]*model.Mapping, 0)
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *mappingRepository) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Mapping, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"patient": patientID})
	if err != nil {
		return nil, translateError(err)
	}

	mappings := make([]*model.Mapping, 0)
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *mappingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
