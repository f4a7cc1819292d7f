package technicianRepo

import (
	"context"
	"fmt"
	"time"

	"fieldserve/database"
	"fieldserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTechnicianRepo implements TechnicianRepository using MongoDB.
type MongoTechnicianRepo struct {
	coll *mongo.Collection
}

// NewMongoTechnicianRepo creates a new instance of TechnicianRepository using MongoDB.
func NewMongoTechnicianRepo() TechnicianRepository {
	coll := database.MongoClient.Database("fieldserve").Collection("technicians")
	repo := &MongoTechnicianRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("warning: failed to ensure technician indexes: %v\n", err)
	}
	return repo
}

func (r *MongoTechnicianRepo) GetByID(id string) (*models.Technician, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var tech models.Technician
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&tech); err != nil {
		return nil, fmt.Errorf("failed to fetch technician with id %s: %w", id, err)
	}
	return &tech, nil
}

func (r *MongoTechnicianRepo) GetAllActive() ([]models.Technician, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := r.coll.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve technicians: %w", err)
	}
	defer cursor.Close(ctx)
	var techs []models.Technician
	for cursor.Next(ctx) {
		var t models.Technician
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode technician: %w", err)
		}
		techs = append(techs, t)
	}
	return techs, nil
}

func (r *MongoTechnicianRepo) GetByIDs(ids []string) ([]models.Technician, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	filter := bson.M{"id": bson.M{"$in": ids}, "active": true}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve technicians by ids: %w", err)
	}
	defer cursor.Close(ctx)
	var techs []models.Technician
	for cursor.Next(ctx) {
		var t models.Technician
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode technician: %w", err)
		}
		techs = append(techs, t)
	}
	return techs, nil
}

func (r *MongoTechnicianRepo) UpdateHomeCoordinate(id string, coord models.Coordinate) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"home_coordinate": coord}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update home coordinate for technician %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("technician with id %s not found", id)
	}
	return nil
}
