package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/models"
)

// MongoPostStore persists posts in a MongoDB collection. Timestamps are
// managed here, and category values outside the fixed set are rejected.
type MongoPostStore struct {
	coll *mongo.Collection
}

func NewMongoPostStore(coll *mongo.Collection) *MongoPostStore {
	return &MongoPostStore{coll: coll}
}

func (s *MongoPostStore) Create(ctx context.Context, post *models.Post) error {
	if !models.ValidCategory(post.Category) {
		return ErrInvalidCategory
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().UnixMilli()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := s.coll.InsertOne(ctx, post)
	return err
}

func (s *MongoPostStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *MongoPostStore) FindAll(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoPostStore) FindByCreator(ctx context.Context, creator primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.find(ctx, bson.M{"creator": creator}, opts)
}

func (s *MongoPostStore) FindByCategory(ctx context.Context, category string) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.find(ctx, bson.M{"category": category}, opts)
}

func (s *MongoPostStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	// Initialized so an empty result serializes as [] rather than null.
	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *MongoPostStore) UpdateByID(ctx context.Context, id primitive.ObjectID, upd PostUpdate) (*models.Post, error) {
	if upd.Category != nil && !models.ValidCategory(*upd.Category) {
		return nil, ErrInvalidCategory
	}

	set := bson.M{"updatedAt": time.Now().UnixMilli()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Thumbnail != nil {
		set["thumbnail"] = *upd.Thumbnail
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var post models.Post
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *MongoPostStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
