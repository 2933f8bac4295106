package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"` // stored lowercase
	Password string             `bson:"password" json:"-"`  // bcrypt hash, never serialized
	Avatar   string             `bson:"avatar,omitempty" json:"avatar"`
	Posts    int                `bson:"posts" json:"posts"` // denormalized count of owned posts
}
