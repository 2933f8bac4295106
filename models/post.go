package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"` // stored filename under uploads
	Creator     primitive.ObjectID `bson:"creator" json:"creator"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"` // unix millis
	UpdatedAt   int64              `bson:"updatedAt" json:"updatedAt"`
}

// Categories is the fixed set of post categories.
var Categories = []string{
	"Agriculture",
	"Business",
	"Education",
	"Entertainment",
	"Art",
	"Investment",
	"Uncategorized",
	"Weather",
	"Technology",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
