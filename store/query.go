package store

import (
	"github.com/studyaivault/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListOptions are the supported listing filters and pagination knobs.
// Zero values mean "not set".
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" or "desc"
	Genre     string
	SubGenre  string
	Search    string
	Language  string
	Uploader  primitive.ObjectID
	MinRating float64
	MaxRating float64
}

// sortFields whitelists client-selectable sort keys.
var sortFields = map[string]bool{
	"createdAt":      true,
	"title":          true,
	"viewCount":      true,
	"downloadCount":  true,
	"likeCount":      true,
	"rating.average": true,
}

// Normalize clamps pagination and falls back to the default sort for
// unknown fields.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if !sortFields[o.SortBy] {
		o.SortBy = "createdAt"
	}
	if o.SortOrder != "asc" {
		o.SortOrder = "desc"
	}
}

// publicListFilter builds the query for public listings: only public,
// approved, active documents, narrowed by the request filters.
func publicListFilter(o ListOptions) bson.M {
	filter := bson.M{
		"isPublic":   true,
		"isApproved": true,
		"status":     models.StatusActive,
	}
	if o.Genre != "" {
		filter["genre"] = o.Genre
	}
	if o.SubGenre != "" {
		filter["subGenre"] = bson.M{"$regex": o.SubGenre, "$options": "i"}
	}
	if o.Language != "" {
		filter["language"] = o.Language
	}
	if !o.Uploader.IsZero() {
		filter["uploadedBy"] = o.Uploader
	}
	if o.Search != "" {
		pattern := bson.M{"$regex": o.Search, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
			bson.M{"author": pattern},
		}
	}
	if o.MinRating > 0 || o.MaxRating > 0 {
		ratingRange := bson.M{}
		if o.MinRating > 0 {
			ratingRange["$gte"] = o.MinRating
		}
		if o.MaxRating > 0 {
			ratingRange["$lte"] = o.MaxRating
		}
		filter["rating.average"] = ratingRange
	}
	return filter
}

func sortDoc(o ListOptions) bson.D {
	dir := -1
	if o.SortOrder == "asc" {
		dir = 1
	}
	return bson.D{{Key: o.SortBy, Value: dir}}
}
