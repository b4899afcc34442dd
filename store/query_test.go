package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListOptionsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListOptions
		want ListOptions
	}{
		{
			"zero values get defaults",
			ListOptions{},
			ListOptions{Page: 1, Limit: 20, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			"limit is capped",
			ListOptions{Page: 2, Limit: 500},
			ListOptions{Page: 2, Limit: 100, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			"negative page clamps to 1",
			ListOptions{Page: -3, Limit: 10},
			ListOptions{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			"unknown sort field falls back",
			ListOptions{SortBy: "password", SortOrder: "asc"},
			ListOptions{Page: 1, Limit: 20, SortBy: "createdAt", SortOrder: "asc"},
		},
		{
			"whitelisted sort survives",
			ListOptions{SortBy: "rating.average", SortOrder: "desc"},
			ListOptions{Page: 1, Limit: 20, SortBy: "rating.average", SortOrder: "desc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.want, tt.in)
		})
	}
}

func TestPublicListFilter_VisibilityAlwaysApplied(t *testing.T) {
	filter := publicListFilter(ListOptions{})
	assert.Equal(t, true, filter["isPublic"])
	assert.Equal(t, true, filter["isApproved"])
	assert.Equal(t, "active", filter["status"])
	assert.NotContains(t, filter, "genre")
	assert.NotContains(t, filter, "$or")
	assert.NotContains(t, filter, "rating.average")
}

func TestPublicListFilter_Filters(t *testing.T) {
	uploader := primitive.NewObjectID()
	filter := publicListFilter(ListOptions{
		Genre:     "Science",
		SubGenre:  "Physics",
		Language:  "English",
		Uploader:  uploader,
		Search:    "quantum",
		MinRating: 2,
		MaxRating: 4.5,
	})

	assert.Equal(t, "Science", filter["genre"])
	assert.Equal(t, "English", filter["language"])
	assert.Equal(t, uploader, filter["uploadedBy"])
	assert.Equal(t, bson.M{"$regex": "Physics", "$options": "i"}, filter["subGenre"])

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 4)
	pattern := bson.M{"$regex": "quantum", "$options": "i"}
	assert.Contains(t, or, bson.M{"title": pattern})
	assert.Contains(t, or, bson.M{"description": pattern})
	assert.Contains(t, or, bson.M{"tags": pattern})
	assert.Contains(t, or, bson.M{"author": pattern})

	assert.Equal(t, bson.M{"$gte": 2.0, "$lte": 4.5}, filter["rating.average"])
}

func TestPublicListFilter_RatingBounds(t *testing.T) {
	filter := publicListFilter(ListOptions{MinRating: 3})
	assert.Equal(t, bson.M{"$gte": 3.0}, filter["rating.average"])

	filter = publicListFilter(ListOptions{MaxRating: 2})
	assert.Equal(t, bson.M{"$lte": 2.0}, filter["rating.average"])
}

func TestSortDoc(t *testing.T) {
	doc := sortDoc(ListOptions{SortBy: "viewCount", SortOrder: "desc"})
	assert.Equal(t, bson.D{{Key: "viewCount", Value: -1}}, doc)

	doc = sortDoc(ListOptions{SortBy: "title", SortOrder: "asc"})
	assert.Equal(t, bson.D{{Key: "title", Value: 1}}, doc)
}
