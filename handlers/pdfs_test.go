package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyaivault/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseListOptions(t *testing.T) {
	uploader := primitive.NewObjectID()
	req := httptest.NewRequest(http.MethodGet,
		"/api/pdfs?page=3&limit=10&genre=Science&search=quantum&sortBy=viewCount&sortOrder=asc&minRating=2&maxRating=4.5&uploader="+uploader.Hex(), nil)

	opts := parseListOptions(req)
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, "Science", opts.Genre)
	assert.Equal(t, "quantum", opts.Search)
	assert.Equal(t, "viewCount", opts.SortBy)
	assert.Equal(t, "asc", opts.SortOrder)
	assert.Equal(t, 2.0, opts.MinRating)
	assert.Equal(t, 4.5, opts.MaxRating)
	assert.Equal(t, uploader, opts.Uploader)
}

func TestParseListOptions_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/pdfs", nil)
	opts := parseListOptions(req)
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 20, opts.Limit)
	assert.Equal(t, "createdAt", opts.SortBy)
	assert.Equal(t, "desc", opts.SortOrder)
	assert.True(t, opts.Uploader.IsZero())
}

func TestParseListOptions_GarbageValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/api/pdfs?page=abc&limit=-5&sortBy=password&minRating=x&uploader=nothex", nil)
	opts := parseListOptions(req)
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 20, opts.Limit)
	assert.Equal(t, "createdAt", opts.SortBy)
	assert.Zero(t, opts.MinRating)
	assert.True(t, opts.Uploader.IsZero())
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int64
		want  Pagination
	}{
		{
			"first of many",
			1, 20, 45,
			Pagination{Page: 1, Limit: 20, Total: 45, Pages: 3, HasNext: true, HasPrev: false},
		},
		{
			"middle page",
			2, 20, 45,
			Pagination{Page: 2, Limit: 20, Total: 45, Pages: 3, HasNext: true, HasPrev: true},
		},
		{
			"last page",
			3, 20, 45,
			Pagination{Page: 3, Limit: 20, Total: 45, Pages: 3, HasNext: false, HasPrev: true},
		},
		{
			"empty result",
			1, 20, 0,
			Pagination{Page: 1, Limit: 20, Total: 0, Pages: 0, HasNext: false, HasPrev: false},
		},
		{
			"exact multiple",
			2, 10, 20,
			Pagination{Page: 2, Limit: 10, Total: 20, Pages: 2, HasNext: false, HasPrev: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := store.ListOptions{Page: tt.page, Limit: tt.limit}
			got := paginate(opts, tt.total)
			require.Equal(t, tt.want, got)
		})
	}
}
