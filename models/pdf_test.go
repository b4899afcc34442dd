package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestPdf() *Pdf {
	return &Pdf{
		ID:     primitive.NewObjectID(),
		Title:  "Linear Algebra Done Right",
		Genre:  "Mathematics",
		Status: StatusActive,
	}
}

func TestToggleLike(t *testing.T) {
	pdf := newTestPdf()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	assert.True(t, pdf.ToggleLike(alice))
	assert.Equal(t, 1, pdf.LikeCount)
	assert.True(t, pdf.IsLikedBy(alice))

	assert.True(t, pdf.ToggleLike(bob))
	assert.Equal(t, 2, pdf.LikeCount)

	// Toggling again is its own inverse.
	assert.False(t, pdf.ToggleLike(alice))
	assert.Equal(t, 1, pdf.LikeCount)
	assert.False(t, pdf.IsLikedBy(alice))
	assert.True(t, pdf.IsLikedBy(bob))
}

func TestToggleLike_CountMatchesSet(t *testing.T) {
	pdf := newTestPdf()
	users := make([]primitive.ObjectID, 5)
	for i := range users {
		users[i] = primitive.NewObjectID()
	}
	for _, u := range users {
		pdf.ToggleLike(u)
		assert.Equal(t, len(pdf.LikedBy), pdf.LikeCount)
	}
	for _, u := range users {
		pdf.ToggleLike(u)
		assert.Equal(t, len(pdf.LikedBy), pdf.LikeCount)
	}
	assert.Equal(t, 0, pdf.LikeCount)
	assert.Empty(t, pdf.LikedBy)
}

func TestApplyRating_AverageRecompute(t *testing.T) {
	pdf := newTestPdf()
	now := time.Now()

	// Zero ratings report a zero summary.
	assert.Equal(t, RatingSummary{}, pdf.Rating)

	alice := primitive.NewObjectID()
	require.NoError(t, pdf.ApplyRating(alice, 4, "", now))
	assert.Equal(t, 4.0, pdf.Rating.Average)
	assert.Equal(t, 1, pdf.Rating.Count)

	bob := primitive.NewObjectID()
	require.NoError(t, pdf.ApplyRating(bob, 2, "too dense", now))
	assert.Equal(t, 3.0, pdf.Rating.Average)
	assert.Equal(t, 2, pdf.Rating.Count)
}

func TestApplyRating_UpsertIsIdempotentPerUser(t *testing.T) {
	pdf := newTestPdf()
	now := time.Now()
	alice := primitive.NewObjectID()

	require.NoError(t, pdf.ApplyRating(alice, 5, "great", now))
	require.NoError(t, pdf.ApplyRating(alice, 3, "on reflection", now.Add(time.Hour)))
	require.NoError(t, pdf.ApplyRating(alice, 3, "", now.Add(2*time.Hour)))

	require.Len(t, pdf.Ratings, 1)
	assert.Equal(t, 1, pdf.Rating.Count)
	assert.Equal(t, 3.0, pdf.Rating.Average)
	assert.Equal(t, 3, pdf.Ratings[0].Rating)
	// Replacing with an empty review keeps the previous text.
	assert.Equal(t, "on reflection", pdf.Ratings[0].Review)
}

func TestApplyRating_RejectsOutOfRange(t *testing.T) {
	pdf := newTestPdf()
	alice := primitive.NewObjectID()
	for _, v := range []int{0, -1, 6, 100} {
		err := pdf.ApplyRating(alice, v, "", time.Now())
		assert.ErrorIs(t, err, ErrRatingOutOfRange, "value %d", v)
	}
	assert.Empty(t, pdf.Ratings)
	assert.Equal(t, RatingSummary{}, pdf.Rating)
}

func TestApplyRating_CountMatchesEntries(t *testing.T) {
	pdf := newTestPdf()
	now := time.Now()
	sum := 0
	for i := 1; i <= 5; i++ {
		require.NoError(t, pdf.ApplyRating(primitive.NewObjectID(), i, "", now))
		sum += i
		assert.Equal(t, len(pdf.Ratings), pdf.Rating.Count)
		assert.InDelta(t, float64(sum)/float64(i), pdf.Rating.Average, 1e-9)
	}
}

func TestAddComment(t *testing.T) {
	pdf := newTestPdf()
	now := time.Now()
	alice := primitive.NewObjectID()

	c, err := pdf.AddComment(alice, "Alice", "avatar.png", "  first!  ", now)
	require.NoError(t, err)
	assert.Equal(t, "first!", c.Content)
	assert.Equal(t, "Alice", c.UserName)
	assert.Equal(t, "avatar.png", c.UserAvatar)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)
	require.Len(t, pdf.Comments, 1)

	// Unlike ratings, the same user may comment any number of times,
	// and prior entries keep their order.
	_, err = pdf.AddComment(alice, "Alice", "avatar.png", "second", now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, pdf.Comments, 2)
	assert.Equal(t, "first!", pdf.Comments[0].Content)
	assert.Equal(t, "second", pdf.Comments[1].Content)
}

func TestAddComment_RejectsWhitespaceOnly(t *testing.T) {
	pdf := newTestPdf()
	for _, content := range []string{"", "   ", "\t\n  "} {
		_, err := pdf.AddComment(primitive.NewObjectID(), "Alice", "", content, time.Now())
		assert.ErrorIs(t, err, ErrEmptyComment, "content %q", content)
	}
	assert.Empty(t, pdf.Comments)
}

func TestValidGenre(t *testing.T) {
	assert.True(t, ValidGenre("Science"))
	assert.True(t, ValidGenre("Art & Design"))
	assert.True(t, ValidGenre("Other"))
	assert.False(t, ValidGenre("science"))
	assert.False(t, ValidGenre("Fiction"))
	assert.False(t, ValidGenre(""))
}

func TestListed(t *testing.T) {
	tests := []struct {
		name     string
		isPublic bool
		approved bool
		status   string
		want     bool
	}{
		{"public approved active", true, true, StatusActive, true},
		{"pending approval", true, false, StatusPending, false},
		{"approved but pending status", true, true, StatusPending, false},
		{"soft deleted", true, true, StatusDeleted, false},
		{"private", false, true, StatusActive, false},
		{"inactive", true, true, StatusInactive, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf := &Pdf{IsPublic: tt.isPublic, IsApproved: tt.approved, Status: tt.status}
			assert.Equal(t, tt.want, pdf.Listed())
		})
	}
}
