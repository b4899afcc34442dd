package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document status values. New uploads start pending until approved.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDeleted  = "deleted"
	StatusPending  = "pending"
)

// Genres is the closed list of accepted document genres.
var Genres = []string{
	"Academic",
	"Technology",
	"Business",
	"Science",
	"Mathematics",
	"History",
	"Literature",
	"Art & Design",
	"Engineering",
	"Medicine",
	"Law",
	"Philosophy",
	"Psychology",
	"Economics",
	"Programming",
	"Data Science",
	"Machine Learning",
	"Mobile Development",
	"Web Development",
	"DevOps",
	"Other",
}

// ValidGenre reports whether s is one of the accepted genres.
func ValidGenre(s string) bool {
	for _, g := range Genres {
		if g == s {
			return true
		}
	}
	return false
}

var (
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrEmptyComment     = errors.New("comment content is required")
)

// Rating is one user's rating of a document. At most one per user; a
// re-rating replaces the existing entry in place.
type Rating struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// RatingSummary holds the derived aggregate over all ratings.
type RatingSummary struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Comment is an append-only entry with author name/avatar snapshots
// taken at post time; snapshots are not synced with later profile edits.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User       primitive.ObjectID `bson:"user" json:"user"`
	UserName   string             `bson:"userName" json:"userName"`
	UserAvatar string             `bson:"userAvatar,omitempty" json:"userAvatar,omitempty"`
	Content    string             `bson:"content" json:"content"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FileMetadata records details of the uploaded file as received.
type FileMetadata struct {
	OriginalName string `bson:"originalName" json:"originalName"`
	Encoding     string `bson:"encoding,omitempty" json:"encoding,omitempty"`
	MimeType     string `bson:"mimetype" json:"mimetype"`
	Extension    string `bson:"extension" json:"extension"`
}

type Pdf struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Genre       string             `bson:"genre" json:"genre"`
	SubGenre    string             `bson:"subGenre,omitempty" json:"subGenre,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	// Binary reference. S3Key never serializes to clients.
	FileName string       `bson:"fileName" json:"fileName"`
	S3Key    string       `bson:"s3Key" json:"-"`
	FileSize int64        `bson:"fileSize" json:"fileSize"`
	MimeType string       `bson:"mimeType" json:"mimeType"`
	Metadata FileMetadata `bson:"metadata" json:"metadata"`

	// Ownership with name/avatar snapshots from upload time.
	UploadedBy     primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	UploaderName   string             `bson:"uploaderName" json:"uploaderName"`
	UploaderAvatar string             `bson:"uploaderAvatar,omitempty" json:"uploaderAvatar,omitempty"`

	// Optional bibliographic fields.
	Author          string `bson:"author,omitempty" json:"author,omitempty"`
	Publisher       string `bson:"publisher,omitempty" json:"publisher,omitempty"`
	PublicationYear int    `bson:"publicationYear,omitempty" json:"publicationYear,omitempty"`
	ISBN            string `bson:"isbn,omitempty" json:"isbn,omitempty"`
	Language        string `bson:"language,omitempty" json:"language,omitempty"`
	PageCount       int    `bson:"pageCount,omitempty" json:"pageCount,omitempty"`
	CoverImage      string `bson:"coverImage,omitempty" json:"coverImage,omitempty"`

	// Engagement state. Invariants: LikeCount == len(LikedBy);
	// Rating.Count == len(Ratings); Rating.Average is the mean of all
	// rating values, 0 when there are none.
	ViewCount     int                  `bson:"viewCount" json:"viewCount"`
	DownloadCount int                  `bson:"downloadCount" json:"downloadCount"`
	LikeCount     int                  `bson:"likeCount" json:"likeCount"`
	LikedBy       []primitive.ObjectID `bson:"likedBy,omitempty" json:"likedBy,omitempty"`
	Rating        RatingSummary        `bson:"rating" json:"rating"`
	Ratings       []Rating             `bson:"ratings,omitempty" json:"ratings,omitempty"`
	Comments      []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`

	// Visibility. Only isPublic && isApproved && status == active
	// documents appear in public listings.
	IsPublic   bool                `bson:"isPublic" json:"isPublic"`
	IsApproved bool                `bson:"isApproved" json:"isApproved"`
	ApprovedBy *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	Status     string              `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsLikedBy reports whether the user has liked the document.
func (p *Pdf) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike flips the user's like. Calling twice in a row restores the
// original state. Returns the new liked status.
func (p *Pdf) ToggleLike(userID primitive.ObjectID) bool {
	for i, id := range p.LikedBy {
		if id == userID {
			p.LikedBy = append(p.LikedBy[:i], p.LikedBy[i+1:]...)
			p.LikeCount--
			return false
		}
	}
	p.LikedBy = append(p.LikedBy, userID)
	p.LikeCount++
	return true
}

// ApplyRating upserts the user's rating: an existing entry is replaced
// in place, otherwise a new one is appended. The aggregate average and
// count are recomputed from scratch.
func (p *Pdf) ApplyRating(userID primitive.ObjectID, value int, review string, now time.Time) error {
	if value < 1 || value > 5 {
		return ErrRatingOutOfRange
	}
	found := false
	for i := range p.Ratings {
		if p.Ratings[i].User == userID {
			p.Ratings[i].Rating = value
			if review != "" {
				p.Ratings[i].Review = review
			}
			p.Ratings[i].CreatedAt = now
			found = true
			break
		}
	}
	if !found {
		p.Ratings = append(p.Ratings, Rating{
			User:      userID,
			Rating:    value,
			Review:    review,
			CreatedAt: now,
		})
	}
	p.recomputeRating()
	return nil
}

func (p *Pdf) recomputeRating() {
	if len(p.Ratings) == 0 {
		p.Rating = RatingSummary{}
		return
	}
	total := 0
	for _, r := range p.Ratings {
		total += r.Rating
	}
	p.Rating.Average = float64(total) / float64(len(p.Ratings))
	p.Rating.Count = len(p.Ratings)
}

// AddComment appends a comment carrying the author's current name and
// avatar as snapshots. Whitespace-only content is rejected.
func (p *Pdf) AddComment(userID primitive.ObjectID, userName, userAvatar, content string, now time.Time) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	c := Comment{
		ID:         primitive.NewObjectID(),
		User:       userID,
		UserName:   userName,
		UserAvatar: userAvatar,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.Comments = append(p.Comments, c)
	return &p.Comments[len(p.Comments)-1], nil
}

// Listed reports whether the document is visible in public listings.
func (p *Pdf) Listed() bool {
	return p.IsPublic && p.IsApproved && p.Status == StatusActive
}
