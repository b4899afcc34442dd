package store

import (
	"context"
	"time"

	"github.com/studyaivault/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertPdf(ctx context.Context, pdf *models.Pdf) (primitive.ObjectID, error) {
	res, err := db.Pdfs().InsertOne(ctx, pdf, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// PdfByID fetches a document regardless of status; soft-deleted and
// pending documents stay reachable by direct ID. Returns nil, nil when
// no document exists.
func (db *DB) PdfByID(ctx context.Context, id primitive.ObjectID) (*models.Pdf, error) {
	var pdf models.Pdf
	err := db.Pdfs().FindOne(ctx, bson.M{"_id": id}).Decode(&pdf)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pdf, nil
}

func (db *DB) listPdfs(ctx context.Context, filter bson.M, opts ListOptions) ([]models.Pdf, int64, error) {
	findOpts := options.Find().
		SetSort(sortDoc(opts)).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))
	cur, err := db.Pdfs().Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var pdfs []models.Pdf
	if err := cur.All(ctx, &pdfs); err != nil {
		return nil, 0, err
	}
	total, err := db.Pdfs().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return pdfs, total, nil
}

// ListPublic returns the page of publicly listed documents matching the
// options, plus the total match count for pagination.
func (db *DB) ListPublic(ctx context.Context, opts ListOptions) ([]models.Pdf, int64, error) {
	opts.Normalize()
	return db.listPdfs(ctx, publicListFilter(opts), opts)
}

// PdfsByUploader returns a user's uploads regardless of visibility.
func (db *DB) PdfsByUploader(ctx context.Context, userID primitive.ObjectID, opts ListOptions) ([]models.Pdf, int64, error) {
	opts.Normalize()
	return db.listPdfs(ctx, bson.M{"uploadedBy": userID}, opts)
}

// IncrementViewCount bumps the counter atomically and returns the new
// value. Returns mongo.ErrNoDocuments when the document is missing.
func (db *DB) IncrementViewCount(ctx context.Context, id primitive.ObjectID) (int, error) {
	return db.incrementCounter(ctx, id, "viewCount")
}

// IncrementDownloadCount bumps the counter atomically and returns the
// new value.
func (db *DB) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (int, error) {
	return db.incrementCounter(ctx, id, "downloadCount")
}

func (db *DB) incrementCounter(ctx context.Context, id primitive.ObjectID, field string) (int, error) {
	var pdf models.Pdf
	err := db.Pdfs().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&pdf)
	if err != nil {
		return 0, err
	}
	switch field {
	case "downloadCount":
		return pdf.DownloadCount, nil
	default:
		return pdf.ViewCount, nil
	}
}

// SaveEngagement persists the engagement sub-state (likes, ratings,
// comments and their derived aggregates) after an in-memory mutation.
// Read-modify-write: two concurrent mutations of the same document can
// overwrite each other, last write wins.
func (db *DB) SaveEngagement(ctx context.Context, pdf *models.Pdf) error {
	_, err := db.Pdfs().UpdateOne(ctx, bson.M{"_id": pdf.ID}, bson.M{"$set": bson.M{
		"likedBy":   pdf.LikedBy,
		"likeCount": pdf.LikeCount,
		"ratings":   pdf.Ratings,
		"rating":    pdf.Rating,
		"comments":  pdf.Comments,
		"updatedAt": time.Now(),
	}})
	return err
}

// SetStatus transitions the document's lifecycle status.
func (db *DB) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := db.Pdfs().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}})
	return err
}

// Approve marks the document approved and active, recording who
// approved it and when.
func (db *DB) Approve(ctx context.Context, id, adminID primitive.ObjectID, now time.Time) error {
	_, err := db.Pdfs().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isApproved": true,
		"approvedBy": adminID,
		"approvedAt": now,
		"status":     models.StatusActive,
		"updatedAt":  now,
	}})
	return err
}

// Statistics holds library-wide totals over publicly listed documents.
type Statistics struct {
	TotalPdfs      int64   `bson:"totalPdfs" json:"totalPdfs"`
	TotalViews     int64   `bson:"totalViews" json:"totalViews"`
	TotalDownloads int64   `bson:"totalDownloads" json:"totalDownloads"`
	TotalLikes     int64   `bson:"totalLikes" json:"totalLikes"`
	AverageRating  float64 `bson:"averageRating" json:"averageRating"`
}

// GenreCount is one bucket of the per-genre distribution.
type GenreCount struct {
	Genre string `bson:"_id" json:"genre"`
	Count int64  `bson:"count" json:"count"`
}

var listedMatch = bson.M{"isPublic": true, "isApproved": true, "status": models.StatusActive}

// PdfStatistics aggregates totals and the genre distribution over the
// publicly listed collection.
func (db *DB) PdfStatistics(ctx context.Context) (*Statistics, []GenreCount, error) {
	cur, err := db.Pdfs().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: listedMatch}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"totalPdfs":      bson.M{"$sum": 1},
			"totalViews":     bson.M{"$sum": "$viewCount"},
			"totalDownloads": bson.M{"$sum": "$downloadCount"},
			"totalLikes":     bson.M{"$sum": "$likeCount"},
			"averageRating":  bson.M{"$avg": "$rating.average"},
		}}},
	})
	if err != nil {
		return nil, nil, err
	}
	defer cur.Close(ctx)
	var totals []Statistics
	if err := cur.All(ctx, &totals); err != nil {
		return nil, nil, err
	}
	stats := &Statistics{}
	if len(totals) > 0 {
		stats = &totals[0]
	}

	genreCur, err := db.Pdfs().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: listedMatch}},
		{{Key: "$group", Value: bson.M{"_id": "$genre", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, nil, err
	}
	defer genreCur.Close(ctx)
	var genres []GenreCount
	if err := genreCur.All(ctx, &genres); err != nil {
		return nil, nil, err
	}
	return stats, genres, nil
}
