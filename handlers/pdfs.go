package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/studyaivault/backend/apperror"
	"github.com/studyaivault/backend/middleware"
	"github.com/studyaivault/backend/models"
	"github.com/studyaivault/backend/service"
	"github.com/studyaivault/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PdfsHandler struct {
	DB *store.DB
	S3 *service.S3Service
}

// Pagination is the listing envelope's page descriptor.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

func paginate(opts store.ListOptions, total int64) Pagination {
	pages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	return Pagination{
		Page:    opts.Page,
		Limit:   opts.Limit,
		Total:   total,
		Pages:   pages,
		HasNext: opts.Page < pages,
		HasPrev: opts.Page > 1,
	}
}

type listResponse struct {
	Success    bool         `json:"success"`
	Pdfs       []models.Pdf `json:"pdfs"`
	Pagination Pagination   `json:"pagination"`
}

func parseListOptions(r *http.Request) store.ListOptions {
	q := r.URL.Query()
	opts := store.ListOptions{
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Genre:     q.Get("genre"),
		SubGenre:  q.Get("subGenre"),
		Search:    q.Get("search"),
		Language:  q.Get("language"),
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = n
	}
	if f, err := strconv.ParseFloat(q.Get("minRating"), 64); err == nil {
		opts.MinRating = f
	}
	if f, err := strconv.ParseFloat(q.Get("maxRating"), 64); err == nil {
		opts.MaxRating = f
	}
	if id, err := primitive.ObjectIDFromHex(q.Get("uploader")); err == nil {
		opts.Uploader = id
	}
	opts.Normalize()
	return opts
}

// List serves the public gallery: public, approved, active documents
// with filtering, search, sorting and pagination.
func (h *PdfsHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	pdfs, total, err := h.DB.ListPublic(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if pdfs == nil {
		pdfs = []models.Pdf{}
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Pdfs: pdfs, Pagination: paginate(opts, total)})
}

// UserPdfs lists the uploads of the user in the path.
func (h *PdfsHandler) UserPdfs(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, apperror.Validation("Invalid user id"))
		return
	}
	h.listByUploader(w, r, userID)
}

// MyPdfs lists the caller's own uploads, including pending and deleted.
func (h *PdfsHandler) MyPdfs(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	h.listByUploader(w, r, identity.UserID)
}

func (h *PdfsHandler) listByUploader(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) {
	opts := parseListOptions(r)
	pdfs, total, err := h.DB.PdfsByUploader(r.Context(), userID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if pdfs == nil {
		pdfs = []models.Pdf{}
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Pdfs: pdfs, Pagination: paginate(opts, total)})
}

func (h *PdfsHandler) pdfFromPath(r *http.Request) (*models.Pdf, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperror.Validation("Invalid PDF id")
	}
	pdf, err := h.DB.PdfByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if pdf == nil {
		return nil, apperror.NotFound("PDF")
	}
	return pdf, nil
}

type pdfResponse struct {
	Success bool        `json:"success"`
	Pdf     *models.Pdf `json:"pdf"`
	IsLiked bool        `json:"isLiked"`
	ViewURL string      `json:"viewUrl,omitempty"`
}

// viewURLExpiry bounds how long an in-browser viewer link stays valid.
const viewURLExpiry = 15 * time.Minute

// Get returns a single document by ID, any status. When the request
// carries a valid token, isLiked reflects the caller. When storage is
// configured the response includes a short-lived viewUrl for rendering
// the PDF in the client.
func (h *PdfsHandler) Get(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.pdfFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	isLiked := false
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		isLiked = pdf.IsLikedBy(identity.UserID)
	}
	viewURL := ""
	if h.S3 != nil {
		viewURL, err = h.S3.PresignedGetURL(r.Context(), pdf.S3Key, viewURLExpiry, "")
		if err != nil {
			log.Printf("get: presign %s: %v", pdf.S3Key, err)
			viewURL = ""
		}
	}
	writeJSON(w, http.StatusOK, pdfResponse{Success: true, Pdf: pdf, IsLiked: isLiked, ViewURL: viewURL})
}

// View bumps the view counter. Unauthenticated by design; every call
// counts, with no dedup window.
func (h *PdfsHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperror.Validation("Invalid PDF id"))
		return
	}
	count, err := h.DB.IncrementViewCount(r.Context(), id)
	if err == mongo.ErrNoDocuments {
		writeError(w, apperror.NotFound("PDF"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"viewCount": count,
	})
}

// Download streams the file from storage under its original name and
// bumps the download counter.
func (h *PdfsHandler) Download(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.pdfFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.S3 == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "Download not configured"})
		return
	}
	body, _, err := h.S3.GetObject(r.Context(), pdf.S3Key)
	if err != nil {
		writeError(w, apperror.NotFound("PDF file"))
		return
	}
	defer body.Close()

	if _, err := h.DB.IncrementDownloadCount(r.Context(), pdf.ID); err != nil {
		log.Printf("download: increment count for %s: %v", pdf.ID.Hex(), err)
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+pdf.Metadata.OriginalName+`"`)
	w.Header().Set("Content-Type", contentTypePDF)
	io.Copy(w, body)
}

// Like toggles the caller's like. Toggling twice restores the original
// state; there is no "already liked" error path.
func (h *PdfsHandler) Like(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	pdf, err := h.pdfFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	isLiked := pdf.ToggleLike(identity.UserID)
	if err := h.DB.SaveEngagement(r.Context(), pdf); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"isLiked":   isLiked,
		"likeCount": pdf.LikeCount,
	})
}

type rateRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// Rate upserts the caller's rating and returns the recomputed average
// and count. The value must be an integer in [1,5].
func (h *PdfsHandler) Rate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("Invalid request body"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, apperror.Validation("Rating must be between 1 and 5"))
		return
	}
	pdf, err := h.pdfFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := pdf.ApplyRating(identity.UserID, req.Rating, req.Review, time.Now()); err != nil {
		writeError(w, apperror.Validation(err.Error()))
		return
	}
	if err := h.DB.SaveEngagement(r.Context(), pdf); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Rating added successfully",
		"rating":  pdf.Rating,
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

// Comment appends a comment with the caller's current name and avatar
// as snapshots.
func (h *PdfsHandler) Comment(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("Invalid request body"))
		return
	}
	pdf, err := h.pdfFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	comment, err := pdf.AddComment(identity.UserID, identity.Name, identity.Avatar, req.Content, time.Now())
	if err != nil {
		writeError(w, apperror.Validation("Comment content is required"))
		return
	}
	if err := h.DB.SaveEngagement(r.Context(), pdf); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// Delete soft-deletes: owner or admin only. The record stays reachable
// by direct ID but drops out of listings.
func (h *PdfsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	pdf, err := h.pdfFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if pdf.UploadedBy != identity.UserID && !identity.IsAdmin() {
		writeError(w, apperror.Forbidden("Unauthorized to delete this PDF"))
		return
	}
	if err := h.DB.SetStatus(r.Context(), pdf.ID, models.StatusDeleted); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "PDF deleted successfully",
	})
}

// Approve publishes a pending document. Admin only.
func (h *PdfsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	if !identity.IsAdmin() {
		writeError(w, apperror.Forbidden("Admin role required"))
		return
	}
	pdf, err := h.pdfFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.DB.Approve(r.Context(), pdf.ID, identity.UserID, time.Now()); err != nil {
		writeError(w, err)
		return
	}
	pdf, err = h.DB.PdfByID(r.Context(), pdf.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "PDF approved",
		"pdf":     pdf,
	})
}

// Genres returns the closed genre list.
func (h *PdfsHandler) Genres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"genres":  models.Genres,
	})
}

// Statistics returns library-wide totals and the genre distribution.
func (h *PdfsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, genres, err := h.DB.PdfStatistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if genres == nil {
		genres = []store.GenreCount{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"statistics":        stats,
		"genreDistribution": genres,
	})
}
