package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/studyaivault/backend/apperror"
	"github.com/studyaivault/backend/middleware"
	"github.com/studyaivault/backend/models"
	"github.com/studyaivault/backend/service"
	"github.com/studyaivault/backend/store"
)

const contentTypePDF = "application/pdf"

type UploadHandler struct {
	DB       *store.DB
	S3       *service.S3Service
	MaxBytes int64
}

type UploadResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Pdf     *models.Pdf `json:"pdf"`
}

// Upload accepts a multipart PDF plus metadata fields and creates the
// document in pending state. If the record cannot be saved after the
// file reached storage, the stored object is deleted again.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	if h.S3 == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "Upload not configured"})
		return
	}

	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, apperror.Validation("Failed to parse multipart form"))
		return
	}
	file, header, err := r.FormFile("pdf")
	if err != nil {
		writeError(w, apperror.Validation("No PDF file provided"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(header.Filename)))
	partContentType := header.Header.Get("Content-Type")
	if ext != ".pdf" && !strings.HasPrefix(partContentType, contentTypePDF) {
		writeError(w, apperror.Validation("Only PDF files are allowed"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	genre := strings.TrimSpace(r.FormValue("genre"))
	if title == "" || genre == "" {
		writeError(w, apperror.Validation("Title and genre are required"))
		return
	}
	if len(title) > 200 {
		writeError(w, apperror.Validation("PDF title cannot exceed 200 characters"))
		return
	}
	if !models.ValidGenre(genre) {
		writeError(w, apperror.Validation("Invalid genre"))
		return
	}

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			writeError(w, apperror.Validation("Tags must be a JSON array of strings"))
			return
		}
	}
	isPublic := true
	if v := r.FormValue("isPublic"); v != "" {
		isPublic = v == "true"
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, err)
		return
	}

	key, err := h.S3.Upload(r.Context(), "pdfs/", header.Filename, bytes.NewReader(fileBytes), contentTypePDF)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	pdf := &models.Pdf{
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		Genre:       genre,
		SubGenre:    strings.TrimSpace(r.FormValue("subGenre")),
		Tags:        tags,

		FileName: header.Filename,
		S3Key:    key,
		FileSize: header.Size,
		MimeType: contentTypePDF,
		Metadata: models.FileMetadata{
			OriginalName: header.Filename,
			MimeType:     partContentType,
			Extension:    strings.TrimPrefix(ext, "."),
		},

		UploadedBy:     identity.UserID,
		UploaderName:   identity.Name,
		UploaderAvatar: identity.Avatar,

		Author:          strings.TrimSpace(r.FormValue("author")),
		Publisher:       strings.TrimSpace(r.FormValue("publisher")),
		PublicationYear: formInt(r, "publicationYear"),
		ISBN:            strings.TrimSpace(r.FormValue("isbn")),
		Language:        formValueDefault(r, "language", "English"),
		PageCount:       formInt(r, "pageCount"),

		IsPublic:  isPublic,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := h.DB.InsertPdf(r.Context(), pdf)
	if err != nil {
		// Compensating action: don't leave an orphaned object behind.
		if delErr := h.S3.Delete(r.Context(), key); delErr != nil {
			log.Printf("upload: compensating delete of %s: %v", key, delErr)
		}
		writeError(w, err)
		return
	}
	pdf.ID = id

	writeJSON(w, http.StatusCreated, UploadResponse{
		Success: true,
		Message: "PDF uploaded successfully",
		Pdf:     pdf,
	})
}

func formInt(r *http.Request, field string) int {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func formValueDefault(r *http.Request, field, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(field)); v != "" {
		return v
	}
	return fallback
}
