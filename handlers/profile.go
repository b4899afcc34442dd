package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/studyaivault/backend/apperror"
	"github.com/studyaivault/backend/middleware"
	"github.com/studyaivault/backend/models"
	"github.com/studyaivault/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileHandler struct {
	DB *store.DB
}

// GetUser returns a user profile: the full document for the owner, a
// privacy-filtered subset for anyone else.
func (h *ProfileHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperror.Validation("Invalid user id"))
		return
	}
	user, err := h.DB.UserByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil || !user.IsActive {
		writeError(w, apperror.NotFound("User"))
		return
	}

	if identity.UserID != id {
		if !user.Privacy.ProfileVisible {
			writeError(w, apperror.Forbidden("This profile is private"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user":    user.Public(),
		})
		return
	}

	user.CalculateProfileCompletion()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// ProfileUpdateRequest carries the fields a user may change about
// themselves. Pointers distinguish "not sent" from "cleared".
type ProfileUpdateRequest struct {
	FullName       *string                `json:"fullName"`
	Bio            *string                `json:"bio"`
	Location       *string                `json:"location"`
	Website        *string                `json:"website"`
	Avatar         *string                `json:"avatar"`
	BirthDate      *time.Time             `json:"birthDate"`
	FavoriteGenres *[]string              `json:"favoriteGenres"`
	FavoriteBooks  *[]models.FavoriteBook `json:"favoriteBooks"`
	Preferences    *models.Preferences    `json:"preferences"`
	Privacy        *models.Privacy        `json:"privacy"`
}

func (req *ProfileUpdateRequest) apply(user *models.User) error {
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if len(name) < 2 {
			return apperror.Validation("Full name must be at least 2 characters long")
		}
		user.FullName = name
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}
	if req.Website != nil {
		site := strings.TrimSpace(*req.Website)
		if site != "" && !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
			return apperror.Validation("Please enter a valid website URL")
		}
		user.Website = site
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.BirthDate != nil {
		user.BirthDate = req.BirthDate
	}
	if req.FavoriteGenres != nil {
		user.FavoriteGenres = *req.FavoriteGenres
	}
	if req.FavoriteBooks != nil {
		user.FavoriteBooks = *req.FavoriteBooks
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}
	if req.Privacy != nil {
		user.Privacy = *req.Privacy
	}
	return nil
}

// UpdateProfile mutates the caller's own profile. Email, password, role
// and security state are never touched here.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("Invalid request body"))
		return
	}
	user, err := h.DB.UserByID(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeError(w, apperror.NotFound("User"))
		return
	}
	if err := req.apply(user); err != nil {
		writeError(w, err)
		return
	}
	user.CalculateProfileCompletion()
	if err := h.DB.SaveProfile(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

type ReadingStatsRequest struct {
	BooksRead     *int `json:"booksRead"`
	PagesRead     *int `json:"pagesRead"`
	ReadingStreak *int `json:"readingStreak"`
}

// UpdateReadingStats sets the caller's self-reported reading counters.
func (h *ProfileHandler) UpdateReadingStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
		return
	}
	var req ReadingStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("Invalid request body"))
		return
	}
	user, err := h.DB.UserByID(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeError(w, apperror.NotFound("User"))
		return
	}
	stats := user.ReadingStats
	if req.BooksRead != nil {
		stats.BooksRead = *req.BooksRead
	}
	if req.PagesRead != nil {
		stats.PagesRead = *req.PagesRead
	}
	if req.ReadingStreak != nil {
		stats.ReadingStreak = *req.ReadingStreak
	}
	if stats.BooksRead < 0 || stats.PagesRead < 0 || stats.ReadingStreak < 0 {
		writeError(w, apperror.Validation("Reading statistics cannot be negative"))
		return
	}
	if err := h.DB.SaveReadingStats(r.Context(), user.ID, stats); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "Reading statistics updated successfully",
		"readingStats": stats,
	})
}
