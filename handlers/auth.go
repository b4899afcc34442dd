package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/studyaivault/backend/apperror"
	"github.com/studyaivault/backend/middleware"
	"github.com/studyaivault/backend/models"
	"github.com/studyaivault/backend/service"
	"github.com/studyaivault/backend/store"
	"github.com/studyaivault/backend/utils"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthHandler struct {
	DB        *store.DB
	JWTSecret string
	JWTExpiry time.Duration
	Mailer    *service.Mailer // nil when SMTP is not configured
}

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and signin.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

func validateSignup(req *SignupRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case req.FullName == "" || req.Email == "" || req.Password == "":
		return apperror.Validation("All fields are required")
	case len(req.FullName) < 2:
		return apperror.Validation("Full name must be at least 2 characters long")
	case !emailPattern.MatchString(req.Email):
		return apperror.Validation("Please enter a valid email address")
	case len(req.Password) < 6:
		return apperror.Validation("Password must be at least 6 characters long")
	}
	return nil
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("Invalid request body"))
		return
	}
	if err := validateSignup(&req); err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.DB.ActiveUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing != nil {
		writeError(w, apperror.Conflict("User already exists with this email address"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		writeError(w, err)
		return
	}
	user := models.NewUser(req.FullName, req.Email, string(hash), time.Now())
	id, err := h.DB.CreateUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	user.ID = id

	token, err := middleware.SignToken(h.JWTSecret, user.ID.Hex(), user.Email, h.JWTExpiry)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Mailer != nil {
		h.sendVerificationMail(user)
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully!",
		User:    user,
		Token:   token,
	})
}

// sendVerificationMail stores a fresh verification token and mails the
// link in the background; failures are logged, never surfaced, so a
// broken SMTP setup cannot block signup.
func (h *AuthHandler) sendVerificationMail(user *models.User) {
	verifyToken, err := utils.NewRandomToken()
	if err != nil {
		log.Printf("signup: verification token: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.DB.SetVerificationToken(ctx, user.ID, verifyToken); err != nil {
		log.Printf("signup: store verification token: %v", err)
		return
	}
	go func() {
		if err := h.Mailer.SendVerificationEmail(user.Email, user.FullName, verifyToken); err != nil {
			log.Printf("signup: verification mail to %s: %v", user.Email, err)
		}
	}()
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("Invalid request body"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, apperror.Validation("Email and password are required"))
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeError(w, apperror.Validation("Please enter a valid email address"))
		return
	}

	user, err := h.DB.ActiveUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	// Unknown user gets the same message as a wrong password so account
	// existence cannot be probed.
	if user == nil {
		writeError(w, apperror.Authentication("Invalid email or password"))
		return
	}

	now := time.Now()
	if user.IsLocked(now) {
		writeError(w, apperror.Authentication("Account is temporarily locked due to too many failed login attempts"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		user.RegisterFailedLogin(now)
		if err := h.DB.SaveLoginState(r.Context(), user); err != nil {
			log.Printf("signin: save login state: %v", err)
		}
		writeError(w, apperror.Authentication("Invalid email or password"))
		return
	}

	user.ResetLock(now)
	if err := h.DB.SaveLoginState(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	token, err := middleware.SignToken(h.JWTSecret, user.ID.Hex(), user.Email, h.JWTExpiry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Welcome back!",
		User:    user,
		Token:   token,
	})
}

// Profile returns the authenticated user with a fresh completion score.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Authentication("Access token required"))
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
	user.CalculateProfileCompletion()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// VerifyEmail handles the link sent by the verification mailer.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, apperror.Validation("Verification token is required"))
		return
	}
	ok, err := h.DB.VerifyEmailByToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, apperror.NotFound("Verification token"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Email verified successfully",
	})
}
