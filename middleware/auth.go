package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/studyaivault/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved caller attached to the request context.
type Identity struct {
	UserID primitive.ObjectID
	Email  string
	Name   string
	Avatar string
	Role   string
}

func (id *Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// UserLookup resolves a user ID to its record; the middleware rejects
// inactive or missing users with the same class as a bad token so the
// two cases are indistinguishable to the caller.
type UserLookup func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

// SignToken mints an HS256 token for the user, expiring after ttl.
func SignToken(secret, userID, email string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// resolve verifies the bearer token and loads the active user behind it.
func resolve(ctx context.Context, secret, bearer string, lookup UserLookup) (*Identity, bool) {
	token, err := jwt.ParseWithClaims(bearer, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, false
	}
	user, err := lookup(ctx, userID)
	if err != nil || user == nil || !user.IsActive {
		return nil, false
	}
	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName,
		Avatar: user.Avatar,
		Role:   user.Role,
	}, true
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Auth requires a valid bearer token resolving to an active user.
func Auth(jwtSecret string, lookup UserLookup) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer, ok := bearerToken(r)
			if !ok {
				http.Error(w, `{"success":false,"message":"Access token required"}`, http.StatusUnauthorized)
				return
			}
			identity, ok := resolve(r.Context(), jwtSecret, bearer, lookup)
			if !ok {
				http.Error(w, `{"success":false,"message":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth resolves the caller when a valid token is supplied and
// proceeds anonymously otherwise. Used where responses are personalized
// (e.g. isLiked) but the endpoint itself is public.
func OptionalAuth(jwtSecret string, lookup UserLookup) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bearer, ok := bearerToken(r); ok {
				if identity, ok := resolve(r.Context(), jwtSecret, bearer, lookup); ok {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity attaches the identity to the context the way Auth does.
// Handlers exercised directly use it to supply a caller.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller resolved by Auth/OptionalAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}
