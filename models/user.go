package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants for user authorization.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account lockout policy: after MaxLoginAttempts consecutive failed
// password checks the account is locked for LockDuration.
const (
	MaxLoginAttempts = 5
	LockDuration     = 15 * time.Minute
)

// FavoriteBook is an entry in a user's ordered favorite-books list.
type FavoriteBook struct {
	Title  string `bson:"title" json:"title"`
	Author string `bson:"author" json:"author"`
	ISBN   string `bson:"isbn,omitempty" json:"isbn,omitempty"`
}

// Preferences holds client display settings stored with the account.
type Preferences struct {
	Theme              string `bson:"theme" json:"theme"` // light, dark, auto
	EmailNotifications bool   `bson:"emailNotifications" json:"emailNotifications"`
	PushNotifications  bool   `bson:"pushNotifications" json:"pushNotifications"`
}

// Privacy controls what other users may see of a profile.
type Privacy struct {
	ProfileVisible    bool `bson:"profileVisible" json:"profileVisible"`
	ShowReadingStats  bool `bson:"showReadingStats" json:"showReadingStats"`
	ShowFavoriteBooks bool `bson:"showFavoriteBooks" json:"showFavoriteBooks"`
}

// ReadingStats are self-reported reading counters.
type ReadingStats struct {
	BooksRead     int `bson:"booksRead" json:"booksRead"`
	PagesRead     int `bson:"pagesRead" json:"pagesRead"`
	ReadingStreak int `bson:"readingStreak" json:"readingStreak"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // bcrypt hash
	Role     string             `bson:"role" json:"role"`  // user, admin
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`

	// Profile
	Bio               string         `bson:"bio,omitempty" json:"bio,omitempty"`
	Location          string         `bson:"location,omitempty" json:"location,omitempty"`
	Website           string         `bson:"website,omitempty" json:"website,omitempty"`
	BirthDate         *time.Time     `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	FavoriteGenres    []string       `bson:"favoriteGenres,omitempty" json:"favoriteGenres,omitempty"`
	FavoriteBooks     []FavoriteBook `bson:"favoriteBooks,omitempty" json:"favoriteBooks,omitempty"`
	Preferences       Preferences    `bson:"preferences" json:"preferences"`
	Privacy           Privacy        `bson:"privacy" json:"privacy"`
	ReadingStats      ReadingStats   `bson:"readingStats" json:"readingStats"`
	ProfileCompletion int            `bson:"profileCompletion" json:"profileCompletion"`

	// Security state
	IsEmailVerified      bool       `bson:"isEmailVerified" json:"isEmailVerified"`
	VerificationToken    string     `bson:"verificationToken,omitempty" json:"-"`
	ResetPasswordToken   string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `bson:"resetPasswordExpires,omitempty" json:"-"`
	LoginAttempts        int        `bson:"loginAttempts" json:"-"`
	LockUntil            *time.Time `bson:"lockUntil,omitempty" json:"-"`
	LastLogin            *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`

	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewUser returns a user with defaults matching a fresh signup: active,
// unverified, user role, all counters at zero.
func NewUser(fullName, email, passwordHash string, now time.Time) *User {
	return &User{
		FullName: fullName,
		Email:    email,
		Password: passwordHash,
		Role:     RoleUser,
		Preferences: Preferences{
			Theme:              "auto",
			EmailNotifications: true,
			PushNotifications:  true,
		},
		Privacy: Privacy{
			ProfileVisible:    true,
			ShowReadingStats:  true,
			ShowFavoriteBooks: true,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsLocked reports whether the account is locked out at the given time.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// RegisterFailedLogin increments the failed-attempt counter and, on the
// fifth consecutive failure, locks the account for LockDuration.
// Returns true if this call locked the account.
func (u *User) RegisterFailedLogin(now time.Time) bool {
	u.LoginAttempts++
	if u.LoginAttempts >= MaxLoginAttempts {
		until := now.Add(LockDuration)
		u.LockUntil = &until
		return true
	}
	return false
}

// ResetLock clears lockout state after a successful password check and
// records the login time.
func (u *User) ResetLock(now time.Time) {
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = &now
}

// profileFields lists the optional profile fields that count toward
// completion. Each populated field contributes an equal share.
func (u *User) profileFields() []bool {
	return []bool{
		u.Bio != "",
		u.Location != "",
		u.Website != "",
		u.BirthDate != nil,
		u.Avatar != "",
		len(u.FavoriteGenres) > 0,
		len(u.FavoriteBooks) > 0,
	}
}

// CalculateProfileCompletion recomputes the 0-100 completion percentage
// from which optional profile fields are populated, and stores it.
func (u *User) CalculateProfileCompletion() int {
	fields := u.profileFields()
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	u.ProfileCompletion = filled * 100 / len(fields)
	return u.ProfileCompletion
}

// PublicProfile is the subset of a user visible to other users,
// filtered by the owner's privacy settings.
type PublicProfile struct {
	ID                primitive.ObjectID `json:"id"`
	FullName          string             `json:"fullName"`
	Avatar            string             `json:"avatar,omitempty"`
	Bio               string             `json:"bio,omitempty"`
	Location          string             `json:"location,omitempty"`
	FavoriteGenres    []string           `json:"favoriteGenres,omitempty"`
	ReadingStats      *ReadingStats      `json:"readingStats,omitempty"`
	FavoriteBooks     []FavoriteBook     `json:"favoriteBooks,omitempty"`
	ProfileCompletion int                `json:"profileCompletion"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// Public returns the privacy-filtered view of the user.
func (u *User) Public() *PublicProfile {
	p := &PublicProfile{
		ID:                u.ID,
		FullName:          u.FullName,
		Avatar:            u.Avatar,
		Bio:               u.Bio,
		Location:          u.Location,
		FavoriteGenres:    u.FavoriteGenres,
		ProfileCompletion: u.ProfileCompletion,
		CreatedAt:         u.CreatedAt,
	}
	if u.Privacy.ShowReadingStats {
		stats := u.ReadingStats
		p.ReadingStats = &stats
	}
	if u.Privacy.ShowFavoriteBooks {
		p.FavoriteBooks = u.FavoriteBooks
	}
	return p
}
