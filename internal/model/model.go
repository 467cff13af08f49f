package model

import "time"

// Categories is the fixed set of article categories. User preferences and
// article categories must be drawn from this list.
var Categories = []string{
	"Technology",
	"Health",
	"Sports",
	"Politics",
	"Business",
	"Education",
	"Lifestyle",
	"Travel",
	"Food",
	"Science",
	"Entertainment",
}

func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

type User struct {
	ID             int64      `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	HashedPassword string     `json:"-"`
	DOB            time.Time  `json:"dob"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Preferences    []string   `json:"preferences"`
	OTP            string     `json:"-"`
	OTPExpiresAt   *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PendingRegistration holds registration data awaiting OTP confirmation.
// It exists only in the pending table, never in the database.
type PendingRegistration struct {
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	HashedPassword string
	DOB            time.Time
	Preferences    []string
	OTP            string
	OTPExpiresAt   time.Time
}

type Article struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"image_url,omitempty"`
	Tags         []string  `json:"tags"`
	Category     string    `json:"category"`
	AuthorID     int64     `json:"author_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Reaction kinds. Like and dislike are mutually exclusive per user per
// article; block is independent.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
	ReactionBlock   = "block"
)

type Reaction struct {
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type SiteStats struct {
	Users    int64 `json:"users"`
	Articles int64 `json:"articles"`
}
