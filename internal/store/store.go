package store

import (
	"context"
	"errors"

	"github.com/sreesansree/Quill-Backend/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicatePhone    = errors.New("phone already registered")
	ErrDuplicateReaction = errors.New("duplicate reaction")
)

type ArticleListOpts struct {
	Limit      int
	Categories []string
	// ExcludeAuthor drops articles written by this user (preference feed
	// never shows the caller's own articles).
	ExcludeAuthor int64
	// ExcludeBlockedBy drops articles this user has blocked.
	ExcludeBlockedBy int64
}

type Store interface {
	UserStore
	ArticleStore
	ReactionStore
	GetSiteStats(ctx context.Context) (model.SiteStats, error)
	Close() error
}

// UserStore is the credential store. Email and phone uniqueness are
// enforced by the storage layer, not just by flow-level checks.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (model.User, error)
	UpdateUserProfile(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, id int64, hashedPassword string) error
	SetUserOTP(ctx context.Context, id int64, otp string, expiresAt int64) error
	ClearUserOTP(ctx context.Context, id int64) error
}

type ArticleStore interface {
	CreateArticle(ctx context.Context, article *model.Article) (int64, error)
	GetArticle(ctx context.Context, id int64) (model.Article, error)
	ListArticlesByAuthor(ctx context.Context, authorID int64, limit int) ([]model.Article, error)
	ListArticles(ctx context.Context, opts ArticleListOpts) ([]model.Article, error)
	UpdateArticle(ctx context.Context, article *model.Article) error
	DeleteArticle(ctx context.Context, id, authorID int64) error
}

// ReactionStore tracks like/dislike/block membership per article.
// SetReaction for like or dislike must atomically clear the opposite kind.
type ReactionStore interface {
	SetReaction(ctx context.Context, articleID, userID int64, kind string) error
	HasReaction(ctx context.Context, articleID, userID int64, kind string) (bool, error)
	ListArticlesByReaction(ctx context.Context, userID int64, kind string, limit int) ([]model.Article, error)
}
