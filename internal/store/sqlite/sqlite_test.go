package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sreesansree/Quill-Backend/internal/model"
	"github.com/sreesansree/Quill-Backend/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsnName := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testUser(email, phone string) *model.User {
	return &model.User{
		FirstName:      "Test",
		LastName:       "User",
		Email:          email,
		Phone:          phone,
		HashedPassword: "$2a$04$fakehashfakehashfakehash",
		DOB:            time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Preferences:    []string{"Technology"},
		CreatedAt:      time.Now(),
	}
}

func mustCreateUser(t *testing.T, st *Store, email, phone string) int64 {
	t.Helper()
	id, err := st.CreateUser(context.Background(), testUser(email, phone))
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return id
}

func mustCreateArticle(t *testing.T, st *Store, authorID int64, title, category string) int64 {
	t.Helper()
	id, err := st.CreateArticle(context.Background(), &model.Article{
		Title:     title,
		Content:   "content of " + title,
		Category:  category,
		Tags:      []string{"test"},
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create article %q: %v", title, err)
	}
	return id
}

func TestUserUniqueness(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, st, "ada@example.com", "5550101")

	_, err := st.CreateUser(ctx, testUser("ada@example.com", "5550199"))
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicateEmail", err)
	}

	_, err = st.CreateUser(ctx, testUser("other@example.com", "5550101"))
	if !errors.Is(err, store.ErrDuplicatePhone) {
		t.Fatalf("duplicate phone: got %v, want ErrDuplicatePhone", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id := mustCreateUser(t, st, "ada@example.com", "5550101")

	byID, err := st.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if byID.Email != "ada@example.com" || len(byID.Preferences) != 1 {
		t.Fatalf("unexpected user: %+v", byID)
	}

	byEmail, err := st.GetUserByEmail(ctx, "ada@example.com")
	if err != nil || byEmail.ID != id {
		t.Fatalf("get by email: %v (id %d)", err, byEmail.ID)
	}
	byPhone, err := st.GetUserByPhone(ctx, "5550101")
	if err != nil || byPhone.ID != id {
		t.Fatalf("get by phone: %v (id %d)", err, byPhone.ID)
	}

	if _, err := st.GetUser(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestUserOTPFields(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id := mustCreateUser(t, st, "ada@example.com", "5550101")

	expires := time.Now().Add(10 * time.Minute).Unix()
	if err := st.SetUserOTP(ctx, id, "123456", expires); err != nil {
		t.Fatalf("set otp: %v", err)
	}
	user, err := st.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.OTP != "123456" || user.OTPExpiresAt == nil || user.OTPExpiresAt.Unix() != expires {
		t.Fatalf("otp not stored: %+v", user)
	}

	if err := st.ClearUserOTP(ctx, id); err != nil {
		t.Fatalf("clear otp: %v", err)
	}
	user, _ = st.GetUser(ctx, id)
	if user.OTP != "" || user.OTPExpiresAt != nil {
		t.Fatalf("otp not cleared: %+v", user)
	}

	if err := st.SetUserOTP(ctx, 9999, "123456", expires); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("set otp on missing user: got %v, want ErrNotFound", err)
	}
}

func TestArticleCRUD(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	author := mustCreateUser(t, st, "ada@example.com", "5550101")
	other := mustCreateUser(t, st, "grace@example.com", "5550102")
	id := mustCreateArticle(t, st, author, "First Post", "Technology")

	article, err := st.GetArticle(ctx, id)
	if err != nil {
		t.Fatalf("get article: %v", err)
	}
	if article.AuthorName != "Test User" {
		t.Fatalf("author name: got %q", article.AuthorName)
	}

	article.Title = "Edited Post"
	article.AuthorID = other
	if err := st.UpdateArticle(ctx, &article); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update by non-author: got %v, want ErrNotFound", err)
	}

	article.AuthorID = author
	if err := st.UpdateArticle(ctx, &article); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := st.GetArticle(ctx, id)
	if updated.Title != "Edited Post" {
		t.Fatalf("title not updated: %q", updated.Title)
	}

	if err := st.DeleteArticle(ctx, id, other); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete by non-author: got %v, want ErrNotFound", err)
	}
	if err := st.DeleteArticle(ctx, id, author); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetArticle(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("deleted article still readable: %v", err)
	}
}

func TestReactions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	author := mustCreateUser(t, st, "ada@example.com", "5550101")
	reader := mustCreateUser(t, st, "grace@example.com", "5550102")
	id := mustCreateArticle(t, st, author, "Reactive Post", "Technology")

	if err := st.SetReaction(ctx, id, reader, model.ReactionLike); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := st.SetReaction(ctx, id, reader, model.ReactionLike); !errors.Is(err, store.ErrDuplicateReaction) {
		t.Fatalf("second like: got %v, want ErrDuplicateReaction", err)
	}

	// Disliking replaces the like.
	if err := st.SetReaction(ctx, id, reader, model.ReactionDislike); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	liked, err := st.HasReaction(ctx, id, reader, model.ReactionLike)
	if err != nil || liked {
		t.Fatalf("like should be gone: %v liked=%v", err, liked)
	}
	article, _ := st.GetArticle(ctx, id)
	if article.LikeCount != 0 || article.DislikeCount != 1 {
		t.Fatalf("counts: likes=%d dislikes=%d", article.LikeCount, article.DislikeCount)
	}

	// Blocking is independent and idempotent.
	if err := st.SetReaction(ctx, id, reader, model.ReactionBlock); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := st.SetReaction(ctx, id, reader, model.ReactionBlock); err != nil {
		t.Fatalf("repeat block: %v", err)
	}
	blocked, _ := st.HasReaction(ctx, id, reader, model.ReactionBlock)
	disliked, _ := st.HasReaction(ctx, id, reader, model.ReactionDislike)
	if !blocked || !disliked {
		t.Fatalf("block should not disturb dislike: blocked=%v disliked=%v", blocked, disliked)
	}

	list, err := st.ListArticlesByReaction(ctx, reader, model.ReactionDislike, 10)
	if err != nil || len(list) != 1 || list[0].ID != id {
		t.Fatalf("list by reaction: %v %+v", err, list)
	}
}

func TestReactionsRemovedWithArticle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	author := mustCreateUser(t, st, "ada@example.com", "5550101")
	reader := mustCreateUser(t, st, "grace@example.com", "5550102")
	id := mustCreateArticle(t, st, author, "Short-lived", "Technology")

	if err := st.SetReaction(ctx, id, reader, model.ReactionLike); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := st.DeleteArticle(ctx, id, author); err != nil {
		t.Fatalf("delete: %v", err)
	}
	liked, err := st.HasReaction(ctx, id, reader, model.ReactionLike)
	if err != nil || liked {
		t.Fatalf("reaction should cascade away: %v liked=%v", err, liked)
	}
}

func TestListArticlesFiltering(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, st, "ada@example.com", "5550101")
	grace := mustCreateUser(t, st, "grace@example.com", "5550102")

	tech := mustCreateArticle(t, st, grace, "Tech Post", "Technology")
	mustCreateArticle(t, st, grace, "Food Post", "Food")
	blockedID := mustCreateArticle(t, st, grace, "Blocked Post", "Technology")
	mustCreateArticle(t, st, ada, "Ada's Own", "Technology")

	if err := st.SetReaction(ctx, blockedID, ada, model.ReactionBlock); err != nil {
		t.Fatalf("block: %v", err)
	}

	list, err := st.ListArticles(ctx, store.ArticleListOpts{
		Categories:       []string{"Technology", "Science"},
		ExcludeAuthor:    ada,
		ExcludeBlockedBy: ada,
		Limit:            10,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != tech {
		t.Fatalf("want only the tech post, got %+v", list)
	}

	// No filters returns everything.
	all, err := st.ListArticles(ctx, store.ArticleListOpts{Limit: 10})
	if err != nil || len(all) != 4 {
		t.Fatalf("unfiltered list: %v len=%d", err, len(all))
	}
}

func TestSiteStats(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, st, "ada@example.com", "5550101")
	mustCreateArticle(t, st, ada, "One", "Technology")
	mustCreateArticle(t, st, ada, "Two", "Food")

	stats, err := st.GetSiteStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Users != 1 || stats.Articles != 2 {
		t.Fatalf("stats: %+v", stats)
	}
}
