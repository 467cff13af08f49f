package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sreesansree/Quill-Backend/internal/model"
	"github.com/sreesansree/Quill-Backend/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	dob INTEGER NOT NULL,
	profile_picture TEXT,
	preferences TEXT,
	otp TEXT,
	otp_expires_at INTEGER,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_phone ON users(phone);

CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	content TEXT NOT NULL,
	image_url TEXT,
	tags TEXT,
	category TEXT NOT NULL,
	author_id INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author_id);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC);

CREATE TABLE IF NOT EXISTS reactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	article_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(article_id) REFERENCES articles(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_reactions_unique ON reactions(article_id, user_id, kind);
CREATE INDEX IF NOT EXISTS idx_reactions_user_kind ON reactions(user_id, kind);
`,
	// Future migrations go here:
	// Migration 2: `ALTER TABLE ...`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO users (first_name, last_name, email, phone, password_hash, dob, profile_picture, preferences, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, user.FirstName, user.LastName, user.Email, user.Phone, user.HashedPassword, user.DOB.Unix(), nullIfEmpty(user.ProfilePicture), string(prefs), user.CreatedAt.Unix())
	if err != nil {
		return 0, mapUserUniqueViolation(err)
	}
	return res.LastInsertId()
}

const userColumns = `id, first_name, last_name, email, phone, password_hash, dob, profile_picture, preferences, otp, otp_expires_at, created_at`

func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)
	return scanUser(row)
}

func (s *Store) UpdateUserProfile(ctx context.Context, user *model.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE users SET first_name = ?, last_name = ?, email = ?, phone = ?, dob = ?, profile_picture = ?, preferences = ?
WHERE id = ?
`, user.FirstName, user.LastName, user.Email, user.Phone, user.DOB.Unix(), nullIfEmpty(user.ProfilePicture), string(prefs), user.ID)
	if err != nil {
		return mapUserUniqueViolation(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, hashedPassword string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hashedPassword, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetUserOTP(ctx context.Context, id int64, otp string, expiresAt int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET otp = ?, otp_expires_at = ? WHERE id = ?`, otp, expiresAt, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ClearUserOTP(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET otp = NULL, otp_expires_at = NULL WHERE id = ?`, id)
	return err
}

const articleColumns = `
a.id, a.title, a.description, a.content, a.image_url, a.tags, a.category, a.author_id, a.created_at,
u.first_name || ' ' || u.last_name,
(SELECT COUNT(*) FROM reactions r WHERE r.article_id = a.id AND r.kind = 'like'),
(SELECT COUNT(*) FROM reactions r WHERE r.article_id = a.id AND r.kind = 'dislike')`

func (s *Store) CreateArticle(ctx context.Context, article *model.Article) (int64, error) {
	tags, err := json.Marshal(article.Tags)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO articles (title, description, content, image_url, tags, category, author_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, article.Title, nullIfEmpty(article.Description), article.Content, nullIfEmpty(article.ImageURL), string(tags), article.Category, article.AuthorID, article.CreatedAt.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetArticle(ctx context.Context, id int64) (model.Article, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+articleColumns+`
FROM articles a
LEFT JOIN users u ON u.id = a.author_id
WHERE a.id = ?
LIMIT 1
`, id)
	return scanArticle(row)
}

func (s *Store) ListArticlesByAuthor(ctx context.Context, authorID int64, limit int) ([]model.Article, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+articleColumns+`
FROM articles a
LEFT JOIN users u ON u.id = a.author_id
WHERE a.author_id = ?
ORDER BY a.created_at DESC
LIMIT ?
`, authorID, limit)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func (s *Store) ListArticles(ctx context.Context, opts store.ArticleListOpts) ([]model.Article, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	var conds []string
	var args []any
	if len(opts.Categories) > 0 {
		placeholders := strings.Repeat("?,", len(opts.Categories))
		conds = append(conds, fmt.Sprintf("a.category IN (%s)", placeholders[:len(placeholders)-1]))
		for _, c := range opts.Categories {
			args = append(args, c)
		}
	}
	if opts.ExcludeAuthor > 0 {
		conds = append(conds, "a.author_id != ?")
		args = append(args, opts.ExcludeAuthor)
	}
	if opts.ExcludeBlockedBy > 0 {
		conds = append(conds, "a.id NOT IN (SELECT article_id FROM reactions WHERE user_id = ? AND kind = 'block')")
		args = append(args, opts.ExcludeBlockedBy)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT %s
FROM articles a
LEFT JOIN users u ON u.id = a.author_id
%s
ORDER BY a.created_at DESC
LIMIT ?
`, articleColumns, where), args...)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func (s *Store) UpdateArticle(ctx context.Context, article *model.Article) error {
	tags, err := json.Marshal(article.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE articles SET title = ?, description = ?, content = ?, image_url = ?, tags = ?, category = ?
WHERE id = ? AND author_id = ?
`, article.Title, nullIfEmpty(article.Description), article.Content, nullIfEmpty(article.ImageURL), string(tags), article.Category, article.ID, article.AuthorID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteArticle(ctx context.Context, id, authorID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ? AND author_id = ?`, id, authorID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetReaction(ctx context.Context, articleID, userID int64, kind string) error {
	if kind == model.ReactionBlock {
		// Blocking is idempotent.
		_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO reactions (article_id, user_id, kind, created_at)
VALUES (?, ?, ?, ?)
`, articleID, userID, kind, time.Now().Unix())
		return err
	}

	opposite := model.ReactionDislike
	if kind == model.ReactionDislike {
		opposite = model.ReactionLike
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
DELETE FROM reactions WHERE article_id = ? AND user_id = ? AND kind = ?
`, articleID, userID, opposite); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
INSERT INTO reactions (article_id, user_id, kind, created_at)
VALUES (?, ?, ?, ?)
`, articleID, userID, kind, time.Now().Unix()); err != nil {
		if isUniqueViolation(err) {
			err = store.ErrDuplicateReaction
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) HasReaction(ctx context.Context, articleID, userID int64, kind string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM reactions WHERE article_id = ? AND user_id = ? AND kind = ?
`, articleID, userID, kind).Scan(&n)
	return n > 0, err
}

func (s *Store) ListArticlesByReaction(ctx context.Context, userID int64, kind string, limit int) ([]model.Article, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+articleColumns+`
FROM reactions x
JOIN articles a ON a.id = x.article_id
LEFT JOIN users u ON u.id = a.author_id
WHERE x.user_id = ? AND x.kind = ?
ORDER BY x.created_at DESC
LIMIT ?
`, userID, kind, limit)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func (s *Store) GetSiteStats(ctx context.Context) (model.SiteStats, error) {
	var stats model.SiteStats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`)
	if err := row.Scan(&stats.Users); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`)
	if err := row.Scan(&stats.Articles); err != nil {
		return stats, err
	}
	return stats, nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var dob int64
	var picture sql.NullString
	var prefsRaw sql.NullString
	var otp sql.NullString
	var otpExpires sql.NullInt64
	var created int64
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.HashedPassword, &dob, &picture, &prefsRaw, &otp, &otpExpires, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	u.DOB = time.Unix(dob, 0).UTC()
	if picture.Valid {
		u.ProfilePicture = picture.String
	}
	if prefsRaw.Valid && prefsRaw.String != "" {
		_ = json.Unmarshal([]byte(prefsRaw.String), &u.Preferences)
	}
	if otp.Valid {
		u.OTP = otp.String
	}
	if otpExpires.Valid {
		t := time.Unix(otpExpires.Int64, 0)
		u.OTPExpiresAt = &t
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func scanArticle(scanner interface{ Scan(dest ...any) error }) (model.Article, error) {
	var a model.Article
	var description sql.NullString
	var imageURL sql.NullString
	var tagsRaw sql.NullString
	var created int64
	var authorName sql.NullString
	if err := scanner.Scan(&a.ID, &a.Title, &description, &a.Content, &imageURL, &tagsRaw, &a.Category, &a.AuthorID, &created, &authorName, &a.LikeCount, &a.DislikeCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Article{}, store.ErrNotFound
		}
		return model.Article{}, err
	}
	if description.Valid {
		a.Description = description.String
	}
	if imageURL.Valid {
		a.ImageURL = imageURL.String
	}
	if tagsRaw.Valid && tagsRaw.String != "" {
		_ = json.Unmarshal([]byte(tagsRaw.String), &a.Tags)
	}
	if authorName.Valid {
		a.AuthorName = authorName.String
	}
	a.CreatedAt = time.Unix(created, 0)
	return a, nil
}

func collectArticles(rows *sql.Rows) ([]model.Article, error) {
	defer rows.Close()
	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func mapUserUniqueViolation(err error) error {
	if !isUniqueViolation(err) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "users.phone") {
		return store.ErrDuplicatePhone
	}
	return store.ErrDuplicateEmail
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
