package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scribeblog/scribe/internal/model"
	"github.com/scribeblog/scribe/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens the shared connection pool and applies pending migrations.
// Called once at startup; handlers borrow connections per call.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
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
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	password TEXT NOT NULL,
	profile_img TEXT,
	bio TEXT,
	social TEXT,
	security_question TEXT,
	security_ans TEXT,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	author_id TEXT NOT NULL,
	tags TEXT,
	readtime TEXT,
	views INTEGER NOT NULL DEFAULT 0,
	is_anonymous INTEGER NOT NULL DEFAULT 0,
	published_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts(published_at DESC);

CREATE TABLE IF NOT EXISTS votes (
	id TEXT PRIMARY KEY,
	post_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	vote_type INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(post_id) REFERENCES posts(id),
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_votes_post_id ON votes(post_id);
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

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password, profile_img, bio, social, security_question, security_ans, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, user.ID, user.Username, user.Email, user.Password, nullIfEmpty(user.ProfileImg), nullIfEmpty(user.Bio),
		nullIfEmpty(user.Social), nullIfEmpty(user.SecurityQuestion), nullIfEmpty(user.SecurityAns), user.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

const userColumns = `id, username, email, password, profile_img, bio, social, security_question, security_ans, created_at`

func (s *Store) GetUserByID(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) error {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(column string, v *string) {
		if v != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *v)
		}
	}
	add("username", upd.Username)
	add("profile_img", upd.ProfileImg)
	add("bio", upd.Bio)
	add("social", upd.Social)
	add("security_question", upd.SecurityQuestion)
	add("security_ans", upd.SecurityAns)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now()
	if post.PublishedAt.IsZero() {
		post.PublishedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = now
	}
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO posts (id, title, content, author_id, tags, readtime, views, is_anonymous, published_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, post.ID, post.Title, post.Content, post.AuthorID, string(tags), nullIfEmpty(post.Readtime),
		post.Views, boolToInt(post.IsAnonymous), post.PublishedAt.Unix(), post.UpdatedAt.Unix())
	return err
}

const postColumns = `p.id, p.title, p.content, p.author_id, p.tags, p.readtime, p.views, p.is_anonymous, p.published_at, p.updated_at, u.username, u.profile_img`

func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+postColumns+`
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
WHERE p.id = ?
LIMIT 1
`, id)
	post, err := scanPost(row)
	if err != nil {
		return model.Post{}, err
	}
	votes, err := s.listVotesByPost(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	post.Votes = votes
	return post, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]model.Post, error) {
	return s.queryPosts(ctx, `
SELECT `+postColumns+`
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
ORDER BY p.published_at DESC
`)
}

func (s *Store) ListPostsByTags(ctx context.Context, tags []string) ([]model.Post, error) {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return posts, nil
	}
	want := make([]string, len(tags))
	for i, t := range tags {
		want[i] = strings.ToLower(strings.TrimSpace(t))
	}
	var filtered []model.Post
	for _, p := range posts {
		have := make(map[string]bool, len(p.Tags))
		for _, t := range p.Tags {
			have[strings.ToLower(t)] = true
		}
		matches := true
		for _, t := range want {
			if !have[t] {
				matches = false
				break
			}
		}
		if matches {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Store) UpdatePost(ctx context.Context, id, authorID, title, content string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE posts SET title = ?, content = ?, updated_at = ?
WHERE id = ? AND author_id = ?
`, title, content, time.Now().Unix(), id, authorID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id, authorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Votes fall with the post, but only once the compound match confirms
	// the caller owns it. A zero-row match rolls the vote cleanup back.
	if _, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE post_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ? AND author_id = ?`, id, authorID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		err = store.ErrNotFound
		return err
	}
	return tx.Commit()
}

func (s *Store) CreateVote(ctx context.Context, vote *model.Vote) error {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO votes (id, post_id, user_id, vote_type, created_at)
VALUES (?, ?, ?, ?, ?)
`, vote.ID, vote.PostID, vote.UserID, vote.VoteType, vote.CreatedAt.Unix())
	if err != nil {
		// A vote pointing at a missing post trips the FK constraint.
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) DeleteVote(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) listVotesByPost(ctx context.Context, postID string) ([]model.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, post_id, user_id, vote_type, created_at
FROM votes
WHERE post_id = ?
ORDER BY created_at ASC
`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		var created int64
		if err := rows.Scan(&v.ID, &v.PostID, &v.UserID, &v.VoteType, &created); err != nil {
			return nil, err
		}
		v.CreatedAt = time.Unix(created, 0)
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (model.User, error) {
	var u model.User
	var profileImg, bio, social, question, answer sql.NullString
	var created int64
	if err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &profileImg, &bio, &social, &question, &answer, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	u.ProfileImg = profileImg.String
	u.Bio = bio.String
	u.Social = social.String
	u.SecurityQuestion = question.String
	u.SecurityAns = answer.String
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func scanPost(scanner interface{ Scan(dest ...any) error }) (model.Post, error) {
	var p model.Post
	var tagsRaw, readtime sql.NullString
	var isAnonymous int
	var published, updated int64
	var authorName, authorImg sql.NullString
	if err := scanner.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &tagsRaw, &readtime,
		&p.Views, &isAnonymous, &published, &updated, &authorName, &authorImg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, store.ErrNotFound
		}
		return model.Post{}, err
	}
	if tagsRaw.Valid && tagsRaw.String != "" {
		if err := json.Unmarshal([]byte(tagsRaw.String), &p.Tags); err != nil {
			return model.Post{}, fmt.Errorf("decode tags for post %s: %w", p.ID, err)
		}
	}
	p.Readtime = readtime.String
	p.IsAnonymous = isAnonymous == 1
	p.PublishedAt = time.Unix(published, 0)
	p.UpdatedAt = time.Unix(updated, 0)
	if authorName.Valid {
		p.Author = &model.AuthorSummary{
			ID:         p.AuthorID,
			Username:   authorName.String,
			ProfileImg: authorImg.String,
		}
	}
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
