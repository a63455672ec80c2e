package store

import (
	"context"
	"errors"

	"github.com/scribeblog/scribe/internal/model"
)

var (
	// ErrNotFound covers both a missing row and an ownership-scoped mutation
	// that matched nothing; callers cannot tell the two apart.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Store interface {
	UserStore
	PostStore
	VoteStore
	Close() error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	// GetPost returns the post with its author summary and vote list.
	GetPost(ctx context.Context, id string) (model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	// ListPostsByTags returns posts carrying every tag in tags
	// (case-insensitive). An empty slice disables filtering.
	ListPostsByTags(ctx context.Context, tags []string) ([]model.Post, error)
	// UpdatePost mutates title and content of the row matching both id and
	// authorID in one statement; ErrNotFound when no row matches.
	UpdatePost(ctx context.Context, id, authorID, title, content string) error
	// DeletePost removes the row matching both id and authorID.
	DeletePost(ctx context.Context, id, authorID string) error
}

type VoteStore interface {
	CreateVote(ctx context.Context, vote *model.Vote) error
	// DeleteVote removes the vote matching both id and userID.
	DeleteVote(ctx context.Context, id, userID string) error
}
