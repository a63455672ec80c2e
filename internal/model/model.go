package model

import "time"

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Password         string    `json:"-"`
	ProfileImg       string    `json:"profileImg,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	Social           string    `json:"social,omitempty"`
	SecurityQuestion string    `json:"securityQuestion,omitempty"`
	SecurityAns      string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AuthorSummary is the nested author shape embedded in post responses.
type AuthorSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfileImg string `json:"profileImg,omitempty"`
}

type Post struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	AuthorID    string         `json:"authorId"`
	Tags        []string       `json:"tags"`
	Readtime    string         `json:"readtime,omitempty"`
	Views       int            `json:"views"`
	IsAnonymous bool           `json:"isAnonymous"`
	PublishedAt time.Time      `json:"publishedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Author      *AuthorSummary `json:"author,omitempty"`
	Votes       []Vote         `json:"votes,omitempty"`
}

type Vote struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	VoteType  int       `json:"voteType"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileUpdate carries the allow-listed mutable profile fields. Nil pointers
// leave the stored value untouched.
type ProfileUpdate struct {
	Username         *string
	ProfileImg       *string
	Bio              *string
	Social           *string
	SecurityQuestion *string
	SecurityAns      *string
}
