// Package schema defines the request payloads accepted at the API boundary.
// Each type doubles as the decode target and the runtime validator: handlers
// decode into the struct and call Validate before touching the store.
package schema

import (
	"errors"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 6

type Signup struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Signup) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if !emailRe.MatchString(r.Email) {
		return errors.New("valid email is required")
	}
	if len(r.Password) < minPasswordLen {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

type Signin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Signin) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return errors.New("valid email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type CreatePost struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Readtime    string   `json:"readtime"`
	IsAnonymous bool     `json:"isAnonymous"`
}

func (r *CreatePost) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

type UpdatePost struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r *UpdatePost) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

// CompleteProfile is a partial update like UpdateProfile: absent fields stay
// nil so a body carrying only bio cannot blank out the recovery question.
type CompleteProfile struct {
	ProfileImg       *string `json:"profileImg"`
	Bio              *string `json:"bio"`
	Social           *string `json:"social"`
	SecurityQuestion *string `json:"securityQuestion"`
	SecurityAns      *string `json:"securityAns"`
}

func (r *CompleteProfile) Validate() error {
	if r.SecurityQuestion != nil && strings.TrimSpace(*r.SecurityQuestion) != "" &&
		(r.SecurityAns == nil || strings.TrimSpace(*r.SecurityAns) == "") {
		return errors.New("securityAns is required with securityQuestion")
	}
	return nil
}

// UpdateProfile carries only the allow-listed mutable fields. Unknown fields
// are rejected at decode time; absent fields stay nil and untouched.
type UpdateProfile struct {
	Username         *string `json:"username"`
	ProfileImg       *string `json:"profileImg"`
	Bio              *string `json:"bio"`
	Social           *string `json:"social"`
	SecurityQuestion *string `json:"securityQuestion"`
	SecurityAns      *string `json:"securityAns"`
}

func (r *UpdateProfile) Validate() error {
	if r.Username == nil && r.ProfileImg == nil && r.Bio == nil && r.Social == nil &&
		r.SecurityQuestion == nil && r.SecurityAns == nil {
		return errors.New("no updatable fields provided")
	}
	if r.Username != nil && strings.TrimSpace(*r.Username) == "" {
		return errors.New("username cannot be empty")
	}
	return nil
}

type ResetPassword struct {
	Password string `json:"password"`
}

func (r *ResetPassword) Validate() error {
	if len(r.Password) < minPasswordLen {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

type SecurityQuestion struct {
	Email string `json:"email"`
}

func (r *SecurityQuestion) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return errors.New("valid email is required")
	}
	return nil
}

type VerifyAnswer struct {
	Email  string `json:"email"`
	Answer string `json:"answer"`
}

func (r *VerifyAnswer) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return errors.New("valid email is required")
	}
	if strings.TrimSpace(r.Answer) == "" {
		return errors.New("answer is required")
	}
	return nil
}

type Vote struct {
	PostID   string `json:"postId"`
	VoteType int    `json:"voteType"`
}

func (r *Vote) Validate() error {
	if r.PostID == "" {
		return errors.New("postId is required")
	}
	if r.VoteType != 1 && r.VoteType != -1 {
		return errors.New("voteType must be 1 or -1")
	}
	return nil
}
