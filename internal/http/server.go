package httpapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/scribeblog/scribe/internal/auth"
	"github.com/scribeblog/scribe/internal/config"
	"github.com/scribeblog/scribe/internal/model"
	"github.com/scribeblog/scribe/internal/schema"
	"github.com/scribeblog/scribe/internal/store"

	_ "github.com/scribeblog/scribe/docs" // swagger docs

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

type Server struct {
	store store.Store
	auth  *auth.Service
	cfg   config.Config
}

func NewServer(st store.Store, authSvc *auth.Service, cfg config.Config) *Server {
	return &Server{store: st, auth: authSvc, cfg: cfg}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RequestTimeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		r = r.WithContext(ctx)
	}

	if strings.HasPrefix(r.URL.Path, "/swagger/") {
		httpSwagger.WrapHandler.ServeHTTP(w, r)
		return
	}

	segments := splitPath(r.URL.Path)
	if len(segments) == 0 {
		notFound(w)
		return
	}

	switch segments[0] {
	case "blog":
		s.handleBlog(w, r, segments[1:])
	case "user":
		s.handleUser(w, r, segments[1:])
	case "openapi.json":
		if len(segments) == 1 && r.Method == http.MethodGet {
			s.serveOpenAPIJSON(w, r)
			return
		}
		notFound(w)
	default:
		notFound(w)
	}
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request, segments []string) {
	switch {
	case len(segments) == 1 && segments[0] == "bulk":
		if r.Method == http.MethodGet {
			s.handleListPosts(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "fetch":
		if r.Method == http.MethodGet {
			s.handleGetPost(w, r, segments[1])
			return
		}
	case len(segments) == 2 && segments[0] == "allPosts":
		if r.Method == http.MethodGet {
			s.handlePostsByTags(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "post":
		if r.Method == http.MethodPost {
			s.handleCreatePost(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "update":
		if r.Method == http.MethodPut {
			s.handleUpdatePost(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "delete":
		if r.Method == http.MethodDelete {
			s.handleDeletePost(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "vote":
		if r.Method == http.MethodPost {
			s.handleCreateVote(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "vote":
		if r.Method == http.MethodDelete {
			s.handleDeleteVote(w, r, segments[1])
			return
		}
	}
	notFound(w)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) != 1 {
		notFound(w)
		return
	}
	switch segments[0] {
	case "bulk":
		if r.Method == http.MethodGet {
			s.handleListUsers(w, r)
			return
		}
	case "signup":
		if r.Method == http.MethodPost {
			s.handleSignup(w, r)
			return
		}
	case "signin":
		if r.Method == http.MethodPost {
			s.handleSignin(w, r)
			return
		}
	case "completeProfile":
		if r.Method == http.MethodPost {
			s.handleCompleteProfile(w, r)
			return
		}
	case "updateProfile":
		if r.Method == http.MethodPut {
			s.handleUpdateProfile(w, r)
			return
		}
	case "resetPassword":
		if r.Method == http.MethodPost {
			s.handleResetPassword(w, r)
			return
		}
	case "securityQuestion":
		if r.Method == http.MethodPost {
			s.handleSecurityQuestion(w, r)
			return
		}
	case "verifyAnswer":
		if r.Method == http.MethodPost {
			s.handleVerifyAnswer(w, r)
			return
		}
	}
	notFound(w)
}

// handleSignup godoc
//
//	@Summary		Sign up
//	@Description	Create a user and receive a signed token
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		schema.Signup	true	"Signup data"
//	@Success		200		{object}	map[string]string	"jwt, id, username"
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Failure		409		{object}	map[string]string	"Email already registered"
//	@Router			/user/signup [post]
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req schema.Signup
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, err)
		return
	}
	user := model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: hash,
	}
	if err := s.store.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, err)
			return
		}
		s.internalError(w, err)
		return
	}

	token, err := s.auth.Issue(user.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jwt":      token,
		"id":       user.ID,
		"username": user.Username,
	})
}

// handleSignin godoc
//
//	@Summary		Sign in
//	@Description	Exchange email and password for a signed token
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		schema.Signin	true	"Credentials"
//	@Success		200			{object}	map[string]string	"jwt, id, profile fields"
//	@Failure		400			{object}	map[string]string	"Validation error"
//	@Failure		401			{object}	map[string]string	"Incorrect credentials"
//	@Router			/user/signin [post]
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req schema.Signin
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		// Unknown email and wrong password produce the same response.
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, errors.New("incorrect credentials"))
			return
		}
		s.internalError(w, err)
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		writeError(w, http.StatusUnauthorized, errors.New("incorrect credentials"))
		return
	}

	token, err := s.auth.Issue(user.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jwt":              token,
		"id":               user.ID,
		"username":         user.Username,
		"profileImg":       user.ProfileImg,
		"bio":              user.Bio,
		"social":           user.Social,
		"securityQuestion": user.SecurityQuestion,
	})
}

// handleListUsers godoc
//
//	@Summary		List users
//	@Description	Get all registered users (public fields only)
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"users"
//	@Router			/user/bulk [get]
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// handleCompleteProfile godoc
//
//	@Summary		Complete profile
//	@Description	Fill in profile fields for the authenticated user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			profile	body		schema.CompleteProfile	true	"Profile fields"
//	@Success		200		{object}	map[string]string	"Echoed non-secret fields"
//	@Failure		401		{object}	map[string]string	"Unauthorized"
//	@Router			/user/completeProfile [post]
func (s *Server) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req schema.CompleteProfile
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	upd := model.ProfileUpdate{
		ProfileImg:       req.ProfileImg,
		Bio:              req.Bio,
		Social:           req.Social,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAns:      req.SecurityAns,
	}
	if err := s.store.UpdateProfile(r.Context(), userID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "successfully completed profile",
		"profileImg":       deref(req.ProfileImg),
		"bio":              deref(req.Bio),
		"social":           deref(req.Social),
		"securityQuestion": deref(req.SecurityQuestion),
	})
}

// handleUpdateProfile godoc
//
//	@Summary		Update profile
//	@Description	Partially update allow-listed profile fields for the authenticated user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			profile	body		schema.UpdateProfile	true	"Fields to update"
//	@Success		200		{object}	map[string]interface{}	"result, id"
//	@Failure		400		{object}	map[string]string	"Validation error or unknown field"
//	@Failure		401		{object}	map[string]string	"Unauthorized"
//	@Router			/user/updateProfile [put]
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req schema.UpdateProfile
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	upd := model.ProfileUpdate{
		Username:         req.Username,
		ProfileImg:       req.ProfileImg,
		Bio:              req.Bio,
		Social:           req.Social,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAns:      req.SecurityAns,
	}
	if err := s.store.UpdateProfile(r.Context(), userID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": true, "id": userID})
}

// handleResetPassword godoc
//
//	@Summary		Reset password
//	@Description	Overwrite the authenticated user's password
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			password	body		schema.ResetPassword	true	"New password"
//	@Success		200			{object}	map[string]string	"id, message"
//	@Failure		401			{object}	map[string]string	"Unauthorized"
//	@Router			/user/resetPassword [post]
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req schema.ResetPassword
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if err := s.store.UpdatePassword(r.Context(), userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      userID,
		"message": "updated password successfully",
	})
}

// handleSecurityQuestion godoc
//
//	@Summary		Get security question
//	@Description	Fetch the stored security question for an email
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			email	body		schema.SecurityQuestion	true	"Account email"
//	@Success		200		{object}	map[string]string	"question"
//	@Failure		404		{object}	map[string]string	"User not found"
//	@Router			/user/securityQuestion [post]
func (s *Server) handleSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	var req schema.SecurityQuestion
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("user not found"))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": user.SecurityQuestion})
}

// handleVerifyAnswer godoc
//
//	@Summary		Verify security answer
//	@Description	Check the security answer; a correct answer also returns a token for resetPassword
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			answer	body		schema.VerifyAnswer	true	"Email and answer"
//	@Success		200		{object}	map[string]interface{}	"result; id and jwt when correct"
//	@Failure		404		{object}	map[string]string	"User not found"
//	@Router			/user/verifyAnswer [post]
func (s *Server) handleVerifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req schema.VerifyAnswer
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("user not found"))
			return
		}
		s.internalError(w, err)
		return
	}

	given := strings.ToLower(strings.TrimSpace(req.Answer))
	stored := strings.ToLower(strings.TrimSpace(user.SecurityAns))
	if stored == "" || given != stored {
		writeJSON(w, http.StatusOK, map[string]any{"result": false})
		return
	}

	token, err := s.auth.Issue(user.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": true,
		"id":     user.ID,
		"jwt":    token,
	})
}

// handleListPosts godoc
//
//	@Summary		List posts
//	@Description	Get all posts with author summaries
//	@Tags			Blog
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"blogs"
//	@Router			/blog/bulk [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"blogs": posts})
}

// handleGetPost godoc
//
//	@Summary		Get a post
//	@Description	Get a single post with its author summary and vote list
//	@Tags			Blog
//	@Produce		json
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	map[string]interface{}	"blog"
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/blog/fetch/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request, id string) {
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("blog does not exist"))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blog": post})
}

// handlePostsByTags godoc
//
//	@Summary		List posts by tags
//	@Description	Filter posts by a comma-separated tag list; every listed tag must be present. "nofilter" disables filtering.
//	@Tags			Blog
//	@Produce		json
//	@Security		BearerAuth
//	@Param			tags	path		string	true	"Comma-separated tags or nofilter"
//	@Success		200		{object}	map[string]interface{}	"posts"
//	@Failure		401		{object}	map[string]string	"Unauthorized"
//	@Router			/blog/allPosts/{tags} [get]
func (s *Server) handlePostsByTags(w http.ResponseWriter, r *http.Request, tagsParam string) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	tags := splitTags(tagsParam)
	if len(tags) > 0 && strings.EqualFold(tags[0], "nofilter") {
		tags = nil
	}
	posts, err := s.store.ListPostsByTags(r.Context(), tags)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// handleCreatePost godoc
//
//	@Summary		Publish a post
//	@Description	Create a post authored by the authenticated user
//	@Tags			Blog
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post	body		schema.CreatePost	true	"Post data"
//	@Success		200		{object}	map[string]string	"id"
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Failure		401		{object}	map[string]string	"Unauthorized"
//	@Router			/blog/post [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req schema.CreatePost
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// The author is always the verified identity, never a body field.
	post := model.Post{
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		AuthorID:    userID,
		Tags:        req.Tags,
		Readtime:    req.Readtime,
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.store.CreatePost(r.Context(), &post); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": post.ID})
}

// handleUpdatePost godoc
//
//	@Summary		Update a post
//	@Description	Update title and content of your own post
//	@Tags			Blog
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post	body		schema.UpdatePost	true	"Updated fields"
//	@Success		200		{object}	map[string]string	"id"
//	@Failure		401		{object}	map[string]string	"Unauthorized"
//	@Failure		404		{object}	map[string]string	"Not found or not owned"
//	@Router			/blog/update [put]
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req schema.UpdatePost
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.store.UpdatePost(r.Context(), req.ID, userID, strings.TrimSpace(req.Title), req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("no such blog, or you don't have permission to edit it"))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID})
}

// handleDeletePost godoc
//
//	@Summary		Delete a post
//	@Description	Delete your own post
//	@Tags			Blog
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	map[string]string	"id"
//	@Failure		401	{object}	map[string]string	"Unauthorized"
//	@Failure		404	{object}	map[string]string	"Not found or not owned"
//	@Router			/blog/delete/{id} [delete]
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if err := s.store.DeletePost(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("no such blog, or you don't have permission to delete it"))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

// handleCreateVote godoc
//
//	@Summary		Vote on a post
//	@Description	Record an up or down vote by the authenticated user
//	@Tags			Votes
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			vote	body		schema.Vote	true	"Vote data (voteType: 1 or -1)"
//	@Success		200		{object}	map[string]interface{}	"vote"
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Failure		401		{object}	map[string]string	"Unauthorized"
//	@Failure		404		{object}	map[string]string	"Post not found"
//	@Router			/blog/vote [post]
func (s *Server) handleCreateVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req schema.Vote
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	vote := model.Vote{
		PostID:   req.PostID,
		UserID:   userID,
		VoteType: req.VoteType,
	}
	if err := s.store.CreateVote(r.Context(), &vote); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("blog does not exist"))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vote": vote})
}

// handleDeleteVote godoc
//
//	@Summary		Remove a vote
//	@Description	Delete one of your own votes by id
//	@Tags			Votes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Vote ID"
//	@Success		200	{object}	map[string]string	"id"
//	@Failure		401	{object}	map[string]string	"Unauthorized"
//	@Failure		404	{object}	map[string]string	"Not found or not owned"
//	@Router			/blog/vote/{id} [delete]
func (s *Server) handleDeleteVote(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteVote(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("no such vote, or you don't have permission to delete it"))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(doc))
}

// requireAuth extracts the bearer token from the authorization header, verifies
// it, and returns the bound user id. The token is the second space-separated
// segment; a missing segment feeds an empty string to the codec, which fails.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (string, bool) {
	segs := strings.Split(r.Header.Get("Authorization"), " ")
	token := ""
	if len(segs) > 1 {
		token = segs[1]
	}
	userID, err := s.auth.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, errors.New("unauthorised"))
		return "", false
	}
	return userID, true
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func splitTags(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var tags []string
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
