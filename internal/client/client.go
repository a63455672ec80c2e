// Package client provides a Go client for the Scribe API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a Scribe API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	UserID     string
}

// New creates a new Scribe client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Errors
var (
	ErrAlreadyRegistered = errors.New("email already registered")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Signup creates a new account on the server and stores the returned token.
func (c *Client) Signup(username, email, password string) error {
	reqBody := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}

	resp, err := c.doRequest(http.MethodPost, "/user/signup", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusConflict {
		return ErrAlreadyRegistered
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signup failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		JWT string `json:"jwt"`
		ID  string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return err
	}
	c.Token = result.JWT
	c.UserID = result.ID
	return nil
}

// Signin exchanges credentials for a token and stores it on the client.
func (c *Client) Signin(email, password string) error {
	reqBody := map[string]string{"email": email, "password": password}

	resp, err := c.doRequest(http.MethodPost, "/user/signin", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("signin failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		JWT string `json:"jwt"`
		ID  string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	c.Token = result.JWT
	c.UserID = result.ID
	return nil
}

// IsAuthenticated returns true if the client holds a token.
func (c *Client) IsAuthenticated() bool {
	return c.Token != ""
}

// Post represents a post from the API.
type Post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	AuthorID    string   `json:"authorId"`
	Tags        []string `json:"tags"`
	Readtime    string   `json:"readtime"`
	IsAnonymous bool     `json:"isAnonymous"`
	Author      *Author  `json:"author"`
	Votes       []Vote   `json:"votes"`
}

// Author is the public author summary embedded in posts.
type Author struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfileImg string `json:"profileImg"`
}

// Vote represents a vote from the API.
type Vote struct {
	ID       string `json:"id"`
	PostID   string `json:"postId"`
	UserID   string `json:"userId"`
	VoteType int    `json:"voteType"`
}

// CreatePost publishes a new post and returns its id.
func (c *Client) CreatePost(title, content string, tags []string, readtime string, anonymous bool) (string, error) {
	reqBody := map[string]any{
		"title":       title,
		"content":     content,
		"tags":        tags,
		"readtime":    readtime,
		"isAnonymous": anonymous,
	}

	resp, err := c.doRequest(http.MethodPost, "/blog/post", reqBody)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("create post failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// UpdatePost updates the title and content of a post you own.
func (c *Client) UpdatePost(id, title, content string) error {
	reqBody := map[string]string{"id": id, "title": title, "content": content}

	resp, err := c.doRequest(http.MethodPut, "/blog/update", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update post failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// DeletePost deletes a post you own.
func (c *Client) DeletePost(id string) error {
	resp, err := c.doRequest(http.MethodDelete, "/blog/delete/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete post failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// GetPost fetches a single post with its author and votes.
func (c *Client) GetPost(id string) (*Post, error) {
	resp, err := c.doRequest(http.MethodGet, "/blog/fetch/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get post failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Blog Post `json:"blog"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Blog, nil
}

// ListPosts fetches all posts.
func (c *Client) ListPosts() ([]Post, error) {
	resp, err := c.doRequest(http.MethodGet, "/blog/bulk", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list posts failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Blogs []Post `json:"blogs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Blogs, nil
}

// ListPostsByTags fetches posts carrying every tag in the comma-separated
// list. Pass "nofilter" to fetch everything.
func (c *Client) ListPostsByTags(tags string) ([]Post, error) {
	resp, err := c.doRequest(http.MethodGet, "/blog/allPosts/"+tags, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list posts by tags failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Posts []Post `json:"posts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Posts, nil
}

// Vote records an up or down vote on a post. voteType is 1 or -1.
func (c *Client) Vote(postID string, voteType int) (*Vote, error) {
	reqBody := map[string]any{"postId": postID, "voteType": voteType}

	resp, err := c.doRequest(http.MethodPost, "/blog/vote", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vote failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Vote Vote `json:"vote"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Vote, nil
}

// DeleteVote removes one of your own votes.
func (c *Client) DeleteVote(id string) error {
	resp, err := c.doRequest(http.MethodDelete, "/blog/vote/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete vote failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// doRequest performs an authenticated HTTP request.
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// TestHelper provides utilities for creating authenticated clients in tests.
type TestHelper struct {
	BaseURL string
}

// NewTestHelper creates a new test helper for the given base URL.
func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// CreateAuthenticatedClient signs up a fresh account derived from name and
// returns an authenticated client. This is a convenience method for tests.
func (h *TestHelper) CreateAuthenticatedClient(name string) (*Client, error) {
	c := New(h.BaseURL)
	email := fmt.Sprintf("%s@example.com", name)
	if err := c.Signup(name, email, "hunter22"); err != nil {
		if !errors.Is(err, ErrAlreadyRegistered) {
			return nil, err
		}
		if err := c.Signin(email, "hunter22"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// GetToken creates an account (if needed) and returns a token string.
func (h *TestHelper) GetToken(name string) (string, error) {
	c, err := h.CreateAuthenticatedClient(name)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}
