package httpapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scribeblog/scribe/internal/auth"
	"github.com/scribeblog/scribe/internal/client"
	"github.com/scribeblog/scribe/internal/config"
	"github.com/scribeblog/scribe/internal/model"
	"github.com/scribeblog/scribe/internal/store/sqlite"
)

type testClient struct {
	server *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	cfg := config.Config{
		Secret:         "test-secret",
		RequestTimeout: 5 * time.Second,
	}
	dsnName := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	authSvc := auth.NewService(cfg.Secret, time.Hour)
	server := NewServer(st, authSvc, cfg)
	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		_ = st.Close()
	})
	return &testClient{server: ts, client: ts.Client()}
}

func (c *testClient) doJSON(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (c *testClient) postJSON(t *testing.T, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	return c.doJSON(t, http.MethodPost, path, body, headers)
}

func (c *testClient) putJSON(t *testing.T, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	return c.doJSON(t, http.MethodPut, path, body, headers)
}

func (c *testClient) get(t *testing.T, path string, headers map[string]string) *http.Response {
	t.Helper()
	return c.doJSON(t, http.MethodGet, path, nil, headers)
}

func (c *testClient) delete(t *testing.T, path string, headers map[string]string) *http.Response {
	t.Helper()
	return c.doJSON(t, http.MethodDelete, path, nil, headers)
}

func decodeJSON[T any](t *testing.T, resp *http.Response, out *T) {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("json decode: %v (body %s)", err, string(body))
	}
}

// createTestAccount creates an account and returns a valid token
func createTestAccount(t *testing.T, tc *testClient, name string) string {
	t.Helper()
	helper := client.NewTestHelper(tc.server.URL)
	token, err := helper.GetToken(name)
	if err != nil {
		t.Fatalf("create test account: %v", err)
	}
	return token
}

func TestSignupSigninFlow(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.postJSON(t, "/user/signup", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("signup status %d: %s", resp.StatusCode, string(b))
	}
	var signupResp struct {
		JWT      string `json:"jwt"`
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	decodeJSON(t, resp, &signupResp)
	if signupResp.JWT == "" {
		t.Fatalf("expected jwt in signup response")
	}
	if signupResp.Username != "alice" {
		t.Fatalf("expected username alice, got %q", signupResp.Username)
	}

	resp = tc.postJSON(t, "/user/signin", map[string]any{
		"email":    "alice@example.com",
		"password": "hunter22",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("signin status %d: %s", resp.StatusCode, string(b))
	}
	var signinResp struct {
		JWT string `json:"jwt"`
		ID  string `json:"id"`
	}
	decodeJSON(t, resp, &signinResp)
	if signinResp.JWT == "" {
		t.Fatalf("expected jwt in signin response")
	}
	if signinResp.ID != signupResp.ID {
		t.Fatalf("expected same user id across signup and signin")
	}

	resp = tc.postJSON(t, "/user/signin", map[string]any{
		"email":    "alice@example.com",
		"password": "wrongpass",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 401 for wrong password, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/signin", map[string]any{
		"email":    "nobody@example.com",
		"password": "hunter22",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 401 for unknown email, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()
}

func TestDuplicateEmailSignup(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.postJSON(t, "/user/signup", map[string]any{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "hunter22",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("first signup status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/signup", map[string]any{
		"username": "bob2",
		"email":    "bob@example.com",
		"password": "hunter22",
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 409 for duplicate email, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()
}

func TestSignupValidation(t *testing.T) {
	tc := newTestClient(t)

	cases := []map[string]any{
		{"username": "x", "email": "not-an-email", "password": "hunter22"},
		{"username": "x", "email": "x@example.com", "password": "short"},
		{"username": "", "email": "x@example.com", "password": "hunter22"},
	}
	for i, body := range cases {
		resp := tc.postJSON(t, "/user/signup", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			t.Fatalf("case %d: expected 400, got %d: %s", i, resp.StatusCode, string(b))
		}
		resp.Body.Close()
	}
}

func TestPostLifecycle(t *testing.T) {
	tc := newTestClient(t)

	token := createTestAccount(t, tc, "lifecycle")
	headers := map[string]string{"Authorization": "Bearer " + token}

	resp := tc.postJSON(t, "/blog/post", map[string]any{
		"title":    "Integration Post",
		"content":  "Some body text.",
		"tags":     []string{"go", "testing"},
		"readtime": "3 min",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("create post status %d: %s", resp.StatusCode, string(b))
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)
	if created.ID == "" {
		t.Fatalf("expected post id")
	}

	resp = tc.get(t, "/blog/fetch/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("fetch post status %d: %s", resp.StatusCode, string(b))
	}
	var fetched struct {
		Blog model.Post `json:"blog"`
	}
	decodeJSON(t, resp, &fetched)
	if fetched.Blog.Title != "Integration Post" {
		t.Fatalf("expected title round-trip, got %q", fetched.Blog.Title)
	}
	if fetched.Blog.Author == nil || fetched.Blog.Author.Username != "lifecycle" {
		t.Fatalf("expected author summary on fetched post, got %+v", fetched.Blog.Author)
	}

	resp = tc.putJSON(t, "/blog/update", map[string]any{
		"id":      created.ID,
		"title":   "Updated Title",
		"content": "Updated body.",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("update post status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.get(t, "/blog/fetch/"+created.ID, nil)
	decodeJSON(t, resp, &fetched)
	if fetched.Blog.Title != "Updated Title" {
		t.Fatalf("expected updated title, got %q", fetched.Blog.Title)
	}

	resp = tc.delete(t, "/blog/delete/"+created.ID, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("delete post status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.get(t, "/blog/fetch/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 404 after delete, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()
}

func TestOwnershipEnforcement(t *testing.T) {
	tc := newTestClient(t)

	ownerToken := createTestAccount(t, tc, "owner")
	otherToken := createTestAccount(t, tc, "intruder")
	ownerHeaders := map[string]string{"Authorization": "Bearer " + ownerToken}
	otherHeaders := map[string]string{"Authorization": "Bearer " + otherToken}

	resp := tc.postJSON(t, "/blog/post", map[string]any{
		"title":   "Owned Post",
		"content": "Mine.",
	}, ownerHeaders)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("create post status %d: %s", resp.StatusCode, string(b))
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)

	resp = tc.postJSON(t, "/blog/vote", map[string]any{
		"postId":   created.ID,
		"voteType": 1,
	}, otherHeaders)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("vote status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.putJSON(t, "/blog/update", map[string]any{
		"id":      created.ID,
		"title":   "Hijacked",
		"content": "Not yours.",
	}, otherHeaders)
	if resp.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 404 for non-owner update, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.delete(t, "/blog/delete/"+created.ID, otherHeaders)
	if resp.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 404 for non-owner delete, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	// Untouched, votes included
	resp = tc.get(t, "/blog/fetch/"+created.ID, nil)
	var fetched struct {
		Blog model.Post `json:"blog"`
	}
	decodeJSON(t, resp, &fetched)
	if fetched.Blog.Title != "Owned Post" {
		t.Fatalf("expected post untouched, got title %q", fetched.Blog.Title)
	}
	if len(fetched.Blog.Votes) != 1 {
		t.Fatalf("expected vote to survive the rejected delete, got %d votes", len(fetched.Blog.Votes))
	}
}

func TestAuthRequiredForWrites(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.postJSON(t, "/blog/post", map[string]any{
		"title":   "No Auth",
		"content": "x",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 401 without token, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/blog/post", map[string]any{
		"title":   "Bad Token",
		"content": "x",
	}, map[string]string{"Authorization": "Bearer invalid"})
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 401 with invalid token, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/resetPassword", map[string]any{
		"password": "newpass1",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 401 for resetPassword without token, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.putJSON(t, "/user/updateProfile", map[string]any{
		"bio": "sneaky",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 401 for updateProfile without token, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()
}

func TestTagFiltering(t *testing.T) {
	tc := newTestClient(t)

	token := createTestAccount(t, tc, "tagger")
	headers := map[string]string{"Authorization": "Bearer " + token}

	posts := []map[string]any{
		{"title": "Go Post", "content": "a", "tags": []string{"go", "backend"}},
		{"title": "Rust Post", "content": "b", "tags": []string{"rust", "backend"}},
		{"title": "Untagged Post", "content": "c"},
	}
	for _, p := range posts {
		resp := tc.postJSON(t, "/blog/post", p, headers)
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			t.Fatalf("create post status %d: %s", resp.StatusCode, string(b))
		}
		resp.Body.Close()
	}

	// Tag browsing requires a token
	resp := tc.get(t, "/blog/allPosts/go", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 401 for unauthenticated tag filter, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.get(t, "/blog/allPosts/go", headers)
	var filtered struct {
		Posts []model.Post `json:"posts"`
	}
	decodeJSON(t, resp, &filtered)
	if len(filtered.Posts) != 1 || filtered.Posts[0].Title != "Go Post" {
		t.Fatalf("expected only the go post, got %d posts", len(filtered.Posts))
	}

	// Every tag in the list must match
	resp = tc.get(t, "/blog/allPosts/go,backend", headers)
	decodeJSON(t, resp, &filtered)
	if len(filtered.Posts) != 1 {
		t.Fatalf("expected 1 post for go,backend, got %d", len(filtered.Posts))
	}

	resp = tc.get(t, "/blog/allPosts/go,rust", headers)
	decodeJSON(t, resp, &filtered)
	if len(filtered.Posts) != 0 {
		t.Fatalf("expected no posts carrying both go and rust, got %d", len(filtered.Posts))
	}

	resp = tc.get(t, "/blog/allPosts/GO", headers)
	decodeJSON(t, resp, &filtered)
	if len(filtered.Posts) != 1 {
		t.Fatalf("expected case-insensitive tag match, got %d posts", len(filtered.Posts))
	}

	resp = tc.get(t, "/blog/allPosts/nofilter", headers)
	decodeJSON(t, resp, &filtered)
	if len(filtered.Posts) != 3 {
		t.Fatalf("expected nofilter to return all 3 posts, got %d", len(filtered.Posts))
	}

	resp = tc.get(t, "/blog/bulk", nil)
	var all struct {
		Blogs []model.Post `json:"blogs"`
	}
	decodeJSON(t, resp, &all)
	if len(all.Blogs) != 3 {
		t.Fatalf("expected 3 posts from bulk, got %d", len(all.Blogs))
	}
}

func TestVoteFlow(t *testing.T) {
	tc := newTestClient(t)

	token := createTestAccount(t, tc, "voter")
	otherToken := createTestAccount(t, tc, "other-voter")
	headers := map[string]string{"Authorization": "Bearer " + token}
	otherHeaders := map[string]string{"Authorization": "Bearer " + otherToken}

	resp := tc.postJSON(t, "/blog/post", map[string]any{
		"title":   "Vote Post",
		"content": "x",
	}, headers)
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)

	resp = tc.postJSON(t, "/blog/vote", map[string]any{
		"postId":   created.ID,
		"voteType": 1,
	}, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("vote status %d: %s", resp.StatusCode, string(b))
	}
	var voteResp struct {
		Vote model.Vote `json:"vote"`
	}
	decodeJSON(t, resp, &voteResp)
	if voteResp.Vote.ID == "" {
		t.Fatalf("expected vote id")
	}
	if voteResp.Vote.VoteType != 1 {
		t.Fatalf("expected voteType 1, got %d", voteResp.Vote.VoteType)
	}

	// Voting on a post that does not exist is the client's mistake, not ours
	resp = tc.postJSON(t, "/blog/vote", map[string]any{
		"postId":   "no-such-post",
		"voteType": 1,
	}, headers)
	if resp.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 404 voting on missing post, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	// Out-of-range vote value
	resp = tc.postJSON(t, "/blog/vote", map[string]any{
		"postId":   created.ID,
		"voteType": 2,
	}, headers)
	if resp.StatusCode != http.StatusBadRequest {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 400 for bad voteType, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	// Someone else cannot delete the voter's vote
	resp = tc.delete(t, "/blog/vote/"+voteResp.Vote.ID, otherHeaders)
	if resp.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 404 for foreign vote delete, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.delete(t, "/blog/vote/"+voteResp.Vote.ID, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("delete vote status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.get(t, "/blog/fetch/"+created.ID, nil)
	var fetched struct {
		Blog model.Post `json:"blog"`
	}
	decodeJSON(t, resp, &fetched)
	if len(fetched.Blog.Votes) != 0 {
		t.Fatalf("expected no votes after delete, got %d", len(fetched.Blog.Votes))
	}
}

func TestProfileFlow(t *testing.T) {
	tc := newTestClient(t)

	token := createTestAccount(t, tc, "profiled")
	headers := map[string]string{"Authorization": "Bearer " + token}

	resp := tc.postJSON(t, "/user/completeProfile", map[string]any{
		"profileImg":       "https://example.com/pic.png",
		"bio":              "I write things.",
		"social":           "https://example.com/social",
		"securityQuestion": "Favourite colour?",
		"securityAns":      "teal",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("completeProfile status %d: %s", resp.StatusCode, string(b))
	}
	var completeResp map[string]any
	decodeJSON(t, resp, &completeResp)
	if _, ok := completeResp["securityAns"]; ok {
		t.Fatalf("security answer must not be echoed")
	}

	resp = tc.putJSON(t, "/user/updateProfile", map[string]any{
		"bio": "New bio only.",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("updateProfile status %d: %s", resp.StatusCode, string(b))
	}
	var updateResp struct {
		Result bool   `json:"result"`
		ID     string `json:"id"`
	}
	decodeJSON(t, resp, &updateResp)
	if !updateResp.Result {
		t.Fatalf("expected result true")
	}

	// A body carrying only bio must leave the other profile fields alone
	resp = tc.postJSON(t, "/user/completeProfile", map[string]any{
		"bio": "Only the bio.",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("partial completeProfile status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/securityQuestion", map[string]any{
		"email": "profiled@example.com",
	}, nil)
	var questionResp struct {
		Question string `json:"question"`
	}
	decodeJSON(t, resp, &questionResp)
	if questionResp.Question != "Favourite colour?" {
		t.Fatalf("partial update clobbered the security question, got %q", questionResp.Question)
	}

	// Unknown fields are rejected, not silently applied
	resp = tc.putJSON(t, "/user/updateProfile", map[string]any{
		"email": "hacker@example.com",
	}, headers)
	if resp.StatusCode != http.StatusBadRequest {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 400 for non-allow-listed field, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.get(t, "/user/bulk", nil)
	var usersResp struct {
		Users []map[string]any `json:"users"`
	}
	decodeJSON(t, resp, &usersResp)
	if len(usersResp.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(usersResp.Users))
	}
	for _, u := range usersResp.Users {
		if _, ok := u["password"]; ok {
			t.Fatalf("password must not be serialized")
		}
		if _, ok := u["securityAns"]; ok {
			t.Fatalf("security answer must not be serialized")
		}
	}
}

func TestPasswordRecoveryFlow(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.postJSON(t, "/user/signup", map[string]any{
		"username": "forgetful",
		"email":    "forgetful@example.com",
		"password": "original1",
	}, nil)
	var signupResp struct {
		JWT string `json:"jwt"`
	}
	decodeJSON(t, resp, &signupResp)
	headers := map[string]string{"Authorization": "Bearer " + signupResp.JWT}

	resp = tc.postJSON(t, "/user/completeProfile", map[string]any{
		"profileImg":       "",
		"bio":              "",
		"social":           "",
		"securityQuestion": "First pet?",
		"securityAns":      "Rex",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("completeProfile status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/securityQuestion", map[string]any{
		"email": "forgetful@example.com",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("securityQuestion status %d: %s", resp.StatusCode, string(b))
	}
	var questionResp struct {
		Question string `json:"question"`
	}
	decodeJSON(t, resp, &questionResp)
	if questionResp.Question != "First pet?" {
		t.Fatalf("expected stored question, got %q", questionResp.Question)
	}

	resp = tc.postJSON(t, "/user/securityQuestion", map[string]any{
		"email": "ghost@example.com",
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 404 for unknown email, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/verifyAnswer", map[string]any{
		"email":  "forgetful@example.com",
		"answer": "wrong",
	}, nil)
	var wrongResp struct {
		Result bool   `json:"result"`
		JWT    string `json:"jwt"`
	}
	decodeJSON(t, resp, &wrongResp)
	if wrongResp.Result {
		t.Fatalf("expected result false for wrong answer")
	}
	if wrongResp.JWT != "" {
		t.Fatalf("wrong answer must not yield a token")
	}

	// Answer comparison ignores case and whitespace
	resp = tc.postJSON(t, "/user/verifyAnswer", map[string]any{
		"email":  "forgetful@example.com",
		"answer": "  rex ",
	}, nil)
	var rightResp struct {
		Result bool   `json:"result"`
		JWT    string `json:"jwt"`
	}
	decodeJSON(t, resp, &rightResp)
	if !rightResp.Result || rightResp.JWT == "" {
		t.Fatalf("expected result true and a token for correct answer")
	}

	recoveryHeaders := map[string]string{"Authorization": "Bearer " + rightResp.JWT}
	resp = tc.postJSON(t, "/user/resetPassword", map[string]any{
		"password": "recovered1",
	}, recoveryHeaders)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("resetPassword status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/signin", map[string]any{
		"email":    "forgetful@example.com",
		"password": "recovered1",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("signin with new password status %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()

	resp = tc.postJSON(t, "/user/signin", map[string]any{
		"email":    "forgetful@example.com",
		"password": "original1",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected old password rejected, got %d: %s", resp.StatusCode, string(b))
	}
	resp.Body.Close()
}

func TestUnknownRoutes(t *testing.T) {
	tc := newTestClient(t)

	resp := tc.get(t, "/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong method on a known path
	resp = tc.get(t, "/user/signup", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for GET signup, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
