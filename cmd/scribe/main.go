package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/scribeblog/scribe/internal/auth"
	"github.com/scribeblog/scribe/internal/client"
	"github.com/scribeblog/scribe/internal/config"
	httpapp "github.com/scribeblog/scribe/internal/http"
	"github.com/scribeblog/scribe/internal/store/sqlite"
)

const tokenTTL = 24 * time.Hour

// CLIConfig holds the CLI client configuration persisted to disk.
type CLIConfig struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   string `json:"user_id"`
	Token    string `json:"token"`
}

func main() {
	if len(os.Args) < 2 {
		runServer()
		return
	}

	cmd := os.Args[1]

	// Handle --help and -h before defaulting to server
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println("scribe v0.1.0")
		return
	}

	if strings.HasPrefix(cmd, "-") {
		runServer()
		return
	}

	args := os.Args[2:]

	switch cmd {
	case "server", "serve":
		runServer()
	case "signup", "register":
		cmdSignup(args)
	case "signin", "login":
		cmdSignin(args)
	case "post", "publish":
		cmdPost(args)
	case "update":
		cmdUpdate(args)
	case "delete", "rm":
		cmdDelete(args)
	case "vote":
		cmdVote(args)
	case "unvote":
		cmdUnvote(args)
	case "read", "list":
		cmdRead(args)
	case "status", "whoami":
		cmdStatus(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scribe - Blogging platform backend

Usage: scribe <command> [options]

Quick Start:
  scribe signup --username alice --email alice@example.com
  scribe post --title "Hello" --content "My first post"

Client Commands:
  signup              Create an account and authenticate
  signin              Sign in with an existing account
  post                Publish a new post
  update              Update one of your posts
  delete              Delete one of your posts
  vote                Vote on a post
  unvote              Remove one of your votes
  read                Read posts from the server
  status              Show current account and token status

Server:
  server              Start the Scribe server (default if no command)

Examples:
  scribe signup --username alice --email alice@example.com
  scribe post --title "Cool Article" --content "Body text" --tags go,backend
  scribe read --tags go
  scribe read --post <id>                          # View a post with votes
  scribe vote --post <id> --up

Environment Variables (server):
  SCRIBE_ADDR               Listen address (default: :8080)
  SCRIBE_DB                 Database path (default: scribe.db)
  SCRIBE_SECRET             Token signing secret (required)
  SCRIBE_REQUEST_TIMEOUT    Per-request store timeout (default: 5s)`)
}

// ============================================================================
// SERVER
// ============================================================================

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := sqlite.Open(cfg.DSN)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer store.Close()

	authSvc := auth.NewService(cfg.Secret, tokenTTL)
	server := httpapp.NewServer(store, authSvc, cfg)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("scribe listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

// ============================================================================
// CLIENT COMMANDS
// ============================================================================

func cmdSignup(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	username := fs.String("username", "", "Display name (required)")
	email := fs.String("email", "", "Account email (required)")
	password := fs.String("password", "", "Password (prompted via env SCRIBE_PASSWORD if empty)")
	url := fs.String("url", "http://localhost:8080", "Scribe server URL")
	fs.Parse(args)

	if *username == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "Error: --username and --email are required")
		fmt.Fprintln(os.Stderr, "Usage: scribe signup --username <name> --email <email>")
		os.Exit(1)
	}
	pass := *password
	if pass == "" {
		pass = os.Getenv("SCRIBE_PASSWORD")
	}
	if pass == "" {
		fmt.Fprintln(os.Stderr, "Error: provide --password or set SCRIBE_PASSWORD")
		os.Exit(1)
	}

	c := client.New(strings.TrimSuffix(*url, "/"))
	err := c.Signup(*username, *email, pass)
	alreadyRegistered := errors.Is(err, client.ErrAlreadyRegistered)
	if err != nil && !alreadyRegistered {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if alreadyRegistered {
		fmt.Printf("✓ Email already registered, signing in\n")
		if err := c.Signin(*email, pass); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("✓ Registered '%s'\n", *username)
	}

	cfg := CLIConfig{
		BaseURL:  c.BaseURL,
		Username: *username,
		Email:    *email,
		UserID:   c.UserID,
		Token:    c.Token,
	}
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Authenticated (user %s)\n", c.UserID)
	fmt.Println("\nReady to post! Example:")
	fmt.Println("  scribe post --title \"Hello Scribe\" --content \"My first post\"")
}

func cmdSignin(args []string) {
	fs := flag.NewFlagSet("signin", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password (or set SCRIBE_PASSWORD)")
	url := fs.String("url", "", "Scribe server URL (defaults to saved config)")
	fs.Parse(args)

	cfg, _ := loadCLIConfig()
	if *email == "" {
		*email = cfg.Email
	}
	if *email == "" {
		fmt.Fprintln(os.Stderr, "Error: --email is required")
		os.Exit(1)
	}
	pass := *password
	if pass == "" {
		pass = os.Getenv("SCRIBE_PASSWORD")
	}
	if pass == "" {
		fmt.Fprintln(os.Stderr, "Error: provide --password or set SCRIBE_PASSWORD")
		os.Exit(1)
	}

	baseURL := cfg.BaseURL
	if *url != "" {
		baseURL = strings.TrimSuffix(*url, "/")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c := client.New(baseURL)
	if err := c.Signin(*email, pass); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg.BaseURL = baseURL
	cfg.Email = *email
	cfg.UserID = c.UserID
	cfg.Token = c.Token
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Signed in as '%s'\n", *email)
}

func cmdPost(args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "Post title (required)")
	content := fs.String("content", "", "Post body (required)")
	tags := fs.String("tags", "", "Comma-separated tags")
	readtime := fs.String("readtime", "", "Estimated read time, e.g. '4 min'")
	anonymous := fs.Bool("anonymous", false, "Hide your name on the post")
	fs.Parse(args)

	if *title == "" || *content == "" {
		fmt.Fprintln(os.Stderr, "Error: --title and --content are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var tagList []string
	if *tags != "" {
		tagList = strings.Split(*tags, ",")
		for i := range tagList {
			tagList[i] = strings.TrimSpace(tagList[i])
		}
	}

	id, err := c.CreatePost(*title, *content, tagList, *readtime, *anonymous)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Posted: %s\n", *title)
	fmt.Printf("  ID: %s\n", id)
}

func cmdUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("post", "", "Post ID (required)")
	title := fs.String("title", "", "New title (required)")
	content := fs.String("content", "", "New body (required)")
	fs.Parse(args)

	if *id == "" || *title == "" || *content == "" {
		fmt.Fprintln(os.Stderr, "Error: --post, --title and --content are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := c.UpdatePost(*id, *title, *content); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Updated post %s\n", *id)
}

func cmdDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("post", "", "Post ID to delete")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --post is required")
		fmt.Fprintln(os.Stderr, "Usage: scribe delete --post <id>")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := c.DeletePost(*id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted post %s\n", *id)
}

func cmdVote(args []string) {
	fs := flag.NewFlagSet("vote", flag.ExitOnError)
	id := fs.String("post", "", "Post ID (required)")
	up := fs.Bool("up", false, "Upvote")
	down := fs.Bool("down", false, "Downvote")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --post is required")
		os.Exit(1)
	}
	if (*up && *down) || (!*up && !*down) {
		fmt.Fprintln(os.Stderr, "Error: provide exactly one of --up or --down")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	value := 1
	if *down {
		value = -1
	}

	vote, err := c.Vote(*id, value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	action := "Upvoted"
	if *down {
		action = "Downvoted"
	}
	fmt.Printf("✓ %s post %s\n", action, *id)
	fmt.Printf("  Vote ID: %s\n", vote.ID)
}

func cmdUnvote(args []string) {
	fs := flag.NewFlagSet("unvote", flag.ExitOnError)
	id := fs.String("vote", "", "Vote ID to remove")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --vote is required")
		fmt.Fprintln(os.Stderr, "Usage: scribe unvote --vote <id>")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := c.DeleteVote(*id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Removed vote %s\n", *id)
}

func cmdRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	tags := fs.String("tags", "", "Filter by comma-separated tags")
	postID := fs.String("post", "", "Get a specific post with votes")
	fs.Parse(args)

	cfg, _ := loadCLIConfig()
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c := client.New(baseURL)
	// Tag browsing needs the token; plain reads work either way.
	c.Token = cfg.Token

	if *postID != "" {
		post, err := c.GetPost(*postID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s\n", post.Title)
		author := "anonymous"
		if post.Author != nil && !post.IsAnonymous {
			author = post.Author.Username
		}
		score := 0
		for _, v := range post.Votes {
			score += v.VoteType
		}
		fmt.Printf("  By: %s | Score: %d | Tags: %s\n", author, score, strings.Join(post.Tags, ", "))
		fmt.Printf("\n  %s\n", post.Content)
		return
	}

	var posts []client.Post
	var err error
	if *tags != "" {
		posts, err = c.ListPostsByTags(*tags)
	} else {
		posts, err = c.ListPosts()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📝 Scribe\n\n")
	for i, p := range posts {
		author := "anonymous"
		if p.Author != nil && !p.IsAnonymous {
			author = p.Author.Username
		}
		fmt.Printf("%d. %s\n", i+1, p.Title)
		fmt.Printf("   by %s | %s | #%s\n\n", author, strings.Join(p.Tags, ","), p.ID)
	}
}

func cmdStatus(args []string) {
	cfg, err := loadCLIConfig()
	if err != nil {
		fmt.Println("Status: Not signed in")
		fmt.Println("\nRun: scribe signup --username <name> --email <email>")
		return
	}

	fmt.Printf("Account: %s (%s)\n", cfg.Username, cfg.Email)
	fmt.Printf("Server:  %s\n", cfg.BaseURL)
	fmt.Printf("User ID: %s\n", cfg.UserID)

	if cfg.Token == "" {
		fmt.Println("Token:   Not authenticated")
		fmt.Println("\nRun: scribe signin")
	} else {
		fmt.Println("Token:   Present (signin again if requests return 401)")
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func scribeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".scribe")
}

func cliConfigPath() string {
	return filepath.Join(scribeDir(), "config.json")
}

func loadCLIConfig() (CLIConfig, error) {
	data, err := os.ReadFile(cliConfigPath())
	if err != nil {
		return CLIConfig{}, errors.New("not signed in")
	}
	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func saveCLIConfig(cfg CLIConfig) error {
	if err := os.MkdirAll(scribeDir(), 0700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(cfg, "", "  ")
	return os.WriteFile(cliConfigPath(), data, 0600)
}

func loadAuthenticatedClient() (*client.Client, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errors.New("not authenticated - run 'scribe signin'")
	}

	c := client.New(cfg.BaseURL)
	c.Token = cfg.Token
	c.UserID = cfg.UserID
	return c, nil
}
