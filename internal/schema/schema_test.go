package schema

import "testing"

func TestSignupValidate(t *testing.T) {
	cases := []struct {
		name string
		req  Signup
		ok   bool
	}{
		{"valid", Signup{Username: "ada", Email: "ada@example.com", Password: "secret1"}, true},
		{"missing username", Signup{Email: "ada@example.com", Password: "secret1"}, false},
		{"bad email", Signup{Username: "ada", Email: "not-an-email", Password: "secret1"}, false},
		{"short password", Signup{Username: "ada", Email: "ada@example.com", Password: "abc"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSigninValidate(t *testing.T) {
	if err := (&Signin{Email: "ada@example.com", Password: "x"}).Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := (&Signin{Email: "ada@example.com"}).Validate(); err == nil {
		t.Fatalf("expected missing password error")
	}
}

func TestCreatePostValidate(t *testing.T) {
	if err := (&CreatePost{Title: "T", Content: "C"}).Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := (&CreatePost{Title: "  ", Content: "C"}).Validate(); err == nil {
		t.Fatalf("expected blank title error")
	}
	if err := (&CreatePost{Title: "T"}).Validate(); err == nil {
		t.Fatalf("expected missing content error")
	}
}

func TestUpdatePostValidate(t *testing.T) {
	if err := (&UpdatePost{ID: "p1", Title: "T", Content: "C"}).Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := (&UpdatePost{Title: "T", Content: "C"}).Validate(); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestCompleteProfileValidate(t *testing.T) {
	bio := "hello"
	if err := (&CompleteProfile{Bio: &bio}).Validate(); err != nil {
		t.Fatalf("expected bio-only body to be valid, got %v", err)
	}
	question := "first pet?"
	if err := (&CompleteProfile{SecurityQuestion: &question}).Validate(); err == nil {
		t.Fatalf("expected question without answer to fail")
	}
	answer := "rex"
	if err := (&CompleteProfile{SecurityQuestion: &question, SecurityAns: &answer}).Validate(); err != nil {
		t.Fatalf("expected question with answer to be valid, got %v", err)
	}
}

func TestUpdateProfileValidate(t *testing.T) {
	if err := (&UpdateProfile{}).Validate(); err == nil {
		t.Fatalf("expected empty update to fail")
	}
	bio := "hello"
	if err := (&UpdateProfile{Bio: &bio}).Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	empty := " "
	if err := (&UpdateProfile{Username: &empty}).Validate(); err == nil {
		t.Fatalf("expected empty username to fail")
	}
}

func TestVoteValidate(t *testing.T) {
	if err := (&Vote{PostID: "p1", VoteType: 1}).Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := (&Vote{PostID: "p1", VoteType: 0}).Validate(); err == nil {
		t.Fatalf("expected voteType error")
	}
	if err := (&Vote{VoteType: -1}).Validate(); err == nil {
		t.Fatalf("expected missing postId error")
	}
}
