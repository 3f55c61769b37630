package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTaskStatus(t *testing.T) {
	for s := StatusWaiting; s <= StatusCancelled; s++ {
		if !s.Valid() || s.Text() == "" {
			t.Errorf("Expected status %d to be valid with a label", s)
		}
	}
	for _, s := range []TaskStatus{-1, 5, 9} {
		if s.Valid() || s.Text() != "" {
			t.Errorf("Expected status %d to be invalid", s)
		}
	}
	if StatusWaiting.Text() != "waiting" {
		t.Errorf("Unexpected label %q", StatusWaiting.Text())
	}
}

func TestUserPasswordNotSerialised(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Email: "a@x.com", Password: "$2a$10$hash"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "hash") || strings.Contains(string(b), "password") {
		t.Errorf("Password leaked into JSON: %s", b)
	}
}
