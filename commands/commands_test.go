package commands

import (
	"encoding/json"
	"errors"
	"testing"

	"TodoWebService/models"
)

func TestNewCreateTask(t *testing.T) {
	c, err := NewCreateTask(map[string]any{"title": "  buy milk ", "status": json.Number("1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Title != "buy milk" || c.Status != models.StatusInProgress || c.Description != "" {
		t.Errorf("unexpected command %+v", c)
	}
	p := c.Params(4)
	if p.UserID != 4 || p.Status == nil || *p.Status != models.StatusInProgress {
		t.Errorf("unexpected params %+v", p)
	}

	if _, err := NewCreateTask(map[string]any{"title": "x"}); !errors.Is(err, ErrBadValue) {
		t.Errorf("expected ErrBadValue without status, got %v", err)
	}
}

func TestNewUpdateTaskKeepsAbsentFieldsNil(t *testing.T) {
	c, err := NewUpdateTask(map[string]any{"id": "3", "description": ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Id != 3 || c.Title != nil || c.Status != nil {
		t.Errorf("unexpected command %+v", c)
	}
	if c.Description == nil || *c.Description != "" {
		t.Errorf("expected an explicit empty description, got %v", c.Description)
	}
	if c.Params().Empty() {
		t.Error("params with a description must not be empty")
	}
}

func TestNewUpdateTaskRejects(t *testing.T) {
	bad := []map[string]any{
		{"id": "0"},
		{"id": json.Number("1.5")},
		{"id": "abc"},
		{"id": 1, "status": 7},
		{"id": 1, "title": "   "},
	}
	for _, p := range bad {
		if _, err := NewUpdateTask(p); !errors.Is(err, ErrBadValue) {
			t.Errorf("payload %v: expected ErrBadValue, got %v", p, err)
		}
	}
}

func TestNewDeleteTask(t *testing.T) {
	c, err := NewDeleteTask(map[string]any{"id": float64(12)})
	if err != nil || c.Id != 12 {
		t.Fatalf("expected id 12, got %+v (%v)", c, err)
	}
	if _, err := NewDeleteTask(map[string]any{}); !errors.Is(err, ErrBadValue) {
		t.Errorf("expected ErrBadValue for a missing id, got %v", err)
	}
}

func TestNewListTasks(t *testing.T) {
	c, err := NewListTasks(map[string]any{"page": "2", "limit": "5", "status": "0", "title": "milk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Page != 2 || c.PageSize != 5 || c.Title != "milk" {
		t.Errorf("unexpected command %+v", c)
	}
	if c.Status == nil || *c.Status != models.StatusWaiting {
		t.Errorf("expected status filter 0, got %v", c.Status)
	}

	c, err = NewListTasks(map[string]any{"page_size": "20", "limit": "5"})
	if err != nil || c.PageSize != 20 {
		t.Errorf("expected page_size to win over limit, got %+v (%v)", c, err)
	}

	c, err = NewListTasks(map[string]any{})
	if err != nil || c.Page != 0 || c.PageSize != 0 || c.Status != nil {
		t.Errorf("expected zero command, got %+v (%v)", c, err)
	}
	if f := c.Filter(8); f.UserID != 8 || f.Status != nil {
		t.Errorf("unexpected filter %+v", f)
	}
}

func TestNewCredentials(t *testing.T) {
	c := NewCredentials(map[string]any{"email": " a@x.com ", "password": " secret1 "})
	if c.Email != "a@x.com" || c.Password != " secret1 " {
		t.Errorf("unexpected credentials %+v", c)
	}
}

func TestValueErrorMessage(t *testing.T) {
	_, err := NewDeleteTask(map[string]any{"id": "-1"})
	var ve *ValueError
	if !errors.As(err, &ve) || ve.Msg != "id must be a positive integer" {
		t.Errorf("expected a client-facing message, got %v", err)
	}
}
