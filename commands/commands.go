// Package commands turns validated request payloads into typed inputs for the stores.
//
// Every constructor expects a payload that already passed the matching
// validation rule set; it still reports values it cannot convert.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"TodoWebService/models"
)

// ErrBadValue is matched by every conversion failure.
var ErrBadValue = errors.New("commands: bad value")

// ValueError reports a payload value that cannot be converted. Msg is safe to
// return to the client.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string        { return e.Msg }
func (e *ValueError) Is(target error) bool { return target == ErrBadValue }

func badValue(format string, args ...any) error {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// Credentials is the body of /register and /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskCommand is the body of /tasks/create.
type CreateTaskCommand struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
}

// UpdateTaskCommand is the body of /tasks/update. Nil fields are left unchanged.
type UpdateTaskCommand struct {
	Id          int64              `json:"id"`
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
}

// DeleteTaskCommand is the body of /tasks/delete.
type DeleteTaskCommand struct {
	Id int64 `json:"id"`
}

// DetailTaskCommand is the query of /tasks/detail.
type DetailTaskCommand struct {
	Id int64 `json:"id"`
}

// ListTasksCommand is the query of /tasks/list. Zero paging values are
// normalised by the store.
type ListTasksCommand struct {
	Page     int
	PageSize int
	Title    string
	Status   *models.TaskStatus
}

func NewCredentials(p map[string]any) Credentials {
	return Credentials{
		Email:    strings.TrimSpace(stringValue(p["email"])),
		Password: stringValue(p["password"]),
	}
}

func NewCreateTask(p map[string]any) (CreateTaskCommand, error) {
	status, err := statusValue(p, "status")
	if err != nil {
		return CreateTaskCommand{}, err
	}
	if status == nil {
		return CreateTaskCommand{}, badValue("status is required")
	}
	return CreateTaskCommand{
		Title:       strings.TrimSpace(stringValue(p["title"])),
		Description: strings.TrimSpace(stringValue(p["description"])),
		Status:      *status,
	}, nil
}

func NewUpdateTask(p map[string]any) (UpdateTaskCommand, error) {
	id, err := idValue(p)
	if err != nil {
		return UpdateTaskCommand{}, err
	}
	status, err := statusValue(p, "status")
	if err != nil {
		return UpdateTaskCommand{}, err
	}
	title := optionalString(p, "title")
	if title != nil && *title == "" {
		return UpdateTaskCommand{}, badValue("title must not be blank")
	}
	return UpdateTaskCommand{
		Id:          id,
		Title:       title,
		Description: optionalString(p, "description"),
		Status:      status,
	}, nil
}

func NewDeleteTask(p map[string]any) (DeleteTaskCommand, error) {
	id, err := idValue(p)
	return DeleteTaskCommand{Id: id}, err
}

func NewDetailTask(p map[string]any) (DetailTaskCommand, error) {
	id, err := idValue(p)
	return DetailTaskCommand{Id: id}, err
}

// NewListTasks reads page, page_size (or its alias limit), title and status.
func NewListTasks(p map[string]any) (ListTasksCommand, error) {
	var c ListTasksCommand
	page, err := intValue(p, "page")
	if err != nil {
		return c, err
	}
	size, err := intValue(p, "page_size")
	if err != nil {
		return c, err
	}
	if _, ok := p["page_size"]; !ok {
		if size, err = intValue(p, "limit"); err != nil {
			return c, err
		}
	}
	status, err := statusValue(p, "status")
	if err != nil {
		return c, err
	}
	c.Page = clampInt(page)
	c.PageSize = clampInt(size)
	c.Title = strings.TrimSpace(stringValue(p["title"]))
	c.Status = status
	return c, nil
}

// Params converts the command into store input owned by userID.
func (c CreateTaskCommand) Params(userID int64) models.CreateTaskParams {
	status := c.Status
	return models.CreateTaskParams{UserID: userID, Title: c.Title, Description: c.Description, Status: &status}
}

func (c UpdateTaskCommand) Params() models.UpdateTaskParams {
	return models.UpdateTaskParams{Title: c.Title, Description: c.Description, Status: c.Status}
}

func (c ListTasksCommand) Filter(userID int64) models.TaskFilter {
	return models.TaskFilter{UserID: userID, Title: c.Title, Status: c.Status}
}

func idValue(p map[string]any) (int64, error) {
	id, err := intValue(p, "id")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, badValue("id must be a positive integer")
	}
	return id, nil
}

func statusValue(p map[string]any, key string) (*models.TaskStatus, error) {
	if v, ok := p[key]; !ok || v == nil {
		return nil, nil
	}
	n, err := intValue(p, key)
	if err != nil {
		return nil, err
	}
	s := models.TaskStatus(n)
	if !s.Valid() {
		return nil, badValue("%s %d is not a task status", key, n)
	}
	return &s, nil
}

func optionalString(p map[string]any, key string) *string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	s := strings.TrimSpace(stringValue(v))
	return &s
}

// intValue returns 0 for an absent key and ErrBadValue for anything that is
// not an integral number.
func intValue(p map[string]any, key string) (int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, nil
	}
	var f float64
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		parsed, err := n.Float64()
		if err != nil {
			return 0, badValue("%s is not a number", key)
		}
		f = parsed
	case float64:
		f = n
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, badValue("%s is not a number", key)
		}
		f = parsed
	default:
		return 0, badValue("%s is not a number", key)
	}
	if f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return 0, badValue("%s must be an integer", key)
	}
	return int64(f), nil
}

func clampInt(n int64) int {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int(n)
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
