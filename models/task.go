// Package models contains the data models for the application to be used in request handling.
package models

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus int

const (
	StatusWaiting TaskStatus = iota
	StatusInProgress
	StatusTesting
	StatusDone
	StatusCancelled
)

var statusText = map[TaskStatus]string{
	StatusWaiting:    "waiting",
	StatusInProgress: "in progress",
	StatusTesting:    "testing",
	StatusDone:       "done",
	StatusCancelled:  "cancelled",
}

// Valid reports whether s is one of the five known statuses.
func (s TaskStatus) Valid() bool {
	_, ok := statusText[s]
	return ok
}

// Text returns the human-readable label of s, or an empty string for unknown values.
func (s TaskStatus) Text() string {
	return statusText[s]
}

// Task represents a task in the system.
// Task has the following properties:
// - ID: The unique identifier of the task.
// - UserID: The owner of the task.
// - Title: The title of the task.
// - Description: The optional description of the task.
// - Status: The status of the task, StatusText is its label.
// - CreatedAt, UpdatedAt: Server-assigned timestamps.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	StatusText  string     `json:"status_text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskPage is one page of a task listing together with the total number of matches.
type TaskPage struct {
	List  []Task `json:"list"`
	Total int64  `json:"total"`
}

// TaskFilter narrows a task listing. UserID is always required.
type TaskFilter struct {
	UserID int64
	// Title matches as a case-sensitive substring when not empty.
	Title  string
	Status *TaskStatus
}

// CreateTaskParams holds the fields of a new task.
type CreateTaskParams struct {
	UserID      int64
	Title       string
	Description string
	Status      *TaskStatus
}

// UpdateTaskParams holds the fields to change. Nil fields are left untouched.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}

// Empty reports whether no field is set.
func (p UpdateTaskParams) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}
