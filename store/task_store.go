package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TodoWebService/models"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

const taskColumns = "id, user_id, title, description, status, created_at, updated_at"

// TaskStore persists tasks in the tasks table.
type TaskStore struct {
	db      *DB
	table   string
	dialect Dialect
}

// NewTaskStore returns a TaskStore backed by db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db, table: db.Table("tasks"), dialect: db.opts.Dialect}
}

// NormalizePage clamps paging input: page below 1 becomes 1 and a page size
// outside [1, MaxPageSize] becomes DefaultPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// GetPageList returns one page of the filtered tasks, newest id first, and the
// total number of tasks matching the same filter.
func (s *TaskStore) GetPageList(ctx context.Context, f models.TaskFilter, page, pageSize int) (*models.TaskPage, error) {
	if f.UserID <= 0 {
		return nil, ErrInvalidParams
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, ErrInvalidParams
	}
	page, pageSize = NormalizePage(page, pageSize)

	where, args := s.where(f)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", s.table, where)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("store/task: count: %w", err)
	}

	listQuery := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id DESC LIMIT ? OFFSET ?", taskColumns, s.table, where)
	args = append(args, pageSize, (page-1)*pageSize)

	list := make([]models.Task, 0, pageSize)
	err := s.db.Query(ctx, listQuery, func(rows *sql.Rows) error {
		t, err := scanTask(rows)
		if err != nil {
			return err
		}
		list = append(list, *t)
		return nil
	}, args...)
	if err != nil {
		return nil, fmt.Errorf("store/task: list: %w", err)
	}
	return &models.TaskPage{List: list, Total: total}, nil
}

func (s *TaskStore) where(f models.TaskFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{f.UserID}
	if f.Title != "" {
		clauses = append(clauses, s.dialect.Contains("title"))
		args = append(args, f.Title)
	}
	if f.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, int(*f.Status))
	}
	return strings.Join(clauses, " AND "), args
}

// FindByID returns the task with the given id regardless of owner, or ErrNotFound.
func (s *TaskStore) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", taskColumns, s.table)
	t, err := scanTask(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("store/task: find: %w", err)
	}
	return t, nil
}

// Create inserts a task and returns its id. Title, a valid status and a
// positive user id are required.
func (s *TaskStore) Create(ctx context.Context, p models.CreateTaskParams) (int64, error) {
	if p.Title == "" || p.Status == nil || !p.Status.Valid() || p.UserID <= 0 {
		return 0, ErrInvalidParams
	}
	now := time.Now().UTC()
	query := fmt.Sprintf("INSERT INTO %s (user_id, title, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	res, err := s.db.Exec(ctx, query, p.UserID, p.Title, p.Description, int(*p.Status), now, now)
	if err != nil {
		return 0, fmt.Errorf("store/task: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store/task: last insert id: %w", err)
	}
	return id, nil
}

// Update changes the supplied fields of the task with id owned by userID and
// returns the number of matched rows. A task owned by someone else matches none.
func (s *TaskStore) Update(ctx context.Context, id, userID int64, p models.UpdateTaskParams) (int64, error) {
	if p.Status != nil && !p.Status.Valid() {
		return 0, ErrInvalidParams
	}
	if p.Empty() {
		return 0, ErrNoFields
	}

	set := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if p.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Status != nil {
		set = append(set, "status = ?")
		args = append(args, int(*p.Status))
	}
	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC(), id, userID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", s.table, strings.Join(set, ", "))
	res, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store/task: update: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the task with id and returns the number of deleted rows.
// Ownership is not checked here.
func (s *TaskStore) Delete(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table)
	res, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("store/task: delete: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.StatusText = t.Status.Text()
	return t, nil
}
