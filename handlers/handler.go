// Package handlers provides the HTTP API of TodoWebService.
//
// Every endpoint answers with the {code, msg, data} envelope of the response
// package. Input is validated with the rule sets of the validation package,
// protected routes resolve the caller from a bearer token, and persistence
// goes through the UserStore and TaskStore interfaces so tests can run the
// router against an in-memory database.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"TodoWebService/auth"
	"TodoWebService/models"
	"TodoWebService/response"
	"TodoWebService/store"
	"TodoWebService/validation"

	"github.com/sirupsen/logrus"
)

// UserStore is the account persistence used by /register and /login.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, password string) (int64, error)
}

// TaskStore is the task persistence used by the /tasks routes.
type TaskStore interface {
	GetPageList(ctx context.Context, f models.TaskFilter, page, pageSize int) (*models.TaskPage, error)
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, p models.CreateTaskParams) (int64, error)
	Update(ctx context.Context, id, userID int64, p models.UpdateTaskParams) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Config holds the collaborators of a Handler. All fields are required.
type Config struct {
	Users     UserStore
	Tasks     TaskStore
	Validator *validation.Validator
	Tokens    *auth.TokenService
	Logger    *logrus.Logger
	Metrics   *Metrics
}

// Handler serves every route of the API.
type Handler struct {
	users    UserStore
	tasks    TaskStore
	validate *validation.Validator
	tokens   *auth.TokenService
	log      *logrus.Logger
	metrics  *Metrics
}

func New(cfg Config) *Handler {
	return &Handler{
		users:    cfg.Users,
		tasks:    cfg.Tasks,
		validate: cfg.Validator,
		tokens:   cfg.Tokens,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

const (
	msgParam        = "invalid parameters"
	msgNotFound     = "endpoint not found"
	msgInternal     = "internal error"
	msgUnauthorized = "unauthorized"
	msgRateLimited  = "the API is at capacity, try again later"
)

func (h *Handler) ok(res http.ResponseWriter, req *http.Request, msg string, data any) {
	if err := response.Success(res, msg, data); err != nil {
		h.log.WithFields(logrus.Fields{
			"request": req.Method + " " + req.URL.Path,
		}).Error("writing response: " + err.Error())
	}
}

func (h *Handler) fail(res http.ResponseWriter, req *http.Request, code int, msg string, data any) {
	h.metrics.countError(req)
	if err := response.Error(res, code, msg, data); err != nil {
		h.log.WithFields(logrus.Fields{
			"request": req.Method + " " + req.URL.Path,
		}).Error("writing response: " + err.Error())
	}
}

// invalid writes a parameter error carrying the field messages; msg is the
// first message in rule-set order.
func (h *Handler) invalid(res http.ResponseWriter, req *http.Request, fields []validation.Field, errs validation.Errors) {
	msg := msgParam
	for _, f := range fields {
		if m, ok := errs[f.Name]; ok {
			msg = m
			break
		}
	}
	h.fail(res, req, response.CodeParam, msg, errs)
}

// storeFailure maps a store error onto an envelope and logs it.
func (h *Handler) storeFailure(res http.ResponseWriter, req *http.Request, operation string, err error) {
	entry := h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
	})
	switch {
	case errors.Is(err, store.ErrInvalidParams), errors.Is(err, store.ErrNoFields):
		entry.Warn(err.Error())
		h.fail(res, req, response.CodeParam, msgParam, nil)
	case errors.Is(err, store.ErrNotFound):
		entry.Info(err.Error())
		h.fail(res, req, response.CodeNotFound, "task not found", nil)
	case errors.Is(err, store.ErrDuplicateKey):
		entry.Warn(err.Error())
		h.fail(res, req, response.CodeConflict, "user already exists", nil)
	default:
		entry.Error(err.Error())
		h.fail(res, req, response.CodeInternal, msgInternal, nil)
	}
}

// Index answers / with a greeting.
func (h *Handler) Index(res http.ResponseWriter, req *http.Request) {
	h.ok(res, req, "success", map[string]string{"message": "Hello World!"})
}

// NotFound answers unmatched paths and methods.
func (h *Handler) NotFound(res http.ResponseWriter, req *http.Request) {
	h.fail(res, req, response.CodeNotFound, msgNotFound, nil)
}

func (h *Handler) rateLimited(res http.ResponseWriter, req *http.Request) {
	h.log.WithFields(logrus.Fields{
		"request": req.Method + " " + req.URL.Path,
		"ip":      clientIP(req),
	}).Warn("rate limit exceeded")
	h.fail(res, req, response.CodeRateLimited, msgRateLimited, nil)
}
