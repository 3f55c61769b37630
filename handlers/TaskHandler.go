package handlers

import (
	"errors"
	"net/http"

	"TodoWebService/commands"
	"TodoWebService/response"
	"TodoWebService/store"
	"TodoWebService/validation"

	"github.com/sirupsen/logrus"
)

// ListTasksHandler returns one page of the caller's tasks, newest first.
//
// Example request:
//
//	GET /tasks/list?page=1&page_size=10&title=milk&status=0
//
// Example response data:
//
//	{
//	  "list": [{"id": 1, "title": "buy milk", "status": 0, "status_text": "waiting", ...}],
//	  "total": 1
//	}
//
// limit is accepted in place of page_size. A page below 1 reads the first page
// and a page size outside [1, 100] falls back to 15.
func (h *Handler) ListTasksHandler(res http.ResponseWriter, req *http.Request) {
	payload := queryPayload(req)
	if !h.check(res, req, payload, validation.ListTaskRules) {
		return
	}
	c, err := commands.NewListTasks(payload)
	if err != nil {
		h.badValue(res, req, err)
		return
	}

	page, err := h.tasks.GetPageList(req.Context(), c.Filter(caller(req)), c.Page, c.PageSize)
	if err != nil {
		h.storeFailure(res, req, "listing tasks", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": "listing tasks",
		"request":        "GET /tasks/list",
		"user":           caller(req),
		"total":          page.Total,
	}).Debug("processing request")
	h.ok(res, req, "success", page)
}

// GetTaskHandler returns one of the caller's tasks by id.
//
// Example request:
//
//	GET /tasks/detail?id=1
//
// A task owned by another user answers as not found.
func (h *Handler) GetTaskHandler(res http.ResponseWriter, req *http.Request) {
	payload := queryPayload(req)
	if !h.check(res, req, payload, validation.DetailTaskRules) {
		return
	}
	c, err := commands.NewDetailTask(payload)
	if err != nil {
		h.badValue(res, req, err)
		return
	}

	task, err := h.tasks.FindByID(req.Context(), c.Id)
	if err == nil && task.UserID != caller(req) {
		err = store.ErrNotFound
	}
	if err != nil {
		h.storeFailure(res, req, "get task by id", err)
		return
	}
	h.ok(res, req, "success", task)
}

// CreateTaskHandler creates a task owned by the caller and returns its id.
//
// Example request body:
//
//	{
//	  "title": "buy milk",
//	  "description": "two litres",
//	  "status": 0
//	}
//
// Example response data:
//
//	{"id": 1}
func (h *Handler) CreateTaskHandler(res http.ResponseWriter, req *http.Request) {
	payload, ok := h.body(res, req, validation.CreateTaskRules)
	if !ok {
		return
	}
	c, err := commands.NewCreateTask(payload)
	if err != nil {
		h.badValue(res, req, err)
		return
	}

	id, err := h.tasks.Create(req.Context(), c.Params(caller(req)))
	if err != nil {
		h.storeFailure(res, req, "creating task", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": "creating task",
		"request":        "POST /tasks/create",
		"user":           caller(req),
		"task":           id,
	}).Info("task created")
	h.ok(res, req, "created", map[string]int64{"id": id})
}

// UpdateTaskHandler changes the supplied fields of one of the caller's tasks.
//
// Example request body:
//
//	{
//	  "id": 1,
//	  "status": 3
//	}
//
// At least one of title, description and status must be present. An id that
// does not name a task of the caller answers as not found.
func (h *Handler) UpdateTaskHandler(res http.ResponseWriter, req *http.Request) {
	payload, ok := h.body(res, req, validation.UpdateTaskRules)
	if !ok {
		return
	}
	c, err := commands.NewUpdateTask(payload)
	if err != nil {
		h.badValue(res, req, err)
		return
	}

	n, err := h.tasks.Update(req.Context(), c.Id, caller(req), c.Params())
	if err == nil && n == 0 {
		err = store.ErrNotFound
	}
	if err != nil {
		h.storeFailure(res, req, "updating task", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": "updating task",
		"request":        "PUT /tasks/update",
		"user":           caller(req),
		"task":           c.Id,
	}).Info("task updated")
	h.ok(res, req, "updated", nil)
}

// DeleteTaskHandler deletes a task by id.
//
// Example request body:
//
//	{"id": 1}
//
// Example response data:
//
//	{"affected": 1}
//
// Ownership is not checked: any authenticated caller may delete any task id.
// An id that matches nothing still succeeds with affected 0.
func (h *Handler) DeleteTaskHandler(res http.ResponseWriter, req *http.Request) {
	payload, ok := h.body(res, req, validation.DeleteTaskRules)
	if !ok {
		return
	}
	c, err := commands.NewDeleteTask(payload)
	if err != nil {
		h.badValue(res, req, err)
		return
	}

	n, err := h.tasks.Delete(req.Context(), c.Id)
	if err != nil {
		h.storeFailure(res, req, "deleting task", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": "deleting task",
		"request":        "DELETE /tasks/delete",
		"user":           caller(req),
		"task":           c.Id,
		"affected":       n,
	}).Info("task deleted")
	h.ok(res, req, "deleted", map[string]int64{"affected": n})
}

// body parses and validates the request body.
func (h *Handler) body(res http.ResponseWriter, req *http.Request, rules []validation.Field) (map[string]any, bool) {
	payload, err := bodyPayload(res, req)
	if err != nil {
		h.log.WithField("request", req.Method+" "+req.URL.Path).Info("bad payload: " + err.Error())
		h.fail(res, req, response.CodeParam, msgParam, nil)
		return nil, false
	}
	return payload, h.check(res, req, payload, rules)
}

func (h *Handler) check(res http.ResponseWriter, req *http.Request, payload map[string]any, rules []validation.Field) bool {
	if errs := h.validate.Validate(payload, rules); errs != nil {
		h.invalid(res, req, rules, errs)
		return false
	}
	return true
}

func (h *Handler) badValue(res http.ResponseWriter, req *http.Request, err error) {
	msg := msgParam
	var ve *commands.ValueError
	if errors.As(err, &ve) {
		msg = ve.Msg
	}
	h.fail(res, req, response.CodeParam, msg, nil)
}
