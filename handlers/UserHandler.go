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

const msgBadCredentials = "invalid email or password"

// RegisterHandler creates an account.
//
// Example request body:
//
//	{
//	  "email": "a@x.com",
//	  "password": "secret1"
//	}
//
// A second registration with the same email answers with code 409.
func (h *Handler) RegisterHandler(res http.ResponseWriter, req *http.Request) {
	c, ok := h.credentials(res, req, validation.RegisterRules)
	if !ok {
		return
	}
	fields := logrus.Fields{
		"task operation": "registering user",
		"request":        "POST /register",
	}

	if _, err := h.users.FindByEmail(req.Context(), c.Email); err == nil {
		h.log.WithFields(fields).Info("email already registered")
		h.fail(res, req, response.CodeConflict, "user already exists", nil)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.storeFailure(res, req, "registering user", err)
		return
	}

	id, err := h.users.Create(req.Context(), c.Email, c.Password)
	if err != nil {
		// lost a race with a concurrent registration of the same email
		h.storeFailure(res, req, "registering user", err)
		return
	}
	h.log.WithFields(fields).WithField("user", id).Info("user registered")
	h.ok(res, req, "registered", nil)
}

// LoginHandler exchanges credentials for a bearer token.
//
// Example response:
//
//	{
//	  "code": 0,
//	  "msg": "login success",
//	  "data": {"email": "a@x.com", "token": "eyJhbGciOiJIUzI1NiIs..."}
//	}
//
// An unknown email and a wrong password produce the same 401 answer.
func (h *Handler) LoginHandler(res http.ResponseWriter, req *http.Request) {
	c, ok := h.credentials(res, req, validation.LoginRules)
	if !ok {
		return
	}
	fields := logrus.Fields{
		"task operation": "logging in user",
		"request":        "POST /login",
	}

	u, err := h.users.FindByEmail(req.Context(), c.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.log.WithFields(fields).Info("unknown email")
		h.fail(res, req, response.CodeUnauthorized, msgBadCredentials, nil)
		return
	}
	if err != nil {
		h.storeFailure(res, req, "logging in user", err)
		return
	}
	if !store.CheckPassword(u, c.Password) {
		h.log.WithFields(fields).WithField("user", u.ID).Info("password mismatch")
		h.fail(res, req, response.CodeUnauthorized, msgBadCredentials, nil)
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.log.WithFields(fields).Error("error with creating token: " + err.Error())
		h.fail(res, req, response.CodeInternal, msgInternal, nil)
		return
	}
	h.log.WithFields(fields).WithField("user", u.ID).Info("token issued")
	h.ok(res, req, "login success", map[string]string{"email": u.Email, "token": token})
}

func (h *Handler) credentials(res http.ResponseWriter, req *http.Request, rules []validation.Field) (commands.Credentials, bool) {
	payload, err := bodyPayload(res, req)
	if err != nil {
		h.log.WithField("request", req.Method+" "+req.URL.Path).Info("bad payload: " + err.Error())
		h.fail(res, req, response.CodeParam, msgParam, nil)
		return commands.Credentials{}, false
	}
	if errs := h.validate.Validate(payload, rules); errs != nil {
		h.invalid(res, req, rules, errs)
		return commands.Credentials{}, false
	}
	return commands.NewCredentials(payload), true
}
