package handlers

import (
	"errors"
	"net/http"
	"time"

	"TodoWebService/auth"
	"TodoWebService/response"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// cors opens the API to every origin and answers preflight requests directly.
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		hdr := res.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if req.Method == http.MethodOptions {
			h.ok(res, req, "success", nil)
			return
		}
		next.ServeHTTP(res, req)
	})
}

// logRequests writes one entry per request once it has been served.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(res, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		h.log.WithFields(logrus.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"endpoint": endpoint(req),
			"status":   ww.Status(),
			"bytes":    ww.BytesWritten(),
			"ip":       clientIP(req),
			"duration": time.Since(start).String(),
		}).Info("http request")
	})
}

// RequireAuth rejects requests without a valid bearer token with HTTP 401 and
// passes the caller's id on in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		userID, err := h.tokens.Authenticate(req.Header)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				reason = "missing authorization header"
			}
			h.log.WithFields(logrus.Fields{
				"task operation": "authorizing user",
				"request":        req.Method + " " + req.URL.Path,
			}).Warn(reason + ": " + err.Error())
			h.fail(res, req, response.CodeUnauthorized, msgUnauthorized+": "+reason, nil)
			return
		}
		next.ServeHTTP(res, req.WithContext(auth.WithUserID(req.Context(), userID)))
	})
}

// caller returns the id stored by RequireAuth.
func caller(req *http.Request) int64 {
	id, _ := auth.UserIDFrom(req.Context())
	return id
}
