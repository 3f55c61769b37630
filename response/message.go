// Package response writes the {code, msg, data} envelope returned by every endpoint.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope codes.
const (
	CodeOK           = 0
	CodeInternal     = -1
	CodeParam        = 400
	CodeUnauthorized = 401
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeRateLimited  = 429
)

// Message is the response envelope. Data is always a JSON object.
type Message struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// Empty is encoded as {}.
type Empty struct{}

// HTTPStatus returns the status line used for an envelope code. Only auth
// failures and rate limiting leave 200.
func HTTPStatus(code int) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusOK
}

// Write encodes m with the status derived from its code.
func Write(res http.ResponseWriter, m Message) error {
	if m.Data == nil {
		m.Data = Empty{}
	}
	res.Header().Set("Content-Type", "application/json; charset=utf-8")
	res.WriteHeader(HTTPStatus(m.Code))
	return json.NewEncoder(res).Encode(&m)
}

// Success writes a code 0 envelope.
func Success(res http.ResponseWriter, msg string, data any) error {
	return Write(res, Message{Code: CodeOK, Msg: msg, Data: data})
}

// Error writes a failure envelope.
func Error(res http.ResponseWriter, code int, msg string, data any) error {
	return Write(res, Message{Code: code, Msg: msg, Data: data})
}
