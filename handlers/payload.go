package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const (
	maxBodyBytes  = 1 << 20
	maxFormMemory = 1 << 20
)

var (
	errEmptyPayload       = errors.New("empty payload")
	errUnsupportedPayload = errors.New("unsupported content type")
)

// bodyPayload decodes the request body into a flat field map. The parser is
// picked from Content-Type; a form body is read directly so DELETE and PUT
// bodies are honoured like POST ones.
func bodyPayload(res http.ResponseWriter, req *http.Request) (map[string]any, error) {
	req.Body = http.MaxBytesReader(res, req.Body, maxBodyBytes)

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil && req.Header.Get("Content-Type") != "" {
		return nil, fmt.Errorf("%w: %v", errUnsupportedPayload, err)
	}

	var payload map[string]any
	switch mediaType {
	case "application/json":
		payload, err = jsonPayload(req.Body)
	case "application/x-www-form-urlencoded":
		payload, err = formPayload(req.Body)
	case "multipart/form-data":
		payload, err = multipartPayload(req)
	case "":
		return nil, errEmptyPayload
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedPayload, mediaType)
	}
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, errEmptyPayload
	}
	return payload, nil
}

func jsonPayload(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errEmptyPayload
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return payload, nil
}

func formPayload(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return flatten(values, false), nil
}

func multipartPayload(req *http.Request) (map[string]any, error) {
	if err := req.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, fmt.Errorf("decode multipart: %w", err)
	}
	defer req.MultipartForm.RemoveAll()
	return flatten(req.MultipartForm.Value, false), nil
}

// queryPayload reads the query string. Empty values count as absent.
func queryPayload(req *http.Request) map[string]any {
	return flatten(req.URL.Query(), true)
}

// flatten keeps the first value of each key.
func flatten(values map[string][]string, dropEmpty bool) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		if dropEmpty && strings.TrimSpace(vs[0]) == "" {
			continue
		}
		out[k] = vs[0]
	}
	return out
}
