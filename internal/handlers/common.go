package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error codes that are not produced by request validation
const (
	codeInvalidJSON         = "invalid_json"
	codeForeignKeyViolation = "foreign_key_violation"
	codeServerError         = "server_error"
	codePresignFailed       = "presign_failed"
	codeDBUnreachable       = "db_unreachable"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// respondJSON writes body as JSON with the given status
func respondJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	resp.OK = false
	respondJSON(w, resp, statusCode)
}

// decodeObject reads a JSON object keeping numbers as json.Number. An empty
// body decodes to an empty object when allowEmpty is set.
func decodeObject(r *http.Request, allowEmpty bool) (map[string]any, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return raw, nil
}
