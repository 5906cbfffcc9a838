// Package httputil centralizes JSON response and error envelopes so every
// handler returns the same shape.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "recouvro/pkg/domain-errors"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode parses the request body into T. On a malformed body it writes the
// bad-request envelope itself and reports ok=false.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body"))
		return req, false
	}
	return req, true
}

// WriteError translates a domain error into the JSON error envelope.
// Internal and collaborator errors omit the description so store details
// never reach the wire.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodeCollaborator {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
